package pipeline

// Batch is an ordered group of chunk texts sent together in one embedding
// call. Batches are ephemeral: created by the planner, consumed by the
// executor, never persisted.
type Batch struct {
	Index int // Position among the planned batches, 0-based
	Total int // Number of batches planned for the input
	Texts []string
}

// BatchResult is the outcome of embedding one batch. Exactly one of Vectors
// or Err is set.
type BatchResult struct {
	Index   int
	Size    int // Number of texts in the batch
	Vectors [][]float32
	Err     error
}

// Failed reports whether the batch ended in an error.
func (r BatchResult) Failed() bool {
	return r.Err != nil
}
