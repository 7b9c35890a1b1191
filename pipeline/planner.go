package pipeline

import (
	"github.com/poiesic/docport/provider"
)

const (
	// smallInputLimit is the item count at or below which batches shrink
	// for faster first results.
	smallInputLimit = 50

	// smallInputBatchSize caps batch size for small inputs.
	smallInputBatchSize = 8

	// mediumInputLimit is the item count at or below which the provider's
	// base batch size is used unscaled.
	mediumInputLimit = 200
)

// Plan splits an ordered sequence of texts into contiguous, ordered,
// non-overlapping batches. Batch i holds texts[i*size : i*size+size]; the
// last batch carries the remainder. Empty input yields no batches.
func Plan(texts []string, profile provider.Profile) []Batch {
	if len(texts) == 0 {
		return nil
	}

	size := planBatchSize(len(texts), profile.Normalize())
	total := (len(texts) + size - 1) / size

	batches := make([]Batch, 0, total)
	for i := 0; i < len(texts); i += size {
		end := min(i+size, len(texts))
		batches = append(batches, Batch{
			Index: len(batches),
			Total: total,
			Texts: texts[i:end],
		})
	}
	return batches
}

// planBatchSize selects the batch size from the total input volume.
// Large inputs scale the base size by the profile multiplier up to the
// profile ceiling; strictly rate-limited providers keep multiplier 1 and
// gain throughput from concurrency instead.
func planBatchSize(total int, p provider.Profile) int {
	switch {
	case total <= smallInputLimit:
		return min(p.BaseBatchSize, smallInputBatchSize)
	case total <= mediumInputLimit:
		return p.BaseBatchSize
	default:
		return min(p.BaseBatchSize*p.LargeBatchMultiplier, p.BatchCeiling)
	}
}
