package provider

import "context"

// Embedder converts text into vector embeddings through a remote or local
// embedding service. Implementations must be safe for concurrent use; the
// pipeline issues multiple Vectorize calls in parallel against one Embedder.
type Embedder interface {
	// Vectorize generates one embedding per input text, in input order.
	// On success the returned slice has exactly len(texts) vectors.
	// Failures are reported as *Error with a populated Category.
	Vectorize(ctx context.Context, texts []string) ([][]float32, error)

	// Name returns the provider identifier used for registry lookup and
	// for deriving the physical chunk collection name.
	Name() string

	// MaxBatchSize returns the base number of texts per Vectorize call the
	// provider handles reliably. Equal to Profile().BaseBatchSize.
	MaxBatchSize() int

	// Profile returns the provider's tuning constants.
	Profile() Profile
}
