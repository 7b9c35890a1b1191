package mock

import (
	"context"
	"hash/fnv"
	"sync/atomic"

	"github.com/poiesic/docport/provider"
)

// Embedder is a test double for provider.Embedder.
// It allows custom behavior injection via function fields and is safe for
// concurrent use.
type Embedder struct {
	// VectorizeFunc is called by Vectorize if set.
	// If nil, deterministic vectors are generated from the text hash.
	VectorizeFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedderName overrides the default name "Mock" if set.
	EmbedderName string

	// EmbedderProfile overrides provider.DefaultProfile if set.
	EmbedderProfile provider.Profile

	// Dim is the dimensionality of generated vectors. Defaults to 384.
	Dim int

	callCount atomic.Int64
}

var _ provider.Embedder = (*Embedder)(nil)

// NewEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns the concrete type to allow test assertions.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// Vectorize generates deterministic embeddings for the input texts.
func (m *Embedder) Vectorize(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount.Add(1)

	if m.VectorizeFunc != nil {
		return m.VectorizeFunc(ctx, texts)
	}

	dim := m.Dim
	if dim <= 0 {
		dim = 384
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = generateDeterministicVector(text, dim)
	}
	return vectors, nil
}

// Name returns the provider identifier.
func (m *Embedder) Name() string {
	if m.EmbedderName != "" {
		return m.EmbedderName
	}
	return "Mock"
}

// MaxBatchSize returns the base batch size from the profile.
func (m *Embedder) MaxBatchSize() int {
	return m.Profile().BaseBatchSize
}

// Profile returns the configured profile, or provider.DefaultProfile.
func (m *Embedder) Profile() provider.Profile {
	if m.EmbedderProfile != (provider.Profile{}) {
		return m.EmbedderProfile
	}
	return provider.DefaultProfile
}

// CallCount returns the number of Vectorize invocations.
func (m *Embedder) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *Embedder) Reset() {
	m.callCount.Store(0)
	m.VectorizeFunc = nil
}

// generateDeterministicVector creates a deterministic embedding vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}
	return vector
}
