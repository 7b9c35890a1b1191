package provider

// Profile holds per-provider tuning constants: how large embedding batches
// may grow and how many may be in flight at once. Values are policy, not
// truth; they default to figures that proved stable in production but every
// one of them is overridable per provider.
type Profile struct {
	// BaseBatchSize is the batch size for medium-sized inputs.
	BaseBatchSize int

	// LargeBatchMultiplier scales BaseBatchSize for large inputs (>200
	// texts). Strictly rate-limited providers keep 1 and lean on
	// concurrency instead of batch size.
	LargeBatchMultiplier int

	// BatchCeiling caps the scaled batch size for large inputs.
	BatchCeiling int

	// MaxConcurrent bounds the number of in-flight Vectorize calls.
	MaxConcurrent int
}

// Built-in profiles. Local providers get the largest ceilings; hosted APIs
// trade batch size against concurrency according to their rate limits.
var (
	// OllamaProfile suits a local Ollama instance: small batches, low
	// concurrency, since inference competes for local compute.
	OllamaProfile = Profile{BaseBatchSize: 16, LargeBatchMultiplier: 2, BatchCeiling: 128, MaxConcurrent: 4}

	// OpenAIProfile suits the OpenAI embeddings API: large batches and
	// high concurrency.
	OpenAIProfile = Profile{BaseBatchSize: 64, LargeBatchMultiplier: 3, BatchCeiling: 200, MaxConcurrent: 15}

	// UpstageProfile suits the Upstage Solar API: strict batch limits,
	// so batches stay at base size and throughput comes from concurrency.
	UpstageProfile = Profile{BaseBatchSize: 32, LargeBatchMultiplier: 1, BatchCeiling: 32, MaxConcurrent: 8}

	// DefaultProfile is a conservative middle ground for providers
	// without a dedicated profile.
	DefaultProfile = Profile{BaseBatchSize: 32, LargeBatchMultiplier: 2, BatchCeiling: 100, MaxConcurrent: 8}
)

// Normalize replaces non-positive fields with DefaultProfile values.
func (p Profile) Normalize() Profile {
	if p.BaseBatchSize <= 0 {
		p.BaseBatchSize = DefaultProfile.BaseBatchSize
	}
	if p.LargeBatchMultiplier <= 0 {
		p.LargeBatchMultiplier = DefaultProfile.LargeBatchMultiplier
	}
	if p.BatchCeiling <= 0 {
		p.BatchCeiling = DefaultProfile.BatchCeiling
	}
	if p.MaxConcurrent <= 0 {
		p.MaxConcurrent = DefaultProfile.MaxConcurrent
	}
	return p
}
