package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docport/provider"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements provider.Embedder using an OpenAI-compatible
// embeddings endpoint.
type Embedder struct {
	name     string
	profile  provider.Profile
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ provider.Embedder = (*Embedder)(nil)

func newEmbedder(config *provider.Config, name string, profile provider.Profile) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	token := config.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	profile = profile.Normalize()
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(profile.BatchCeiling),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		name:     name,
		profile:  profile,
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder", "provider", name),
	}, nil
}

// NewEmbedder creates an embedder for the OpenAI embeddings API.
//
// Returns provider.Embedder interface to enforce abstraction.
func NewEmbedder(config *provider.Config) (provider.Embedder, error) {
	return newEmbedder(config, "OpenAI", provider.OpenAIProfile)
}

// NewUpstageEmbedder creates an embedder for the Upstage Solar API, which
// speaks the OpenAI wire format but enforces stricter batch limits.
func NewUpstageEmbedder(config *provider.Config) (provider.Embedder, error) {
	return newEmbedder(config, "Upstage", provider.UpstageProfile)
}

// Vectorize generates one embedding per input text.
func (e *Embedder) Vectorize(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	e.logger.Debug("generating embeddings", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, provider.NewError(e.name, provider.ClassifyMessage(err), err)
	}

	if len(vectors) != len(texts) {
		return nil, provider.NewError(e.name, provider.CategoryServer,
			fmt.Errorf("embedding count mismatch: expected %d, received %d", len(texts), len(vectors)))
	}

	return vectors, nil
}

// Name returns the provider identifier.
func (e *Embedder) Name() string {
	return e.name
}

// MaxBatchSize returns the base batch size from the provider profile.
func (e *Embedder) MaxBatchSize() int {
	return e.profile.BaseBatchSize
}

// Profile returns the provider's tuning constants.
func (e *Embedder) Profile() provider.Profile {
	return e.profile
}
