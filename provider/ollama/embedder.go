// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ollama implements provider.Embedder against a local Ollama
// instance using its native API.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docport/provider"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Embedder implements provider.Embedder for Ollama.
type Embedder struct {
	profile  provider.Profile
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ provider.Embedder = (*Embedder)(nil)

// NewEmbedder creates an Ollama embedder. The config Host is the native
// Ollama URL (no /v1 suffix), e.g. "http://localhost:11434".
func NewEmbedder(config *provider.Config) (provider.Embedder, error) {
	if config.Host == "" {
		return nil, errors.New("ollama: Host is required")
	}
	if config.Model == "" {
		return nil, errors.New("ollama: Model is required")
	}

	client, err := ollama.New(
		ollama.WithServerURL(strings.TrimSuffix(config.Host, "/v1")),
		ollama.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		profile:  provider.OllamaProfile,
		embedder: embedder,
		logger:   slog.Default().With("component", "ollama-embedder"),
	}, nil
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
		return nil, provider.NewError(e.Name(), provider.ClassifyMessage(err), err)
	}

	if len(vectors) != len(texts) {
		return nil, provider.NewError(e.Name(), provider.CategoryServer,
			fmt.Errorf("embedding count mismatch: expected %d, received %d", len(texts), len(vectors)))
	}

	return vectors, nil
}

// Name returns the provider identifier.
func (e *Embedder) Name() string {
	return "Ollama"
}

// MaxBatchSize returns the base batch size from the provider profile.
func (e *Embedder) MaxBatchSize() int {
	return e.profile.BaseBatchSize
}

// Profile returns the provider's tuning constants.
func (e *Embedder) Profile() provider.Profile {
	return e.profile
}
