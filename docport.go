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


// Package docport ingests documents into a vector store: chunk texts are
// embedded in adaptively sized batches under bounded concurrency with
// retries, reduced to a 3-D projection, and persisted through a
// write-then-verify import transaction.
package docport

import (
	"context"
	"log/slog"

	"github.com/poiesic/docport/core"
	"github.com/poiesic/docport/importer"
	"github.com/poiesic/docport/pipeline"
	"github.com/poiesic/docport/provider"
	"github.com/poiesic/docport/store"
)

// Service wires the embedding pipeline and the importer over a store and a
// provider registry. Safe for concurrent use.
type Service struct {
	store       store.Store
	registry    *provider.Registry
	pipeline    *pipeline.Pipeline
	importer    *importer.Importer
	collections *importer.CollectionMap
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	pipelineOpts []pipeline.Option
	importerOpts []importer.Option
	logger       *slog.Logger
}

// WithPipelineOptions forwards options to the embedding pipeline.
func WithPipelineOptions(opts ...pipeline.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithImporterOptions forwards options to the importer.
func WithImporterOptions(opts ...importer.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.importerOpts = append(o.importerOpts, opts...)
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService creates a Service over an open store and a provider registry.
// The service takes ownership of the store; Close closes it.
func NewService(st store.Store, registry *provider.Registry, opts ...ServiceOption) *Service {
	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	collections := importer.NewCollectionMap()
	pipelineOpts := append([]pipeline.Option{pipeline.WithLogger(options.logger)}, options.pipelineOpts...)
	importerOpts := append([]importer.Option{
		importer.WithLogger(options.logger),
		importer.WithCollections(collections),
	}, options.importerOpts...)

	return &Service{
		store:       st,
		registry:    registry,
		pipeline:    pipeline.New(pipelineOpts...),
		importer:    importer.New(st, importerOpts...),
		collections: collections,
		logger:      options.logger,
	}
}

// Ingest embeds the document's chunks with the named provider, computes
// their 3-D projections, and imports the document. The embedding phase runs
// under a deadline proportional to the chunk count; in-flight work past the
// deadline is abandoned, not imported. Returns the store-assigned document
// id.
func (s *Service) Ingest(ctx context.Context, doc *core.Document, embedderName string) (core.ID, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return "", err
	}

	embedder, err := s.registry.Get(embedderName)
	if err != nil {
		return "", err
	}

	texts := doc.ChunkTexts()
	s.logger.Info("ingesting document",
		"title", doc.Title, "chunks", len(texts), "provider", embedder.Name())

	embedCtx, cancel := context.WithTimeout(ctx, pipeline.EmbedTimeout(len(texts)))
	defer cancel()

	vectors, err := s.pipeline.PlanAndEmbed(embedCtx, texts, embedder)
	if err != nil {
		return "", err
	}

	projections := pipeline.Project3D(vectors)
	for i, chunk := range doc.Chunks {
		chunk.Vector = vectors[i]
		chunk.Projection = projections[i]
	}

	return s.importer.ImportDocument(ctx, doc, embedder.Name())
}

// DeleteDocument removes a document record and every chunk referencing it
// in the named provider's collection. Returns store.ErrNotFound if the
// document record does not exist; chunks are removed either way.
func (s *Service) DeleteDocument(ctx context.Context, id core.ID, embedderName string) error {
	chunkCollection := s.collections.ChunkCollection(embedderName)

	deleted, err := s.store.DeleteMany(ctx, chunkCollection, store.Filter{Property: "docId", Equals: string(id)})
	if err != nil {
		return err
	}
	s.logger.Info("deleted document chunks", "docId", id, "chunks", deleted)

	return s.store.DeleteByID(ctx, importer.DocumentCollection, id)
}

// DocumentChunkCount returns the number of stored chunks referencing the
// document in the named provider's collection.
func (s *Service) DocumentChunkCount(ctx context.Context, id core.ID, embedderName string) (int, error) {
	chunkCollection := s.collections.ChunkCollection(embedderName)
	return s.store.AggregateCount(ctx, chunkCollection, store.Filter{Property: "docId", Equals: string(id)})
}

// Close closes the underlying store.
func (s *Service) Close() error {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}
