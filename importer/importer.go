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


package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docport/core"
	"github.com/poiesic/docport/pipeline"
	"github.com/poiesic/docport/store"
)

// DefaultSubBatchSize bounds the payload of one bulk chunk insert.
const DefaultSubBatchSize = 50

// importState names the phases of an import for logging.
type importState int

const (
	statePreparing importState = iota
	stateDocInserted
	stateChunksInserting
	stateVerified
	stateRollingBack
	stateFailed
)

func (s importState) String() string {
	switch s {
	case statePreparing:
		return "PREPARING"
	case stateDocInserted:
		return "DOC_INSERTED"
	case stateChunksInserting:
		return "CHUNKS_INSERTING"
	case stateVerified:
		return "VERIFIED"
	case stateRollingBack:
		return "ROLLING_BACK"
	case stateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Importer writes embedded documents to a store. Every store call goes
// through the health monitor, so a connection dropping mid-import is
// repaired rather than fatal.
type Importer struct {
	store        store.Store
	health       *store.HealthMonitor
	collections  *CollectionMap
	monitor      pipeline.Monitor
	logger       *slog.Logger
	subBatchSize int
}

// Option configures an Importer.
type Option func(*Importer)

// WithSubBatchSize sets the chunk insert sub-batch size.
func WithSubBatchSize(size int) Option {
	return func(im *Importer) {
		im.subBatchSize = size
	}
}

// WithHealthMonitor replaces the default health monitor.
func WithHealthMonitor(health *store.HealthMonitor) Option {
	return func(im *Importer) {
		im.health = health
	}
}

// WithCollections replaces the default collection map.
func WithCollections(collections *CollectionMap) Option {
	return func(im *Importer) {
		im.collections = collections
	}
}

// WithMonitor installs a progress monitor.
func WithMonitor(monitor pipeline.Monitor) Option {
	return func(im *Importer) {
		im.monitor = monitor
	}
}

// WithLogger sets the importer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		im.logger = logger
	}
}

// New creates an Importer over the given store.
func New(st store.Store, opts ...Option) *Importer {
	im := &Importer{
		store:        st,
		collections:  NewCollectionMap(),
		monitor:      pipeline.NoopMonitor(),
		logger:       slog.Default(),
		subBatchSize: DefaultSubBatchSize,
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.health == nil {
		im.health = store.NewHealthMonitor(st, store.WithHealthLogger(im.logger))
	}
	return im
}

// ImportDocument writes the document record, then its chunks in sub-batches,
// then verifies the stored chunk count. On any failure after the document
// record exists, the document and its chunks are deleted before the error is
// returned, so the store never keeps a partial chunk set. Verification is
// best-effort atomicity, not ACID: a reader racing the import may see the
// document before its chunks.
func (im *Importer) ImportDocument(ctx context.Context, doc *core.Document, embedderName string) (core.ID, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return "", err
	}

	chunkCollection := im.collections.ChunkCollection(embedderName)
	im.logState(statePreparing, doc, "collection", chunkCollection)

	if err := im.health.EnsureHealthy(ctx); err != nil {
		return "", err
	}
	if err := im.ensureCollection(ctx, DocumentCollection); err != nil {
		return "", err
	}
	if err := im.ensureCollection(ctx, chunkCollection); err != nil {
		return "", err
	}

	var docID core.ID
	err := im.health.WithRetry(ctx, func(ctx context.Context) error {
		id, err := im.store.InsertOne(ctx, DocumentCollection, documentRecord(doc))
		if err != nil {
			return err
		}
		docID = id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("inserting document %q: %w", doc.Title, err)
	}

	doc.Id = docID
	doc.StampChunks()
	im.logState(stateDocInserted, doc)

	if err := im.insertAndVerify(ctx, doc, chunkCollection); err != nil {
		im.rollback(ctx, docID, chunkCollection, err)
		im.logState(stateFailed, doc, "err", err)
		return "", fmt.Errorf("importing document %q: %w", doc.Title, err)
	}

	im.logState(stateVerified, doc, "chunks", len(doc.Chunks))
	return docID, nil
}

// insertAndVerify runs the CHUNKS_INSERTING and VERIFIED phases.
func (im *Importer) insertAndVerify(ctx context.Context, doc *core.Document, chunkCollection string) error {
	im.logState(stateChunksInserting, doc, "chunks", len(doc.Chunks), "subBatchSize", im.subBatchSize)

	subBatches := (len(doc.Chunks) + im.subBatchSize - 1) / im.subBatchSize
	for i := 0; i < len(doc.Chunks); i += im.subBatchSize {
		subBatch := i / im.subBatchSize
		started := time.Now()

		// A long import must tolerate the connection dropping mid-way.
		if err := im.health.EnsureHealthy(ctx); err != nil {
			return err
		}

		end := min(i+im.subBatchSize, len(doc.Chunks))
		records := make([]*store.Record, 0, end-i)
		for _, chunk := range doc.Chunks[i:end] {
			records = append(records, chunkRecord(chunk))
		}

		var report *store.InsertReport
		err := im.health.WithRetry(ctx, func(ctx context.Context) error {
			var err error
			report, err = im.store.InsertMany(ctx, chunkCollection, records)
			return err
		})
		if err != nil {
			return fmt.Errorf("inserting sub-batch %d/%d: %w", subBatch+1, subBatches, err)
		}
		if report.Failed() {
			for item, itemErr := range report.ItemErrors {
				return &ItemError{SubBatch: subBatch, Item: item, Err: itemErr}
			}
		}

		im.monitor.SubBatchImported(subBatch, subBatches, time.Since(started))
	}

	var count int
	err := im.health.WithRetry(ctx, func(ctx context.Context) error {
		var err error
		count, err = im.store.AggregateCount(ctx, chunkCollection, docFilter(doc.Id))
		return err
	})
	if err != nil {
		return fmt.Errorf("verifying chunk count: %w", err)
	}
	if count != len(doc.Chunks) {
		return &ConsistencyError{DocID: doc.Id, Expected: len(doc.Chunks), Actual: count}
	}
	return nil
}

// rollback deletes the document record and any chunks written so far.
// Rollback failures are logged; the original cause stays the reported error.
func (im *Importer) rollback(ctx context.Context, docID core.ID, chunkCollection string, cause error) {
	im.logger.Warn("rolling back import", "state", stateRollingBack.String(), "docId", docID, "cause", cause)

	err := im.health.WithRetry(ctx, func(ctx context.Context) error {
		return im.store.DeleteByID(ctx, DocumentCollection, docID)
	})
	if err != nil {
		im.logger.Error("rollback: deleting document record failed", "docId", docID, "err", err)
	}

	err = im.health.WithRetry(ctx, func(ctx context.Context) error {
		_, err := im.store.DeleteMany(ctx, chunkCollection, docFilter(docID))
		return err
	})
	if err != nil {
		im.logger.Error("rollback: deleting chunks failed", "docId", docID, "err", err)
	}
}

// ensureCollection creates the collection if it does not exist yet.
func (im *Importer) ensureCollection(ctx context.Context, collection string) error {
	return im.health.WithRetry(ctx, func(ctx context.Context) error {
		exists, err := im.store.CollectionExists(ctx, collection)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		im.logger.Info("creating collection", "collection", collection)
		return im.store.CreateCollection(ctx, collection)
	})
}

func (im *Importer) logState(s importState, doc *core.Document, args ...any) {
	im.logger.Debug("import state", append([]any{"state", s.String(), "title", doc.Title}, args...)...)
}

// docFilter selects chunks belonging to a document.
func docFilter(id core.ID) store.Filter {
	return store.Filter{Property: "docId", Equals: string(id)}
}

// documentRecord builds the store record for a document. Chunk vectors stay
// out of the document record.
func documentRecord(doc *core.Document) *store.Record {
	props := map[string]any{
		"title": doc.Title,
	}
	if len(doc.Labels) > 0 {
		props["labels"] = doc.Labels
	}
	if len(doc.Meta) > 0 {
		props["meta"] = doc.Meta
	}
	return &store.Record{Properties: props}
}

// chunkRecord builds the store record for a chunk.
func chunkRecord(chunk *core.Chunk) *store.Record {
	props := map[string]any{
		"docId":    string(chunk.DocId),
		"title":    chunk.Title,
		"content":  chunk.Content,
		"sequence": chunk.Seq,
	}
	if len(chunk.Labels) > 0 {
		props["labels"] = chunk.Labels
	}
	if len(chunk.Projection) > 0 {
		props["pca"] = chunk.Projection
	}
	return &store.Record{Properties: props, Vector: chunk.Vector}
}
