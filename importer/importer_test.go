package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/docport/core"
	"github.com/poiesic/docport/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory store.Store with injectable failure hooks.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string]bool
	records     map[string]map[core.ID]*store.Record
	nextID      int
	reconnects  int

	// insertManyHook, when set, runs instead of the default bulk insert.
	// call is the 1-based InsertMany invocation count.
	insertManyHook func(call int, collection string, records []*store.Record) (*store.InsertReport, error)
	insertCalls    int

	// countHook, when set, overrides AggregateCount.
	countHook func(collection string, filter store.Filter) (int, error)

	// deleteErr, when set, fails every delete.
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string]bool),
		records:     make(map[string]map[core.ID]*store.Record),
	}
}

func (f *fakeStore) IsReady(ctx context.Context) bool { return true }
func (f *fakeStore) Probe(ctx context.Context) error  { return nil }
func (f *fakeStore) Close() error                     { return nil }

func (f *fakeStore) Reconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	return nil
}

func (f *fakeStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collections[collection], nil
}

func (f *fakeStore) CreateCollection(ctx context.Context, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[collection] = true
	if f.records[collection] == nil {
		f.records[collection] = make(map[core.ID]*store.Record)
	}
	return nil
}

func (f *fakeStore) insertLocked(collection string, record *store.Record) core.ID {
	f.nextID++
	id := core.ID(fmt.Sprintf("id-%d", f.nextID))
	if f.records[collection] == nil {
		f.records[collection] = make(map[core.ID]*store.Record)
	}
	f.records[collection][id] = record
	return id
}

func (f *fakeStore) InsertOne(ctx context.Context, collection string, record *store.Record) (core.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(collection, record), nil
}

func (f *fakeStore) InsertMany(ctx context.Context, collection string, records []*store.Record) (*store.InsertReport, error) {
	f.mu.Lock()
	f.insertCalls++
	call := f.insertCalls
	hook := f.insertManyHook
	f.mu.Unlock()

	if hook != nil {
		return hook(call, collection, records)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	report := &store.InsertReport{}
	for _, record := range records {
		report.IDs = append(report.IDs, f.insertLocked(collection, record))
	}
	return report, nil
}

func (f *fakeStore) GetByID(ctx context.Context, collection string, id core.ID) (*store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, collection string, id core.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.records[collection][id]; !ok {
		return store.ErrNotFound
	}
	delete(f.records[collection], id)
	return nil
}

func (f *fakeStore) DeleteMany(ctx context.Context, collection string, filter store.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	deleted := 0
	for id, record := range f.records[collection] {
		if record.Properties[filter.Property] == filter.Equals {
			delete(f.records[collection], id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeStore) AggregateCount(ctx context.Context, collection string, filter store.Filter) (int, error) {
	f.mu.Lock()
	hook := f.countHook
	f.mu.Unlock()
	if hook != nil {
		return hook(collection, filter)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, record := range f.records[collection] {
		if record.Properties[filter.Property] == filter.Equals {
			count++
		}
	}
	return count, nil
}

var _ store.Store = (*fakeStore)(nil)

func testDocument(chunks int) *core.Document {
	doc := &core.Document{
		Title:  "Graph Algorithms",
		Labels: []string{"cs"},
	}
	for i := 0; i < chunks; i++ {
		doc.Chunks = append(doc.Chunks, &core.Chunk{
			Content: fmt.Sprintf("chunk %d", i),
			Seq:     i,
			Vector:  []float32{float32(i), 1, 2},
		})
	}
	return doc
}

func fastImporter(f *fakeStore, opts ...Option) *Importer {
	health := store.NewHealthMonitor(f, store.WithHealthDelay(time.Millisecond))
	return New(f, append([]Option{WithHealthMonitor(health)}, opts...)...)
}

func TestImportDocument(t *testing.T) {
	f := newFakeStore()
	im := fastImporter(f)
	doc := testDocument(7)

	id, err := im.ImportDocument(context.Background(), doc, "Ollama")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, doc.Id)

	// Both collections were created.
	assert.True(t, f.collections[DocumentCollection])
	assert.True(t, f.collections["DOCPORT_Embedding_Ollama"])

	// The document record exists and chunks are stamped and counted.
	_, err = f.GetByID(context.Background(), DocumentCollection, id)
	require.NoError(t, err)

	count, err := f.AggregateCount(context.Background(), "DOCPORT_Embedding_Ollama", docFilter(id))
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	for _, chunk := range doc.Chunks {
		assert.Equal(t, id, chunk.DocId)
		assert.Equal(t, doc.Title, chunk.Title)
	}
}

func TestImportDocumentSubBatches(t *testing.T) {
	f := newFakeStore()
	im := fastImporter(f, WithSubBatchSize(10))

	_, err := im.ImportDocument(context.Background(), testDocument(25), "Ollama")
	require.NoError(t, err)
	assert.Equal(t, 3, f.insertCalls)
}

func TestImportDocumentInvalid(t *testing.T) {
	f := newFakeStore()
	im := fastImporter(f)

	_, err := im.ImportDocument(context.Background(), &core.Document{}, "Ollama")
	assert.ErrorIs(t, err, core.ErrEmptyTitle)
	assert.Empty(t, f.records[DocumentCollection])
}

func TestImportDocumentItemErrorRollsBack(t *testing.T) {
	f := newFakeStore()
	itemErr := errors.New("vector length mismatch")
	f.insertManyHook = func(call int, collection string, records []*store.Record) (*store.InsertReport, error) {
		if call == 2 {
			// First item of the second sub-batch fails; nothing from this
			// sub-batch is written.
			return &store.InsertReport{ItemErrors: map[int]error{12: itemErr}}, nil
		}
		report := &store.InsertReport{}
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, record := range records {
			report.IDs = append(report.IDs, f.insertLocked(collection, record))
		}
		return report, nil
	}

	im := fastImporter(f, WithSubBatchSize(50))
	doc := testDocument(120)

	_, err := im.ImportDocument(context.Background(), doc, "Ollama")
	require.Error(t, err)

	var itemErrTyped *ItemError
	require.ErrorAs(t, err, &itemErrTyped)
	assert.Equal(t, 1, itemErrTyped.SubBatch)
	assert.Equal(t, 12, itemErrTyped.Item)

	// The document is gone and no chunks remain.
	_, err = f.GetByID(context.Background(), DocumentCollection, doc.Id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	count, err := f.AggregateCount(context.Background(), "DOCPORT_Embedding_Ollama", docFilter(doc.Id))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestImportDocumentCountMismatchRollsBack(t *testing.T) {
	f := newFakeStore()
	f.countHook = func(collection string, filter store.Filter) (int, error) {
		return 3, nil
	}

	im := fastImporter(f)
	doc := testDocument(5)

	_, err := im.ImportDocument(context.Background(), doc, "Ollama")
	require.Error(t, err)

	var consErr *ConsistencyError
	require.ErrorAs(t, err, &consErr)
	assert.Equal(t, 5, consErr.Expected)
	assert.Equal(t, 3, consErr.Actual)

	_, err = f.GetByID(context.Background(), DocumentCollection, doc.Id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImportDocumentRetriesConnectionErrors(t *testing.T) {
	f := newFakeStore()
	f.insertManyHook = func(call int, collection string, records []*store.Record) (*store.InsertReport, error) {
		if call == 1 {
			return nil, errors.New("connection reset by peer")
		}
		report := &store.InsertReport{}
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, record := range records {
			report.IDs = append(report.IDs, f.insertLocked(collection, record))
		}
		return report, nil
	}

	im := fastImporter(f)
	doc := testDocument(5)

	id, err := im.ImportDocument(context.Background(), doc, "Ollama")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, 1, f.reconnects)
}

func TestImportDocumentRollbackFailurePreservesCause(t *testing.T) {
	f := newFakeStore()
	f.countHook = func(collection string, filter store.Filter) (int, error) {
		f.mu.Lock()
		f.deleteErr = errors.New("delete rejected")
		f.mu.Unlock()
		return 0, nil
	}

	im := fastImporter(f)
	doc := testDocument(4)

	_, err := im.ImportDocument(context.Background(), doc, "Ollama")
	require.Error(t, err)

	// The surfaced error is the consistency failure, not the rollback one.
	var consErr *ConsistencyError
	assert.ErrorAs(t, err, &consErr)
	assert.NotContains(t, err.Error(), "delete rejected")
}
