package store

import (
	"context"

	"github.com/poiesic/docport/core"
)

// Record is a stored object: a property map plus an optional embedding
// vector. Property values are restricted to JSON-representable types.
type Record struct {
	Properties map[string]any
	Vector     []float32
}

// Filter selects records whose named property equals the given value.
type Filter struct {
	Property string
	Equals   any
}

// InsertReport is the outcome of a bulk insert. IDs holds the assigned id
// for every successfully written record, in input order; ItemErrors maps
// input positions to their failures. A bulk insert with ItemErrors non-empty
// wrote the records it reports in IDs and nothing else.
type InsertReport struct {
	IDs        []core.ID
	ItemErrors map[int]error
}

// Failed reports whether any item in the bulk insert failed.
func (r *InsertReport) Failed() bool {
	return len(r.ItemErrors) > 0
}

// Connection is the health surface of a store: liveness probing and
// reconnection. Store implementations satisfy it.
type Connection interface {
	// IsReady reports whether the connection is usable without performing
	// a round trip.
	IsReady(ctx context.Context) bool

	// Probe performs a cheap real operation against the backend to verify
	// the connection end to end.
	Probe(ctx context.Context) error

	// Reconnect re-establishes the connection. It is idempotent; calling
	// it on a healthy connection is safe.
	Reconnect(ctx context.Context) error
}

// Store provides collection-scoped record storage with vectors.
// Implementations must be safe for concurrent use.
type Store interface {
	Connection

	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// CreateCollection creates the named collection. Creating an existing
	// collection is a no-op.
	CreateCollection(ctx context.Context, collection string) error

	// InsertOne writes a single record and returns its assigned id.
	InsertOne(ctx context.Context, collection string, record *Record) (core.ID, error)

	// InsertMany writes records in input order and stops at the first
	// failure. The report always reflects exactly what was written.
	InsertMany(ctx context.Context, collection string, records []*Record) (*InsertReport, error)

	// GetByID retrieves a record by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, collection string, id core.ID) (*Record, error)

	// DeleteByID removes a record by id. Returns ErrNotFound if absent.
	DeleteByID(ctx context.Context, collection string, id core.ID) error

	// DeleteMany removes all records matching the filter and returns how
	// many were removed.
	DeleteMany(ctx context.Context, collection string, filter Filter) (int, error)

	// AggregateCount counts records matching the filter without loading
	// them.
	AggregateCount(ctx context.Context, collection string, filter Filter) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
