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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/docport/core"
	"github.com/poiesic/docport/store"
)

// Store implements store.Store on BadgerDB. In-memory mode is supported for
// tests; Reconnect on an in-memory store keeps the live handle because
// reopening would discard all data.
type Store struct {
	mu       sync.RWMutex
	db       *badger.DB
	path     string
	inMemory bool
	logger   *slog.Logger
}

var _ store.Store = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithInMemory opens the database in memory, without files.
func WithInMemory() StoreOption {
	return func(s *Store) {
		s.inMemory = true
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// New opens a BadgerDB-backed store at path.
func New(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := openDB(s.path, s.inMemory, s.logger)
	if err != nil {
		return nil, err
	}
	s.db = db
	return s, nil
}

// handle returns the live database handle, or ErrStorageClosed.
func (s *Store) handle() (*badger.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil || s.db.IsClosed() {
		return nil, store.ErrStorageClosed
	}
	return s.db, nil
}

// IsReady reports whether the database handle is open.
func (s *Store) IsReady(ctx context.Context) bool {
	_, err := s.handle()
	return err == nil
}

// Probe lists the collection registry in a read transaction, verifying the
// database end to end.
func (s *Store) Probe(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	return db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(registrySpace)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		iter.Rewind()
		return nil
	})
}

// Reconnect reopens the database if the handle is closed. A healthy handle
// is left alone.
func (s *Store) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil && !s.db.IsClosed() {
		return nil
	}

	s.logger.Info("reopening database", "path", s.path, "inMemory", s.inMemory)
	db, err := openDB(s.path, s.inMemory, s.logger)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrConnection, err)
	}
	s.db = db
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil || s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// CollectionExists reports whether the named collection was created.
func (s *Store) CollectionExists(ctx context.Context, collection string) (bool, error) {
	db, err := s.handle()
	if err != nil {
		return false, err
	}

	exists := false
	err = db.View(func(tx *badger.Txn) error {
		_, err := tx.Get(registryKey(collection))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// CreateCollection registers the collection. Existing collections are left
// untouched.
func (s *Store) CreateCollection(ctx context.Context, collection string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	return db.Update(func(tx *badger.Txn) error {
		return tx.Set(registryKey(collection), nil)
	})
}

// InsertOne writes a record and returns its assigned id.
func (s *Store) InsertOne(ctx context.Context, collection string, record *store.Record) (core.ID, error) {
	db, err := s.handle()
	if err != nil {
		return "", err
	}

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", store.ErrCollectionNotFound, collection)
	}

	data, err := store.MarshalRecord(record)
	if err != nil {
		return "", err
	}

	id := core.ID(uuid.NewString())
	err = db.Update(func(tx *badger.Txn) error {
		return tx.Set(recordKey(collection, id), data)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// InsertMany writes records in order and stops at the first failure.
// Records written before the failure stay written; the report says exactly
// which.
func (s *Store) InsertMany(ctx context.Context, collection string, records []*store.Record) (*store.InsertReport, error) {
	report := &store.InsertReport{}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			report.ItemErrors = map[int]error{i: err}
			return report, nil
		}

		id, err := s.InsertOne(ctx, collection, record)
		if err != nil {
			report.ItemErrors = map[int]error{i: err}
			return report, nil
		}
		report.IDs = append(report.IDs, id)
	}
	return report, nil
}

// GetByID retrieves a record by id.
func (s *Store) GetByID(ctx context.Context, collection string, id core.ID) (*store.Record, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var record *store.Record
	err = db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(recordKey(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = store.UnmarshalRecord(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteByID removes a record by id.
func (s *Store) DeleteByID(ctx context.Context, collection string, id core.ID) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	return db.Update(func(tx *badger.Txn) error {
		key := recordKey(collection, id)
		if _, err := tx.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		} else if err != nil {
			return err
		}
		return tx.Delete(key)
	})
}

// DeleteMany removes all records matching the filter and returns the count.
func (s *Store) DeleteMany(ctx context.Context, collection string, filter store.Filter) (int, error) {
	keys, err := s.matchingKeys(collection, filter)
	if err != nil {
		return 0, err
	}

	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range keys {
		err := db.Update(func(tx *badger.Txn) error {
			return tx.Delete(key)
		})
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// AggregateCount counts records matching the filter without decoding more
// than their properties.
func (s *Store) AggregateCount(ctx context.Context, collection string, filter store.Filter) (int, error) {
	keys, err := s.matchingKeys(collection, filter)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// matchingKeys scans a collection and returns the keys of records matching
// the filter.
func (s *Store) matchingKeys(collection string, filter store.Filter) ([][]byte, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var keys [][]byte
	err = db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = collectionPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			match := false
			err := item.Value(func(val []byte) error {
				record, err := store.UnmarshalRecord(val)
				if err != nil {
					return err
				}
				match = matchesFilter(record, filter)
				return nil
			})
			if err != nil {
				return err
			}
			if match {
				keys = append(keys, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// matchesFilter reports whether a record satisfies the filter. Property
// values went through JSON, so numbers compare as float64.
func matchesFilter(record *store.Record, filter store.Filter) bool {
	if filter.Property == "" {
		return true
	}
	value, ok := record.Properties[filter.Property]
	return ok && value == filter.Equals
}
