package importer

import (
	"regexp"
	"sync"
)

const (
	// DocumentCollection holds document records for every embedder.
	DocumentCollection = "DOCPORT_Document"

	// chunkCollectionPrefix namespaces per-embedder chunk collections.
	chunkCollectionPrefix = "DOCPORT_Embedding_"
)

var collectionNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// CollectionMap resolves a logical embedder name to its physical chunk
// collection. Lookups are memoized and safe for concurrent use. The map is
// injected into the importer rather than kept as shared mutable state.
type CollectionMap struct {
	mu    sync.Mutex
	names map[string]string
}

// NewCollectionMap creates an empty collection map.
func NewCollectionMap() *CollectionMap {
	return &CollectionMap{names: make(map[string]string)}
}

// ChunkCollection returns the chunk collection name for an embedder.
// Non-alphanumeric characters in the embedder name become underscores.
func (m *CollectionMap) ChunkCollection(embedderName string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name, ok := m.names[embedderName]; ok {
		return name
	}
	name := chunkCollectionPrefix + collectionNameSanitizer.ReplaceAllString(embedderName, "_")
	m.names[embedderName] = name
	return name
}
