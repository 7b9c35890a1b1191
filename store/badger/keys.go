package badger

import (
	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/docport/core"
)

const (
	// recordSpace namespaces record keys.
	recordSpace = "r:"

	// registrySpace namespaces the collection registry.
	registrySpace = "c:"
)

// collectionPrefix returns the fixed-width key prefix for a collection.
// Collection names are user-derived and unbounded; an 8-byte BLAKE2b digest
// keeps every record key compact and uniform.
func collectionPrefix(collection string) []byte {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(collection))

	prefix := make([]byte, 0, len(recordSpace)+9)
	prefix = append(prefix, recordSpace...)
	prefix = h.Sum(prefix)
	return append(prefix, ':')
}

// recordKey builds the full key for a record in a collection.
func recordKey(collection string, id core.ID) []byte {
	return append(collectionPrefix(collection), id...)
}

// registryKey builds the registry key marking a collection's existence.
func registryKey(collection string) []byte {
	return []byte(registrySpace + collection)
}
