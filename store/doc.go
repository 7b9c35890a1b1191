// Package store defines the vector storage contract for imported documents
// and chunks, plus the connection health machinery shared by all backends.
package store
