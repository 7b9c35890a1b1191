// Package importer persists embedded documents through a write-then-verify
// transaction: document record first, chunks in sub-batches, then a count
// check against the store. Any failure rolls the document back so readers
// never see a partial chunk set after the call returns.
package importer
