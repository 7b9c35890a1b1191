// Package core defines the domain model shared across docport:
// documents, chunks, identifiers, and their validation rules.
// It has no dependencies on storage or embedding providers.
package core
