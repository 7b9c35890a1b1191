// Package mock provides a deterministic provider.Embedder test double.
package mock
