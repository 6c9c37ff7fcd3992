// Package embeddings defines the Provider interface for text-embedding
// backends used by the semantic world index.
//
// A provider maps text strings to dense float32 vectors. The dialogue core
// never touches embeddings directly — only the index client in pkg/semindex
// consumes this interface.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider instance share the same
// dimensionality, as reported by Dimensions.
type Provider interface {
	// Embed computes the embedding vector for a single text string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embedding vectors for a slice of texts in one
	// backend call. The result has the same length and order as texts.
	// On error the whole result is nil; partial results are not returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every vector produced by this
	// provider. Constant for the lifetime of the instance.
	Dimensions() int

	// ModelID returns the backend-specific model identifier, for logging and
	// for detecting model mismatches between indexing and querying.
	ModelID() string
}
