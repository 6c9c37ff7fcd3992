// Package semindex defines the contract for the external semantic-similarity
// index that backs world-fact retrieval.
//
// The index stores short fact documents keyed by fact ID and answers
// nearest-neighbour queries over their embeddings. Both embedding computation
// and vector search live behind this interface — the dialogue core only sees
// ranked (id, document, metadata, distance) results.
//
// Implementations must be safe for concurrent use.
package semindex

import "context"

// Document is a single fact document to be indexed.
type Document struct {
	// ID is the stable fact identifier and upsert key.
	ID string

	// Text is the content that gets embedded and searched.
	Text string

	// Metadata is carried verbatim and returned with query results.
	Metadata map[string]string
}

// Result is one ranked hit from a similarity query.
type Result struct {
	// ID is the matched document's ID.
	ID string

	// Document is the stored text.
	Document string

	// Metadata is the stored metadata.
	Metadata map[string]string

	// Distance is the cosine distance to the query; lower is more similar.
	Distance float64
}

// Index is the abstraction over any semantic-similarity backend.
type Index interface {
	// Query returns up to k documents ranked by ascending distance from text.
	// An error indicates the backend is unavailable or the query failed.
	Query(ctx context.Context, text string, k int) ([]Result, error)

	// Upsert indexes the given documents, replacing any existing documents
	// with the same IDs.
	Upsert(ctx context.Context, docs []Document) error
}
