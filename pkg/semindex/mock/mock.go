// Package mock provides a test double for the semindex.Index interface.
package mock

import (
	"context"
	"sync"

	"github.com/fennwald/loreweave/pkg/semindex"
)

// Compile-time interface check.
var _ semindex.Index = (*Index)(nil)

// Index is a mock implementation of [semindex.Index].
//
// QueryResults are returned (truncated to k) by every Query call. Upserted
// documents are recorded for inspection. Safe for concurrent use.
type Index struct {
	mu sync.Mutex

	// QueryResults is returned by Query, truncated to the requested k.
	QueryResults []semindex.Result

	// QueryErr, if non-nil, is returned by every Query call.
	QueryErr error

	// UpsertErr, if non-nil, is returned by every Upsert call.
	UpsertErr error

	// Queries records every query text passed to Query.
	Queries []string

	// Upserted records every document passed to Upsert, in call order.
	Upserted []semindex.Document
}

// Query implements [semindex.Index].
func (ix *Index) Query(_ context.Context, text string, k int) ([]semindex.Result, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.Queries = append(ix.Queries, text)
	if ix.QueryErr != nil {
		return nil, ix.QueryErr
	}
	results := ix.QueryResults
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	out := make([]semindex.Result, len(results))
	copy(out, results)
	return out, nil
}

// Upsert implements [semindex.Index].
func (ix *Index) Upsert(_ context.Context, docs []semindex.Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.UpsertErr != nil {
		return ix.UpsertErr
	}
	ix.Upserted = append(ix.Upserted, docs...)
	return nil
}

// QueryCount returns the number of Query invocations.
func (ix *Index) QueryCount() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.Queries)
}
