// Package postgres provides a PostgreSQL + pgvector implementation of
// [semindex.Index].
//
// Fact documents live in a single world_facts table with an HNSW index for
// fast approximate nearest-neighbour search over cosine distance. Embeddings
// are computed through an [embeddings.Provider] at upsert and query time.
//
// The pgvector extension must be available in the target database; [Migrate]
// installs it automatically via CREATE EXTENSION IF NOT EXISTS.
//
// Usage:
//
//	idx, err := postgres.New(ctx, dsn, embedder)
//	if err != nil { … }
//	defer idx.Close()
//
//	_ = idx.Upsert(ctx, docs)
//	hits, _ := idx.Query(ctx, "bandit attacks on the north road", 5)
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/fennwald/loreweave/pkg/provider/embeddings"
	"github.com/fennwald/loreweave/pkg/semindex"
)

// Compile-time interface check.
var _ semindex.Index = (*Index)(nil)

// Index is the pgvector-backed semantic index. All methods are safe for
// concurrent use.
type Index struct {
	pool     *pgxpool.Pool
	embedder embeddings.Provider
}

// New connects to the PostgreSQL database at dsn, registers pgvector types on
// every connection, and runs [Migrate] so the world_facts table and its HNSW
// index exist.
//
// The vector column dimension is taken from embedder.Dimensions() and is baked
// into the schema on first migration; switching embedding models afterwards
// requires a manual schema change.
func New(ctx context.Context, dsn string, embedder embeddings.Provider) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("semindex: embedder must not be nil")
	}
	dims := embedder.Dimensions()
	if dims <= 0 {
		return nil, fmt.Errorf("semindex: embedder reports invalid dimension %d", dims)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("semindex: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("semindex: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("semindex: ping: %w", err)
	}

	if err := Migrate(ctx, pool, dims); err != nil {
		pool.Close()
		return nil, fmt.Errorf("semindex: migrate: %w", err)
	}

	return &Index{pool: pool, embedder: embedder}, nil
}

// ddlWorldFacts returns the schema DDL with the embedding dimension substituted.
func ddlWorldFacts(dims int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS world_facts (
    id         TEXT         PRIMARY KEY,
    document   TEXT         NOT NULL,
    metadata   JSONB        NOT NULL DEFAULT '{}',
    embedding  vector(%d),
    updated_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_world_facts_embedding
    ON world_facts USING hnsw (embedding vector_cosine_ops);
`, dims)
}

// Migrate creates or ensures the world_facts table, its HNSW index, and the
// pgvector extension exist. Idempotent and safe to call on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dims int) error {
	if _, err := pool.Exec(ctx, ddlWorldFacts(dims)); err != nil {
		return fmt.Errorf("semindex migrate: %w", err)
	}
	return nil
}

// Upsert implements [semindex.Index]. Documents are embedded in one batch
// call, then written row by row; an existing document with the same ID is
// completely replaced.
func (ix *Index) Upsert(ctx context.Context, docs []semindex.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vecs, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("semindex: embed batch: %w", err)
	}

	const q = `
		INSERT INTO world_facts (id, document, metadata, embedding, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
		    document   = EXCLUDED.document,
		    metadata   = EXCLUDED.metadata,
		    embedding  = EXCLUDED.embedding,
		    updated_at = now()`

	for i, d := range docs {
		metaJSON, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("semindex: marshal metadata for %q: %w", d.ID, err)
		}
		vec := pgvector.NewVector(vecs[i])
		if _, err := ix.pool.Exec(ctx, q, d.ID, d.Text, metaJSON, vec); err != nil {
			return fmt.Errorf("semindex: upsert %q: %w", d.ID, err)
		}
	}
	return nil
}

// Query implements [semindex.Index]. Results are ordered by ascending cosine
// distance (most similar first).
func (ix *Index) Query(ctx context.Context, text string, k int) ([]semindex.Result, error) {
	if k <= 0 {
		return []semindex.Result{}, nil
	}

	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("semindex: embed query: %w", err)
	}

	const q = `
		SELECT id, document, metadata, embedding <=> $1 AS distance
		FROM   world_facts
		WHERE  embedding IS NOT NULL
		ORDER  BY distance
		LIMIT  $2`

	rows, err := ix.pool.Query(ctx, q, pgvector.NewVector(vec), k)
	if err != nil {
		return nil, fmt.Errorf("semindex: query: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (semindex.Result, error) {
		var (
			r        semindex.Result
			metaJSON []byte
		)
		if err := row.Scan(&r.ID, &r.Document, &metaJSON, &r.Distance); err != nil {
			return semindex.Result{}, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &r.Metadata); err != nil {
				return semindex.Result{}, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		if r.Metadata == nil {
			r.Metadata = map[string]string{}
		}
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("semindex: scan rows: %w", err)
	}
	if results == nil {
		results = []semindex.Result{}
	}
	return results, nil
}

// Ping verifies database connectivity. Suitable as a readiness check.
func (ix *Index) Ping(ctx context.Context) error {
	return ix.pool.Ping(ctx)
}

// Close releases all connections held by the underlying pool.
func (ix *Index) Close() {
	ix.pool.Close()
}
