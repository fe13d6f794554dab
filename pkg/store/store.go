// Package store persists document metadata and chunk embeddings in
// PostgreSQL with the pgvector extension. The documents table serves as
// the metadata store; the chunks table is the vector index.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ctangarife/legalbot/internal/models"
)

const DefaultVectorDim = 384

type Config struct {
	URL       string
	VectorDim int
}

type Store struct {
	config Config
	pool   *pgxpool.Pool
}

// Open connects to PostgreSQL and ensures the schema exists. An
// unreachable database fails with ErrStoreUnavailable; ingestion must
// not start without a working store.
func Open(ctx context.Context, config Config) (*Store, error) {
	if config.VectorDim == 0 {
		config.VectorDim = DefaultVectorDim
	}

	pool, err := pgxpool.New(ctx, config.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	s := &Store{config: config, pool: pool}
	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		`CREATE TABLE IF NOT EXISTS documents (
			file_id      TEXT PRIMARY KEY,
			filename     TEXT NOT NULL,
			file_size    BIGINT NOT NULL,
			file_path    TEXT NOT NULL,
			file_type    TEXT NOT NULL,
			content_hash TEXT NOT NULL DEFAULT '',
			description  TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL DEFAULT 'uploaded',
			uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			processed_at TIMESTAMPTZ,
			chunks       TEXT[] NOT NULL DEFAULT '{}',
			metadata     JSONB NOT NULL DEFAULT '{}'
		)`,

		// Partial index: legacy records without a hash must not collide.
		`CREATE UNIQUE INDEX IF NOT EXISTS documents_content_hash_idx
			ON documents (content_hash) WHERE content_hash <> ''`,

		`CREATE INDEX IF NOT EXISTS documents_uploaded_at_idx
			ON documents (uploaded_at)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			chunk_id    TEXT PRIMARY KEY,
			file_id     TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			text        TEXT NOT NULL,
			filename    TEXT NOT NULL DEFAULT '',
			file_type   TEXT NOT NULL DEFAULT '',
			embedding   vector(%d)
		)`, s.config.VectorDim),

		`CREATE INDEX IF NOT EXISTS chunks_file_id_idx ON chunks (file_id)`,

		`CREATE INDEX IF NOT EXISTS chunks_embedding_idx
			ON chunks USING ivfflat (embedding vector_cosine_ops)
			WITH (lists = 100)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: initialize schema: %v", models.ErrStoreUnavailable, err)
		}
	}
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation. The content_hash index is the real
// serialization point for concurrent duplicate uploads.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
