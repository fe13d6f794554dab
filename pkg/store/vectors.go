package store

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/ctangarife/legalbot/internal/models"
)

// UpsertChunks stores chunk embeddings with their retrieval payload in
// one transaction, so a document's vectors land atomically.
func (s *Store) UpsertChunks(ctx context.Context, points []models.ChunkPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin upsert: %v", models.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	const stmt = `
		INSERT INTO chunks (chunk_id, file_id, chunk_index, text, filename, file_type, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chunk_id) DO UPDATE SET
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding`

	for _, p := range points {
		_, err := tx.Exec(ctx, stmt,
			p.ChunkID, p.FileID, p.Index, p.Text, p.Filename, p.FileType,
			pgvector.NewVector(p.Embedding),
		)
		if err != nil {
			return fmt.Errorf("%w: insert chunk %s: %v", models.ErrStoreUnavailable, p.ChunkID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit upsert: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

// SearchChunks returns the nearest chunks by cosine similarity. A
// non-empty fileID restricts the search before the limit applies, so
// out-of-scope candidates never displace in-scope ones.
func (s *Store) SearchChunks(ctx context.Context, embedding []float32, fileID string, limit int) ([]models.RetrievedChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)
	rows, err := s.pool.Query(ctx, `
		SELECT chunk_id, file_id, chunk_index, text, filename, file_type,
		       1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE ($2 = '' OR file_id = $2)
		ORDER BY embedding <=> $1
		LIMIT $3`, vec, fileID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search chunks: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var results []models.RetrievedChunk
	for rows.Next() {
		var rc models.RetrievedChunk
		err := rows.Scan(&rc.ChunkID, &rc.FileID, &rc.Index, &rc.Text,
			&rc.Filename, &rc.FileType, &rc.Score)
		if err != nil {
			return nil, fmt.Errorf("%w: scan chunk: %v", models.ErrStoreUnavailable, err)
		}
		results = append(results, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate chunks: %v", models.ErrStoreUnavailable, err)
	}
	return results, nil
}

// DeleteChunksByFile removes all vectors belonging to one document,
// used before reprocessing and when a document is deleted.
func (s *Store) DeleteChunksByFile(ctx context.Context, fileID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chunks WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("%w: delete chunks for %s: %v", models.ErrStoreUnavailable, fileID, err)
	}
	return nil
}

// PurgeChunks deletes every stored vector. Administrative cleanup only.
func (s *Store) PurgeChunks(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chunks`)
	if err != nil {
		return 0, fmt.Errorf("%w: purge chunks: %v", models.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}
