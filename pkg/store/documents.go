package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ctangarife/legalbot/internal/models"
)

const documentColumns = `file_id, filename, file_size, file_path, file_type,
	content_hash, description, status, uploaded_at, processed_at, chunks, metadata`

// InsertDocument creates a new metadata record. Two concurrent uploads
// of identical bytes can both pass the duplicate pre-check; the unique
// index rejects the loser here, surfaced as ErrDuplicateContent.
func (s *Store) InsertDocument(ctx context.Context, doc *models.Document) error {
	if doc.Metadata == nil {
		doc.Metadata = map[string]interface{}{}
	}
	if doc.Chunks == nil {
		doc.Chunks = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		doc.FileID, doc.Filename, doc.FileSize, doc.FilePath, doc.FileType,
		doc.ContentHash, doc.Description, doc.Status, doc.UploadedAt,
		doc.ProcessedAt, doc.Chunks, doc.Metadata,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: content hash already stored", models.ErrDuplicateContent)
		}
		return fmt.Errorf("%w: insert document: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, fileID string) (*models.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE file_id = $1`, fileID)
	return scanDocument(row)
}

func (s *Store) GetDocumentByHash(ctx context.Context, contentHash string) (*models.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE content_hash = $1 AND content_hash <> ''`,
		contentHash)
	return scanDocument(row)
}

func (s *Store) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// ListDocumentsWithoutHash returns records from before content hashing
// was introduced, for the duplicate detector's fallback scan. A
// non-zero fileSize narrows the candidate set; limit bounds scan cost.
func (s *Store) ListDocumentsWithoutHash(ctx context.Context, fileSize int64, limit int) ([]*models.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE content_hash = '' AND ($1 = 0 OR file_size = $1)
		ORDER BY uploaded_at
		LIMIT $2`, fileSize, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents without hash: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (s *Store) SetContentHash(ctx context.Context, fileID, contentHash string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE documents SET content_hash = $2 WHERE file_id = $1`, fileID, contentHash)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: backfill hash: %v", models.ErrDuplicateContent, err)
		}
		return fmt.Errorf("%w: set content hash: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, fileID string, status models.DocumentStatus) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE documents SET status = $2 WHERE file_id = $1`, fileID, status)
	if err != nil {
		return fmt.Errorf("%w: set status: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

// MarkProcessed records the final chunk identifier sequence and flips
// the document to processed in a single update.
func (s *Store) MarkProcessed(ctx context.Context, fileID string, chunkIDs []string) error {
	if chunkIDs == nil {
		chunkIDs = []string{}
	}
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET status = $2, processed_at = $3, chunks = $4,
		    metadata = metadata || jsonb_build_object('chunks_count', $5::int)
		WHERE file_id = $1`,
		fileID, models.StatusProcessed, now, chunkIDs, len(chunkIDs))
	if err != nil {
		return fmt.Errorf("%w: mark processed: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

// MarkError flips the document to error and records the cause so the
// pipeline never leaves a record stuck in processing.
func (s *Store) MarkError(ctx context.Context, fileID, cause string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET status = $2, metadata = metadata || jsonb_build_object('error', $3::text)
		WHERE file_id = $1`,
		fileID, models.StatusError, cause)
	if err != nil {
		return fmt.Errorf("%w: mark error: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

// PurgeDocuments deletes every metadata record. Administrative cleanup only.
func (s *Store) PurgeDocuments(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents`)
	if err != nil {
		return 0, fmt.Errorf("%w: purge documents: %v", models.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.FileID, &doc.Filename, &doc.FileSize, &doc.FilePath, &doc.FileType,
		&doc.ContentHash, &doc.Description, &doc.Status, &doc.UploadedAt,
		&doc.ProcessedAt, &doc.Chunks, &doc.Metadata,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan document: %v", models.ErrStoreUnavailable, err)
	}
	return &doc, nil
}

func scanDocuments(rows pgx.Rows) ([]*models.Document, error) {
	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate documents: %v", models.ErrStoreUnavailable, err)
	}
	return docs, nil
}
