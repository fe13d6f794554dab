// Package ingest orchestrates document intake: extract, chunk, embed,
// store vectors, and track status on the metadata record.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ctangarife/legalbot/internal/models"
	"github.com/ctangarife/legalbot/internal/types"
	"github.com/ctangarife/legalbot/pkg/chunker"
	"github.com/ctangarife/legalbot/pkg/dedup"
)

const DefaultMaxFileSize = 50 << 20 // 50MB

var defaultAllowedExtensions = []string{".pdf", ".docx", ".doc", ".txt", ".md", ".html", ".htm"}

type Config struct {
	UploadDir         string
	MaxFileSize       int64
	AllowedExtensions []string
}

// Service runs the ingestion pipeline. Each upload or reprocess runs as
// one sequential pipeline; concurrency across requests is left to the
// store's atomic updates and the content-hash unique constraint.
type Service struct {
	config    Config
	store     types.DocumentStore
	index     types.VectorIndex
	extractor types.Extractor
	embedder  types.Embedder
	splitter  *chunker.Splitter
	detector  *dedup.Detector
}

func NewService(config Config, store types.DocumentStore, index types.VectorIndex,
	extractor types.Extractor, embedder types.Embedder, splitter *chunker.Splitter) *Service {
	if config.UploadDir == "" {
		config.UploadDir = "uploads"
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = defaultAllowedExtensions
	}

	return &Service{
		config:    config,
		store:     store,
		index:     index,
		extractor: extractor,
		embedder:  embedder,
		splitter:  splitter,
		detector:  dedup.NewDetector(store),
	}
}

func (s *Service) extensionAllowed(ext string) bool {
	for _, allowed := range s.config.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// Upload validates and persists a new file, creates its metadata
// record, and runs the processing pipeline. Duplicate content is
// rejected before anything is written.
func (s *Service) Upload(ctx context.Context, filename string, content []byte, description string) (*models.Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !s.extensionAllowed(ext) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, ext)
	}
	if int64(len(content)) > s.config.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", models.ErrFileTooLarge, len(content), s.config.MaxFileSize)
	}

	contentHash := dedup.HashBytes(content)
	duplicate, err := s.detector.FindDuplicate(ctx, contentHash, int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if duplicate != nil {
		return nil, fmt.Errorf("%w: already uploaded as %q (file_id %s)",
			models.ErrDuplicateContent, duplicate.Filename, duplicate.FileID)
	}

	fileID := uuid.NewString()
	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	filePath := filepath.Join(s.config.UploadDir, fileID+ext)
	if err := os.WriteFile(filePath, content, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	doc := &models.Document{
		FileID:      fileID,
		Filename:    filename,
		FileSize:    int64(len(content)),
		FilePath:    filePath,
		FileType:    ext,
		ContentHash: contentHash,
		Description: description,
		Status:      models.StatusUploaded,
		UploadedAt:  time.Now().UTC(),
		Metadata:    map[string]interface{}{},
	}

	if err := s.store.InsertDocument(ctx, doc); err != nil {
		// The unique index is the serialization point for concurrent
		// uploads of identical bytes; the loser surfaces as a
		// duplicate conflict here.
		_ = os.Remove(filePath)
		return nil, err
	}

	if _, err := s.Process(ctx, doc); err != nil {
		log.Printf("ingest: processing %s (%s): %v", doc.Filename, doc.FileID, err)
	}
	return doc, nil
}

// Process runs extract → chunk → embed → store vectors for one
// document. Every failure path moves the record to error with a
// recorded cause; a document is never left in processing.
func (s *Service) Process(ctx context.Context, doc *models.Document) (int, error) {
	if err := s.store.SetStatus(ctx, doc.FileID, models.StatusProcessing); err != nil {
		return 0, err
	}
	doc.Status = models.StatusProcessing

	count, err := s.process(ctx, doc)
	if err != nil {
		doc.Status = models.StatusError
		if markErr := s.store.MarkError(ctx, doc.FileID, err.Error()); markErr != nil {
			log.Printf("ingest: marking %s as error: %v", doc.FileID, markErr)
		}
		return 0, err
	}

	doc.Status = models.StatusProcessed
	return count, nil
}

func (s *Service) process(ctx context.Context, doc *models.Document) (int, error) {
	content, err := os.ReadFile(doc.FilePath)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %v", models.ErrExtractionFailed, doc.FilePath, err)
	}

	text, err := s.extractor.Extract(content, doc.FileType)
	if err != nil {
		if errors.Is(err, models.ErrUnsupportedFileType) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: %s", models.ErrEmptyDocument, doc.Filename)
	}

	chunks := s.splitter.Split(text, doc.Filename, doc.FileType)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: %s", models.ErrNoChunksProduced, doc.Filename)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	// One batched call per document.
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: %d vectors for %d chunks",
			models.ErrEmbeddingCountMismatch, len(vectors), len(chunks))
	}

	points := make([]models.ChunkPoint, len(chunks))
	chunkIDs := make([]string, len(chunks))
	for i, c := range chunks {
		chunkID := uuid.NewString()
		chunkIDs[i] = chunkID
		points[i] = models.ChunkPoint{
			ChunkID:   chunkID,
			FileID:    doc.FileID,
			Index:     c.Index,
			Text:      c.Text,
			Filename:  c.Filename,
			FileType:  c.FileType,
			Embedding: vectors[i],
		}
	}

	if err := s.index.UpsertChunks(ctx, points); err != nil {
		return 0, fmt.Errorf("store vectors: %w", err)
	}

	if err := s.store.MarkProcessed(ctx, doc.FileID, chunkIDs); err != nil {
		return 0, err
	}
	doc.Chunks = chunkIDs
	return len(chunks), nil
}

// Reprocess reruns the pipeline for an existing document, deleting its
// previous vectors first. The delete is best-effort: stale vectors get
// overwritten relevance-wise, while a failed reprocess would otherwise
// be unrecoverable.
func (s *Service) Reprocess(ctx context.Context, fileID string) (int, error) {
	doc, err := s.store.GetDocument(ctx, fileID)
	if err != nil {
		return 0, err
	}
	if doc.FilePath == "" {
		return 0, fmt.Errorf("document %s has no backing file", fileID)
	}
	if _, err := os.Stat(doc.FilePath); err != nil {
		return 0, fmt.Errorf("backing file missing for %s: %w", fileID, err)
	}

	if err := s.index.DeleteChunksByFile(ctx, fileID); err != nil {
		log.Printf("ingest: could not delete old vectors for %s: %v", fileID, err)
	}

	return s.Process(ctx, doc)
}

// CleanupStats reports what an administrative purge removed.
type CleanupStats struct {
	Documents int64
	Chunks    int64
	Files     int
}

// Cleanup wipes all chunks, all document records, and the stored
// upload files.
func (s *Service) Cleanup(ctx context.Context) (CleanupStats, error) {
	var stats CleanupStats

	chunks, err := s.index.PurgeChunks(ctx)
	if err != nil {
		return stats, err
	}
	stats.Chunks = chunks

	docs, err := s.store.PurgeDocuments(ctx)
	if err != nil {
		return stats, err
	}
	stats.Documents = docs

	entries, err := os.ReadDir(s.config.UploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("read upload dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.UploadDir, entry.Name())); err != nil {
			log.Printf("ingest: cleanup could not remove %s: %v", entry.Name(), err)
			continue
		}
		stats.Files++
	}
	return stats, nil
}
