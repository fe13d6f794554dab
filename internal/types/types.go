package types

import (
	"context"

	"github.com/ctangarife/legalbot/internal/models"
)

// Extractor converts raw file bytes into plain text.
type Extractor interface {
	Extract(content []byte, fileType string) (string, error)
}

// Embedder turns texts into fixed-dimension vectors. It must be
// length-preserving; the pipeline verifies the count explicitly.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// ChatModel generates an answer from a question and retrieved context.
type ChatModel interface {
	Generate(ctx context.Context, question string, contexts []string, temperature float64) (string, error)
	CheckModel(ctx context.Context) error
}

// DocumentStore persists document metadata records keyed by file ID.
type DocumentStore interface {
	InsertDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, fileID string) (*models.Document, error)
	GetDocumentByHash(ctx context.Context, contentHash string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	ListDocumentsWithoutHash(ctx context.Context, fileSize int64, limit int) ([]*models.Document, error)
	SetContentHash(ctx context.Context, fileID, contentHash string) error
	SetStatus(ctx context.Context, fileID string, status models.DocumentStatus) error
	MarkProcessed(ctx context.Context, fileID string, chunkIDs []string) error
	MarkError(ctx context.Context, fileID, cause string) error
	PurgeDocuments(ctx context.Context) (int64, error)
}

// VectorIndex stores chunk embeddings and serves similarity search.
type VectorIndex interface {
	UpsertChunks(ctx context.Context, points []models.ChunkPoint) error
	SearchChunks(ctx context.Context, embedding []float32, fileID string, limit int) ([]models.RetrievedChunk, error)
	DeleteChunksByFile(ctx context.Context, fileID string) error
	PurgeChunks(ctx context.Context) (int64, error)
}
