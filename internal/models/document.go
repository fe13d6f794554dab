package models

import "time"

// DocumentStatus tracks a document through the ingestion pipeline.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusError      DocumentStatus = "error"
)

// Document is the metadata record for an uploaded file.
type Document struct {
	FileID      string
	Filename    string
	FileSize    int64
	FilePath    string
	FileType    string
	ContentHash string
	Description string
	Status      DocumentStatus
	UploadedAt  time.Time
	ProcessedAt *time.Time
	Chunks      []string
	Metadata    map[string]interface{}
}

// ChunksCount returns the number of stored chunk identifiers.
func (d *Document) ChunksCount() int {
	return len(d.Chunks)
}

// Chunk is a bounded slice of document text produced by the chunker.
// It exists transiently between segmentation and vector storage.
type Chunk struct {
	Text     string
	Filename string
	FileType string
	Index    int
}

// ChunkPoint is a chunk paired with its embedding, ready for the vector
// index. ChunkID is freshly generated at storage time and is unrelated
// to Index.
type ChunkPoint struct {
	ChunkID   string
	FileID    string
	Index     int
	Text      string
	Filename  string
	FileType  string
	Embedding []float32
}

// RetrievedChunk is a search hit from the vector index.
type RetrievedChunk struct {
	ChunkID  string
	FileID   string
	Filename string
	FileType string
	Text     string
	Index    int
	Score    float64
}

// Source is an abbreviated reference to a chunk used to answer a question.
type Source struct {
	ChunkID  string
	FileID   string
	Filename string
	Text     string
	Score    float64
	Index    int
}

// Answer is the result of a retrieval-augmented question.
type Answer struct {
	Text    string
	Sources []Source
	Model   string
}
