package models

import "errors"

// Sentinel errors for the ingestion and retrieval pipelines. Callers
// classify failures with errors.Is; wrapped messages carry the detail.
var (
	ErrNotFound               = errors.New("document not found")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrFileTooLarge           = errors.New("file too large")
	ErrExtractionFailed       = errors.New("text extraction failed")
	ErrEmptyDocument          = errors.New("document has no extractable text")
	ErrNoChunksProduced       = errors.New("no chunks produced")
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match chunk count")
	ErrDuplicateContent       = errors.New("duplicate content")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrModelUnavailable       = errors.New("model unavailable")
	ErrGenerationTimeout      = errors.New("generation timed out")
	ErrGenerationFailed       = errors.New("generation failed")
)
