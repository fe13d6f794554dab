// Package rag answers questions by retrieving the most relevant stored
// chunks and conditioning the language model on them.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/ctangarife/legalbot/internal/models"
	"github.com/ctangarife/legalbot/internal/types"
)

const (
	// DefaultMaxChunks is the retrieval depth when the caller does not
	// specify one.
	DefaultMaxChunks = 5
	// contextCharLimit bounds each chunk's contribution to the prompt.
	contextCharLimit = 800
	// previewCharLimit bounds the source previews in the response.
	previewCharLimit = 200
)

// NoInformationAnswer is returned verbatim when retrieval finds
// nothing; the model is never asked to improvise an answer.
const NoInformationAnswer = "No relevant information was found in the stored documents to answer this question. " +
	"Make sure documents have been processed and that the question relates to their content."

type Engine struct {
	embedder types.Embedder
	index    types.VectorIndex
	model    types.ChatModel
}

func NewEngine(embedder types.Embedder, index types.VectorIndex, model types.ChatModel) *Engine {
	return &Engine{
		embedder: embedder,
		index:    index,
		model:    model,
	}
}

// Answer embeds the question, retrieves the top maxChunks nearest
// chunks (scoped to fileID when non-empty), and generates an answer
// from them. Retrieval and generation failures propagate; a fabricated
// answer is never returned in their place.
func (e *Engine) Answer(ctx context.Context, question, fileID string, maxChunks int, temperature float64) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}

	vectors, err := e.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: %d vectors for one question", models.ErrEmbeddingCountMismatch, len(vectors))
	}

	results, err := e.index.SearchChunks(ctx, vectors[0], fileID, maxChunks)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	if len(results) == 0 {
		return &models.Answer{
			Text:    NoInformationAnswer,
			Sources: []models.Source{},
		}, nil
	}

	contexts := make([]string, len(results))
	for i, rc := range results {
		contexts[i] = truncate(rc.Text, contextCharLimit)
	}

	text, err := e.model.Generate(ctx, question, contexts, temperature)
	if err != nil {
		return nil, err
	}

	sources := make([]models.Source, len(results))
	for i, rc := range results {
		sources[i] = models.Source{
			ChunkID:  rc.ChunkID,
			FileID:   rc.FileID,
			Filename: rc.Filename,
			Text:     truncate(rc.Text, previewCharLimit),
			Score:    rc.Score,
			Index:    rc.Index,
		}
	}

	return &models.Answer{
		Text:    text,
		Sources: sources,
	}, nil
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
