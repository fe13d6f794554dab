package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
	"golang.org/x/time/rate"

	"github.com/ctangarife/legalbot/internal/models"
)

// EmbedderConfig configures the Ollama embedding client. The embedding
// model must match the one used at ingestion time; mixing models makes
// retrieval scores meaningless.
type EmbedderConfig struct {
	BaseURL           string
	Model             string
	Dimension         int
	RequestsPerSecond float64
}

type Embedder struct {
	config  EmbedderConfig
	llm     *ollama.LLM
	limiter *rate.Limiter
}

func NewEmbedder(config EmbedderConfig) (*Embedder, error) {
	if config.Model == "" {
		config.Model = "all-minilm"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Dimension == 0 {
		config.Dimension = 384
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 4
	}

	emb, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	return &Embedder{
		config:  config,
		llm:     emb,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
	}, nil
}

// EmbedTexts returns one vector per input text, in order. The whole
// batch goes to Ollama in a single call.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	embeddings, err := e.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: create embeddings: %v", models.ErrModelUnavailable, err)
	}
	return embeddings, nil
}

// Dimension returns the configured vector dimensionality.
func (e *Embedder) Dimension() int {
	return e.config.Dimension
}
