package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/ctangarife/legalbot/internal/models"
)

// DefaultSystemPrompt constrains the model to the supplied context: no
// outside knowledge, an explicit refusal when the context is silent,
// and a bounded answer length.
const DefaultSystemPrompt = `You are a legal assistant that explains legal documents in clear, everyday language.
You may ONLY use information that appears explicitly in the provided context.
Never invent, assume, or add information that is not in the context.
If the answer is not in the context, say clearly that the documents do not contain that information.
Keep your answer under 300 words and avoid unnecessary legal jargon.`

// ChatConfig configures the Ollama chat client.
type ChatConfig struct {
	BaseURL      string
	Model        string
	MaxTokens    int
	Timeout      time.Duration
	SystemPrompt string
}

// ChatEngine generates answers from retrieved context via Ollama.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
	client *http.Client
}

func NewChatEngine(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "mistral:7b-instruct"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 400
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}

	model, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize chat model: %w", err)
	}

	return &ChatEngine{
		config: config,
		llm:    model,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Generate answers the question from the numbered context block. The
// call runs under the configured timeout; a deadline expiry maps to
// ErrGenerationTimeout so callers can report it distinctly instead of
// hanging on the model.
func (ce *ChatEngine) Generate(ctx context.Context, question string, contexts []string, temperature float64) (string, error) {
	if temperature < 0 || temperature > 1 {
		return "", fmt.Errorf("temperature must be between 0 and 1, got %v", temperature)
	}

	ctx, cancel := context.WithTimeout(ctx, ce.config.Timeout)
	defer cancel()

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, ce.config.SystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, RenderPrompt(question, contexts)),
	}

	resp, err := ce.llm.GenerateContent(ctx, content,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(ce.config.MaxTokens),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: after %s", models.ErrGenerationTimeout, ce.config.Timeout)
		}
		return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("%w: model returned an empty response", models.ErrGenerationFailed)
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// RenderPrompt builds the user turn: a numbered context block followed
// by the question. The numbering lets the model cite entries.
func RenderPrompt(question string, contexts []string) string {
	var b strings.Builder

	if len(contexts) > 0 {
		b.WriteString("Document context:\n")
		for i, chunk := range contexts {
			fmt.Fprintf(&b, "\n[%d] %s", i+1, chunk)
		}
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", question)
	b.WriteString("\nAnswer using only the context above.")
	return b.String()
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the model names the Ollama server has pulled.
func (ce *ChatEngine) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ce.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}
	resp, err := ce.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ollama returned %s", models.ErrModelUnavailable, resp.Status)
	}

	var tags ollamaTags
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decode tags: %v", models.ErrModelUnavailable, err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// CheckModel verifies the configured model is available on the server.
// A bare model name matches any tag of the same base model.
func (ce *ChatEngine) CheckModel(ctx context.Context) error {
	available, err := ce.ListModels(ctx)
	if err != nil {
		return err
	}

	base := strings.SplitN(ce.config.Model, ":", 2)[0]
	for _, name := range available {
		if name == ce.config.Model || strings.HasPrefix(name, base+":") {
			return nil
		}
	}
	return fmt.Errorf("%w: model %q not found on %s", models.ErrModelUnavailable, ce.config.Model, ce.config.BaseURL)
}

// Model returns the configured model name.
func (ce *ChatEngine) Model() string {
	return ce.config.Model
}
