package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctangarife/legalbot/pkg/chunker"
	"github.com/ctangarife/legalbot/pkg/config"
	"github.com/ctangarife/legalbot/pkg/extract"
	"github.com/ctangarife/legalbot/pkg/ingest"
	"github.com/ctangarife/legalbot/pkg/llm"
	"github.com/ctangarife/legalbot/pkg/rag"
	"github.com/ctangarife/legalbot/pkg/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "legalbot",
	Short: "Question answering over your legal documents",
	Long: `legalbot ingests legal documents into a local vector store and answers
questions about them using a local Ollama model. Documents are chunked,
embedded and stored in PostgreSQL with pgvector; answers cite the source
chunks they were built from.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(reprocessCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cleanupCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Println(e.Error())
		}
		return nil, fmt.Errorf("invalid configuration")
	}
	return cfg, nil
}

// app bundles the wired components behind the CLI commands. Not every
// command needs all of them, but construction is cheap: nothing dials
// out until a component is actually used.
type app struct {
	cfg     *config.Config
	store   *store.Store
	service *ingest.Service
	engine  *rag.Engine
	chat    *llm.ChatEngine
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, store.Config{
		URL:       cfg.Database.URL,
		VectorDim: cfg.Database.VectorDim,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	embedder, err := llm.NewEmbedder(llm.EmbedderConfig{
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.EmbedModel,
		Dimension: cfg.Database.VectorDim,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	chatEngine, err := llm.NewChatEngine(llm.ChatConfig{
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize chat engine: %w", err)
	}

	splitter := chunker.New(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)

	service := ingest.NewService(ingest.Config{
		UploadDir:         cfg.Uploads.Dir,
		MaxFileSize:       cfg.Uploads.MaxFileSize,
		AllowedExtensions: cfg.Uploads.AllowedExtensions,
	}, st, st, extract.New(), embedder, splitter)

	return &app{
		cfg:     cfg,
		store:   st,
		service: service,
		engine:  rag.NewEngine(embedder, st, chatEngine),
		chat:    chatEngine,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}
