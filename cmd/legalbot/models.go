package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ctangarife/legalbot/pkg/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the Ollama server",
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	chatEngine, err := llm.NewChatEngine(llm.ChatConfig{
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return err
	}

	names, err := chatEngine.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models from %s: %w", cfg.LLM.BaseURL, err)
	}
	if len(names) == 0 {
		color.Yellow("no models installed, run 'ollama pull %s' first", cfg.LLM.Model)
		return nil
	}

	for _, name := range names {
		fmt.Println(name)
	}

	if err := chatEngine.CheckModel(ctx); err != nil {
		color.Yellow("\nconfigured model %q is not installed", cfg.LLM.Model)
	} else {
		color.Green("\nconfigured model %q is available", cfg.LLM.Model)
	}
	return nil
}
