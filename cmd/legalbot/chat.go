package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	chatFileID      string
	chatMaxChunks   int
	chatTemperature float64
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask questions about your documents",
	Long: `Chat answers a question from the indexed documents. With no argument it
starts an interactive loop; type 'exit' or 'quit' to leave. Use --file-id
to restrict retrieval to a single document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatFileID, "file-id", "", "restrict retrieval to one document")
	chatCmd.Flags().IntVar(&chatMaxChunks, "max-chunks", 0, "number of chunks to retrieve (default from config)")
	chatCmd.Flags().Float64VarP(&chatTemperature, "temperature", "t", -1, "sampling temperature (default from config)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.chat.CheckModel(ctx); err != nil {
		color.Yellow("warning: model %q not found on the Ollama server, answers may fail", app.chat.Model())
	}

	maxChunks := chatMaxChunks
	if maxChunks <= 0 {
		maxChunks = app.cfg.Retrieval.MaxChunks
	}
	temperature := chatTemperature
	if temperature < 0 {
		temperature = app.cfg.LLM.Temperature
	}

	if len(args) == 1 {
		return answerOnce(ctx, app, args[0], maxChunks, temperature)
	}

	color.Cyan("Chat with your documents (type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}
		if err := answerOnce(ctx, app, question, maxChunks, temperature); err != nil {
			color.Red("error: %v", err)
		}
	}
	return scanner.Err()
}

func answerOnce(ctx context.Context, app *app, question string, maxChunks int, temperature float64) error {
	spinner := getSpinner("Thinking...")
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				spinner.Add(1)
			}
		}
	}()

	answer, err := app.engine.Answer(ctx, question, chatFileID, maxChunks, temperature)
	close(done)
	spinner.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	assistantPrompt := color.New(color.FgCyan).PrintfFunc()
	assistantPrompt("Assistant: %s\n", answer.Text)

	if len(answer.Sources) > 0 {
		color.Blue("\nSources:")
		for i, src := range answer.Sources {
			fmt.Printf("  [%d] %s (chunk %d, score %.3f)\n      %s\n",
				i+1, src.Filename, src.Index, src.Score, src.Text)
		}
	}
	return nil
}
