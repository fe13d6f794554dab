package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reprocessCmd = &cobra.Command{
	Use:   "reprocess <file-id>",
	Short: "Re-run the ingestion pipeline for a stored document",
	Long: `Reprocess re-reads the stored copy of a document and runs extraction,
chunking and embedding again, replacing its existing chunks. Useful after
changing chunking settings or recovering from a failed ingestion.`,
	Args: cobra.ExactArgs(1),
	RunE: runReprocess,
}

func runReprocess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	chunks, err := app.service.Reprocess(ctx, args[0])
	if err != nil {
		return err
	}
	color.Green("✓ reprocessed %s into %d chunks", args[0], chunks)
	return nil
}
