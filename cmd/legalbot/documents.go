package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ctangarife/legalbot/internal/models"
)

var documentsCmd = &cobra.Command{
	Use:   "documents [file-id]",
	Short: "List indexed documents or show one in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDocuments,
}

func runDocuments(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if len(args) == 1 {
		return showDocument(ctx, app, args[0])
	}

	docs, err := app.store.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		color.Yellow("no documents indexed yet")
		return nil
	}

	for _, doc := range docs {
		statusColor(doc.Status).Printf("%-10s", doc.Status)
		fmt.Printf(" %s  %s (%d chunks, %d bytes)\n",
			doc.FileID, doc.Filename, doc.ChunksCount(), doc.FileSize)
	}
	fmt.Printf("\n%d documents\n", len(docs))
	return nil
}

func showDocument(ctx context.Context, app *app, fileID string) error {
	doc, err := app.store.GetDocument(ctx, fileID)
	if err != nil {
		return err
	}

	fmt.Printf("File ID:      %s\n", doc.FileID)
	fmt.Printf("Filename:     %s\n", doc.Filename)
	fmt.Printf("Type:         %s\n", doc.FileType)
	fmt.Printf("Size:         %d bytes\n", doc.FileSize)
	fmt.Printf("Status:       %s\n", doc.Status)
	fmt.Printf("Uploaded:     %s\n", doc.UploadedAt.Format("2006-01-02 15:04:05"))
	if doc.ProcessedAt != nil {
		fmt.Printf("Processed:    %s\n", doc.ProcessedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Chunks:       %d\n", doc.ChunksCount())
	if doc.Description != "" {
		fmt.Printf("Description:  %s\n", doc.Description)
	}
	if cause, ok := doc.Metadata["error"]; ok {
		color.Red("Error:        %v", cause)
	}
	return nil
}

func statusColor(status models.DocumentStatus) *color.Color {
	switch status {
	case models.StatusProcessed:
		return color.New(color.FgGreen)
	case models.StatusError:
		return color.New(color.FgRed)
	case models.StatusProcessing:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}
