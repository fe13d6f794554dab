package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ctangarife/legalbot/internal/models"
)

var uploadDescription string

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload and index one or more documents",
	Long: `Upload reads each file, stores a copy in the upload directory and runs
the full ingestion pipeline: text extraction, chunking, embedding and
vector storage. Files whose content already exists in the store are
skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "description stored with the document")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	var bar *progressbar.ProgressBar
	if len(args) > 1 {
		bar = getProgressBar(len(args), "Uploading documents...")
	}

	var uploaded, skipped, failed int
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			color.Red("✗ %s: %v", path, err)
			failed++
			continue
		}

		doc, err := app.service.Upload(ctx, filepath.Base(path), content, uploadDescription)
		switch {
		case errors.Is(err, models.ErrDuplicateContent):
			color.Yellow("– %s: already indexed, skipping", path)
			skipped++
		case err != nil:
			color.Red("✗ %s: %v", path, err)
			failed++
		case doc.Status == models.StatusError:
			color.Red("✗ %s: stored as %s but processing failed", path, doc.FileID)
			failed++
		default:
			color.Green("✓ %s: %s (%d chunks)", path, doc.FileID, doc.ChunksCount())
			uploaded++
		}

		if bar != nil {
			bar.Add(1)
		}
	}

	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	color.Cyan("%d uploaded, %d skipped, %d failed", uploaded, skipped, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(args))
	}
	return nil
}
