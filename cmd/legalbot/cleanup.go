package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cleanupYes bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete all documents, chunks and uploaded files",
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVarP(&cleanupYes, "yes", "y", false, "skip the confirmation prompt")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if !cleanupYes {
		fmt.Print("This deletes every indexed document and its files. Continue? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			color.Yellow("aborted")
			return nil
		}
	}

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.service.Cleanup(ctx)
	if err != nil {
		return err
	}
	color.Green("✓ removed %d documents, %d chunks, %d files",
		stats.Documents, stats.Chunks, stats.Files)
	return nil
}
