package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guidewell-labs/guidewell-cli/internal/core/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Chunk extracted documents into the passage feed",
	Long: `Reads extracted document JSON files (an array of {page, text} pages per
file) from a directory, splits them into tagged passages, and appends
them to the consolidated passage feed. Documents already in the feed
are skipped, so re-running after adding files only picks up new ones.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	svc := services.NewIngestService(store, newChunker())
	stats, err := svc.Ingest(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Documents: %d seen, %d processed\n", stats.DocumentsSeen, stats.DocumentsProcessed)
	cmd.Printf("Passages added to feed: %d\n", stats.ChunksAdded)
	if stats.ChunksAdded > 0 {
		cmd.Println("Run 'guidewell index' to make them searchable.")
	}
	return nil
}
