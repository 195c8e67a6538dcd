package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/embedding/ollama"
	lexsqlite "github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/lexical/sqlite"
	vecsqlite "github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/vectorindex/sqlite"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
	"github.com/guidewell-labs/guidewell-cli/internal/indexer"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector and keyword indexes from the feed",
	Long: `Embeds new or changed passages from the feed into the vector index and
fills the keyword index. Builds are incremental and safe to re-run; an
unreadable vector index is rebuilt from scratch.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	embedder := ollama.NewEmbeddingService(ollama.Config{
		BaseURL: cfg.Providers.Ollama.BaseURL,
		Model:   cfg.Providers.Ollama.EmbeddingModel,
	})
	defer embedder.Close()

	lexical, err := lexsqlite.Open(store.LexicalIndexPath())
	if err != nil {
		return fmt.Errorf("open keyword index: %w", err)
	}
	defer lexical.Close()

	builder, err := indexer.New(indexer.Config{
		Store:    store,
		Embedder: embedder,
		Lexical:  lexical,
		OpenVector: func(path string) (driven.VectorIndex, error) {
			return vecsqlite.Open(path)
		},
	})
	if err != nil {
		return err
	}

	stats, err := builder.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if stats.Reset {
		cmd.Println("Vector index was unreadable and has been rebuilt.")
	}
	cmd.Printf("Passages in feed: %d\n", stats.Total)
	cmd.Printf("Embedded: %d\n", stats.Embedded)
	cmd.Printf("Added to keyword index: %d\n", stats.LexicalAdded)
	return nil
}
