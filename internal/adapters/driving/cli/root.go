// Package cli wires the guidewell commands. Commands construct only
// the services they need: ingest runs without any provider, index
// needs the embedder, ask needs the full pipeline.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/config/file"
	"github.com/guidewell-labs/guidewell-cli/internal/artifacts"
	"github.com/guidewell-labs/guidewell-cli/internal/logger"
	"github.com/guidewell-labs/guidewell-cli/internal/postprocessors/chunker"
)

var (
	configDir string
	indexDir  string
	verbose   bool

	cfg file.Config
)

var rootCmd = &cobra.Command{
	Use:   "guidewell",
	Short: "Question answering over clinical guideline documents",
	Long: `guidewell indexes a corpus of extracted clinical guideline documents
and answers questions over it with hybrid retrieval and a language model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)

		var err error
		cfg, err = file.Load(configDir)
		if err != nil {
			return err
		}
		if indexDir != "" {
			cfg.IndexDir = indexDir
		}
		return nil
	},
}

func init() {
	defaultConfigDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		defaultConfigDir = filepath.Join(home, ".guidewell")
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config", defaultConfigDir, "config directory")
	rootCmd.PersistentFlags().StringVar(&indexDir, "index", "", "index directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openStore() (*artifacts.Store, error) {
	return artifacts.NewStore(cfg.IndexDir)
}

func newChunker() *chunker.Processor {
	opts := []chunker.Option{
		chunker.WithMaxWords(cfg.Chunking.MaxWords),
		chunker.WithOverlapWords(cfg.Chunking.OverlapWords),
	}
	if len(cfg.Chunking.Headings) > 0 {
		opts = append(opts, chunker.WithHeadings(cfg.Chunking.Headings))
	}
	return chunker.New(opts...)
}
