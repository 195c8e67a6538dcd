package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/config/file"
	"github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/embedding/ollama"
	lexsqlite "github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/lexical/sqlite"
	groqllm "github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/llm/groq"
	ollamallm "github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/llm/ollama"
	"github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/rerank/tei"
	"github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/session/memory"
	groqvision "github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/vision/groq"
	vecsqlite "github.com/guidewell-labs/guidewell-cli/internal/adapters/driven/vectorindex/sqlite"
	"github.com/guidewell-labs/guidewell-cli/internal/artifacts"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driving"
	"github.com/guidewell-labs/guidewell-cli/internal/core/services"
	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

var (
	askSession string
	askImage   string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the indexed guidelines",
	Long: `Answers a question using hybrid retrieval over the indexed corpus and a
language model. With no question argument, starts an interactive
session. An attached image is described by a vision model and folded
into retrieval.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "session id for conversation continuity (default: random)")
	askCmd.Flags().StringVar(&askImage, "image", "", "path to an image to analyse with the question")
	rootCmd.AddCommand(askCmd)
}

// askPipeline bundles the wired query service with everything that has
// to be torn down after use.
type askPipeline struct {
	svc     driving.QueryService
	vision  driven.VisionService
	closers []func() error
}

func (p *askPipeline) close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			logger.Warn("Close failed: %v", err)
		}
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	pipeline, err := buildAskPipeline()
	if err != nil {
		return err
	}
	defer pipeline.close()

	sessionID := askSession
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	vision, err := describeImage(cmd.Context(), pipeline)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return askOnce(cmd, pipeline, sessionID, args[0], vision)
	}
	return askInteractive(cmd, pipeline, sessionID, vision)
}

func askOnce(cmd *cobra.Command, pipeline *askPipeline, sessionID, query, vision string) error {
	answer, err := pipeline.svc.Ask(cmd.Context(), driving.AskRequest{
		SessionID:         sessionID,
		Query:             query,
		VisionDescription: vision,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
	}
	return nil
}

func askInteractive(cmd *cobra.Command, pipeline *askPipeline, sessionID, vision string) error {
	cmd.Println("Interactive session. Type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		answer, err := pipeline.svc.Ask(cmd.Context(), driving.AskRequest{
			SessionID:         sessionID,
			Query:             query,
			VisionDescription: vision,
		})
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			continue
		}

		cmd.Println(answer.Text)
		if len(answer.Sources) > 0 {
			cmd.Printf("[Sources: %s]\n", strings.Join(answer.Sources, ", "))
		}
		cmd.Println()

		// The image accompanies only the first exchange.
		vision = ""
	}
	return scanner.Err()
}

// describeImage runs the vision model over --image, if given.
func describeImage(ctx context.Context, pipeline *askPipeline) (string, error) {
	if askImage == "" {
		return "", nil
	}
	if pipeline.vision == nil {
		return "", errors.New("image analysis requires GROQ_API_KEY")
	}

	data, err := os.ReadFile(askImage)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	logger.Info("Analysing image %s", askImage)
	description, err := pipeline.vision.Describe(ctx, data)
	if err != nil {
		return "", fmt.Errorf("image analysis failed: %w", err)
	}
	return description, nil
}

func buildAskPipeline() (*askPipeline, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}

	p := &askPipeline{}

	vectors, err := vecsqlite.Open(store.VectorIndexPath())
	if err != nil {
		return nil, fmt.Errorf("open vector index (run 'guidewell index' first): %w", err)
	}
	p.closers = append(p.closers, vectors.Close)

	// A missing keyword index narrows retrieval to the semantic path.
	var lexical driven.SearchEngine
	if eng, err := lexsqlite.Open(store.LexicalIndexPath()); err != nil {
		logger.Warn("Keyword index unavailable, continuing semantic-only: %v", err)
	} else {
		lexical = eng
		p.closers = append(p.closers, eng.Close)
	}

	catalog := artifacts.NewCatalog(store)
	if watcher, err := artifacts.NewWatcher(store, catalog); err != nil {
		logger.Warn("Artifact watcher unavailable: %v", err)
	} else {
		p.closers = append(p.closers, watcher.Close)
	}

	embedder := ollama.NewEmbeddingService(ollama.Config{
		BaseURL: cfg.Providers.Ollama.BaseURL,
		Model:   cfg.Providers.Ollama.EmbeddingModel,
	})
	p.closers = append(p.closers, embedder.Close)

	var providers []driven.CompletionService
	if key := file.GroqAPIKey(); key != "" {
		groq, err := groqllm.NewCompletionService(groqllm.Config{
			APIKey:  key,
			BaseURL: cfg.Providers.Groq.BaseURL,
			Model:   cfg.Providers.Groq.Model,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, groq)
		p.closers = append(p.closers, groq.Close)

		vision, err := groqvision.NewVisionService(groqvision.Config{
			APIKey:  key,
			BaseURL: cfg.Providers.Groq.BaseURL,
			Model:   cfg.Providers.Groq.VisionModel,
		})
		if err != nil {
			return nil, err
		}
		p.vision = vision
		p.closers = append(p.closers, vision.Close)
	} else {
		logger.Info("GROQ_API_KEY not set, using local model only")
	}

	local := ollamallm.NewCompletionService(ollamallm.Config{
		BaseURL: cfg.Providers.Ollama.BaseURL,
		Model:   cfg.Providers.Ollama.Model,
	})
	providers = append(providers, local)
	p.closers = append(p.closers, local.Close)

	var reranker driven.Reranker
	if cfg.Providers.Rerank.Enabled {
		rr := tei.NewReranker(tei.Config{BaseURL: cfg.Providers.Rerank.BaseURL})
		reranker = rr
		p.closers = append(p.closers, rr.Close)
	}

	sessions, err := memory.NewStore(memory.Config{
		MaxSessions: cfg.Session.MaxSessions,
		MaxTurns:    cfg.Session.MaxTurns,
	})
	if err != nil {
		return nil, err
	}

	retrieval := services.NewRetrievalService(embedder, vectors, lexical, catalog)
	p.svc = services.NewQueryService(
		retrieval,
		services.NewRerankService(reranker),
		services.NewAugmenter(cfg.Synonyms),
		sessions,
		providers,
		services.QueryConfig{
			TopK:          cfg.Retrieval.TopK,
			FinalN:        cfg.Retrieval.FinalN,
			HistoryTurns:  cfg.Retrieval.HistoryTurns,
			Greetings:     cfg.Chat.Greetings,
			GreetingReply: cfg.Chat.GreetingReply,
			Persona:       cfg.Chat.Persona,
		},
	)
	return p, nil
}
