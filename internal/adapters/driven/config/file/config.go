// Package file loads and persists the guidewell configuration as a
// TOML file. Secrets never live in the file; API keys come from the
// environment so the config can be committed alongside a corpus.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file name inside the config directory.
const DefaultFileName = "config.toml"

// Config is the full guidewell configuration tree.
type Config struct {
	// IndexDir is the directory holding all index artifacts.
	IndexDir string `toml:"index_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Session   SessionConfig   `toml:"session"`
	Providers ProvidersConfig `toml:"providers"`
	Chat      ChatConfig      `toml:"chat"`

	// Synonyms maps a lay term to clinical vocabulary appended to the
	// query when the term occurs in it.
	Synonyms map[string]string `toml:"synonyms"`
}

// ChunkingConfig controls how guideline documents are split.
type ChunkingConfig struct {
	MaxWords     int      `toml:"max_words"`
	OverlapWords int      `toml:"overlap_words"`
	Headings     []string `toml:"headings,omitempty"`
}

// RetrievalConfig controls the search pipeline.
type RetrievalConfig struct {
	// TopK is the candidate pool size per retrieval path.
	TopK int `toml:"top_k"`

	// FinalN is the number of passages kept after reranking.
	FinalN int `toml:"final_n"`

	// HistoryTurns is how many conversation turns feed the prompt.
	HistoryTurns int `toml:"history_turns"`
}

// SessionConfig bounds in-memory conversation state.
type SessionConfig struct {
	MaxTurns    int `toml:"max_turns"`
	MaxSessions int `toml:"max_sessions"`
}

// ProvidersConfig holds the endpoints and models of external services.
type ProvidersConfig struct {
	Groq   GroqConfig   `toml:"groq"`
	Ollama OllamaConfig `toml:"ollama"`
	Rerank RerankConfig `toml:"rerank"`
}

// GroqConfig configures the hosted completion and vision provider.
// The API key is read from the GROQ_API_KEY environment variable.
type GroqConfig struct {
	BaseURL     string `toml:"base_url,omitempty"`
	Model       string `toml:"model,omitempty"`
	VisionModel string `toml:"vision_model,omitempty"`
}

// OllamaConfig configures the local embedding and fallback completion
// provider.
type OllamaConfig struct {
	BaseURL        string `toml:"base_url,omitempty"`
	Model          string `toml:"model,omitempty"`
	EmbeddingModel string `toml:"embedding_model,omitempty"`
}

// RerankConfig configures the cross-encoder scoring server.
type RerankConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	Enabled bool   `toml:"enabled"`
}

// ChatConfig holds the conversational surface of the assistant.
type ChatConfig struct {
	// Greetings are the short inputs answered without retrieval.
	Greetings []string `toml:"greetings,omitempty"`

	// GreetingReply is the canned response to a greeting.
	GreetingReply string `toml:"greeting_reply,omitempty"`

	// Persona is the instruction block prefixed to every prompt.
	Persona string `toml:"persona,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		IndexDir: "index",
		Chunking: ChunkingConfig{
			MaxWords:     200,
			OverlapWords: 50,
		},
		Retrieval: RetrievalConfig{
			TopK:         15,
			FinalN:       5,
			HistoryTurns: 6,
		},
		Session: SessionConfig{
			MaxTurns:    15,
			MaxSessions: 256,
		},
		Providers: ProvidersConfig{
			Rerank: RerankConfig{Enabled: true},
		},
		Chat: ChatConfig{
			Greetings:     []string{"hi", "hello", "hey", "start", "menu"},
			GreetingReply: "Hello! I can answer questions about the clinical guidelines in my corpus. Ask me about a condition, a treatment, or describe what you are seeing.",
			Persona: "You are a careful clinical assistant. Answer strictly from the " +
				"provided guideline context. If the context does not cover the " +
				"question, say so plainly instead of guessing. Keep answers " +
				"concise and cite the source documents you used.",
		},
		Synonyms: map[string]string{
			"heel":     "plantar sole foot calcaneal",
			"itchy":    "pruritus pruritic",
			"rash":     "eruption dermatitis lesion",
			"blister":  "vesicle bulla",
			"pimple":   "papule pustule acne",
			"dry skin": "xerosis",
			"mole":     "nevus melanocytic",
			"scalp":    "capitis",
			"nail":     "onycho unguium",
		},
	}
}

// Load reads the config file in dir, layering it over the defaults. A
// missing file returns the defaults unchanged.
func Load(dir string) (Config, error) {
	cfg := Default()
	if dir == "" {
		return cfg, nil
	}

	path := filepath.Join(dir, DefaultFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file into dir, creating the directory if
// needed.
func Save(dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: create %s: %w", dir, err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// GroqAPIKey returns the Groq API key from the environment, or empty if
// unset.
func GroqAPIKey() string {
	return os.Getenv("GROQ_API_KEY")
}
