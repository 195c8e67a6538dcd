// Package groq provides a vision service adapter using Groq's
// multimodal chat API. It turns a lesion photograph into a structured
// clinical description that the query pipeline folds into retrieval.
package groq

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
)

// Ensure VisionService implements the interface.
var _ driven.VisionService = (*VisionService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.groq.com/openai/v1"
	DefaultModel     = "meta-llama/llama-4-scout-17b-16e-instruct"
	DefaultTimeout   = 30 * time.Second
	defaultMaxTokens = 300
)

// describePrompt constrains the model to a fixed list structure so the
// downstream description cleaner can strip the labels reliably.
const describePrompt = `You are an expert Dermatological Vision Assistant.
Analyze the provided skin image and provide a clinical assessment.

OUTPUT FORMAT (Strictly maintain this list structure):
1. **Primary Lesion:** (e.g., Plaque, Patch, Papule, Vesicle, etc.)
2. **Color:** (e.g., Erythematous, Hyperpigmented, White, etc.)
3. **Texture/Surface:** (e.g., Scaly, Macerated, Fissured, Crusty, etc.)
4. **Distribution:** (e.g., Plantar, Interdigital, Localized, etc.)
5. **Likely Conditions:** (List 2-3 medical terms that visually match this image, e.g., Tinea Pedis, Psoriasis, Eczema)

Constraint: Be precise. For 'Likely Conditions', provide the medical name (e.g., 'Tinea Pedis' instead of 'Athlete's Foot').`

// Config holds configuration for the Groq vision service.
type Config struct {
	// APIKey is the Groq API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.groq.com/openai/v1).
	BaseURL string

	// Model is the vision model to use.
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// VisionService describes skin images using a Groq multimodal model.
type VisionService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// visionRequest is the multimodal chat completions request format.
// Message content is a list of typed parts rather than a plain string.
type visionRequest struct {
	Model       string          `json:"model"`
	Messages    []visionMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type visionMessage struct {
	Role    string       `json:"role"`
	Content []visionPart `json:"content"`
}

type visionPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

// visionResponse is the chat completions response format.
type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewVisionService creates a new Groq vision service.
func NewVisionService(cfg Config) (*VisionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq vision: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VisionService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Describe returns a structured clinical description of the image.
func (s *VisionService) Describe(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("groq vision: image is empty")
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	reqBody := visionRequest{
		Model: s.model,
		Messages: []visionMessage{
			{
				Role: "user",
				Content: []visionPart{
					{Type: "text", Text: describePrompt},
					{Type: "image_url", ImageURL: &visionImageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens: defaultMaxTokens,
		// Low temperature keeps the description observational.
		Temperature: 0.1,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var visResp visionResponse
	if err := json.Unmarshal(body, &visResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if visResp.Error != nil {
		return "", fmt.Errorf("groq vision error: %s", visResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq vision error (status %d): %s", resp.StatusCode, string(body))
	}

	if len(visResp.Choices) == 0 {
		return "", fmt.Errorf("groq vision: no response choices returned")
	}

	return visResp.Choices[0].Message.Content, nil
}

// Close releases resources.
func (s *VisionService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
