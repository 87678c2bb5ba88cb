// Package llm provides the OpenAI-compatible embeddings and chat completion
// client used by both deployment variants.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/abduilm/lexuz-bot/internal/httpclient"
)

// ErrQuotaExhausted marks upstream quota exhaustion so callers can degrade
// instead of failing the whole request.
var ErrQuotaExhausted = errors.New("llm: quota exhausted")

// quotaMarkers are the known substrings of quota-exhaustion errors across
// OpenAI-compatible backends.
var quotaMarkers = []string{"insufficient_quota", "quota", "429", "RESOURCE_EXHAUSTED"}

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultTimeout = 60 * time.Second
)

// Config configures the client. The API key is read from the environment
// variable named by APIKeyEnv.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	ChatModel   string
	EmbedModel  string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client talks to an OpenAI-compatible API. It implements domain.Embedder
// and domain.Completer. No retry logic: upstream failures surface
// immediately to the caller.
type Client struct {
	baseURL     string
	apiKey      string
	chatModel   string
	embedModel  string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// New creates a client, failing fast when the API key is absent.
func New(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      key,
		chatModel:   cfg.ChatModel,
		embedModel:  cfg.EmbedModel,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      httpclient.New(cfg.Timeout),
	}, nil
}

// ChatModel returns the configured primary chat model.
func (c *Client) ChatModel() string { return c.chatModel }

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code,omitempty"`
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var out embeddingResponse
	if err := c.post(ctx, "/embeddings", embeddingRequest{Model: c.embedModel, Input: text}, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, c.wrapAPIError(out.Error)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New("openai: no embedding returned")
	}
	return out.Data[0].Embedding, nil
}

// Complete runs one chat completion against the named model with the
// configured temperature and output-length cap.
func (c *Client) Complete(ctx context.Context, model, system, user string) (string, error) {
	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	var out chatResponse
	if err := c.post(ctx, "/chat/completions", req, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", c.wrapAPIError(out.Error)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: no response choices returned")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return c.statusError(resp.StatusCode, payload)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	// An error payload may arrive with a non-200 status and no decodable
	// error field; report the status in that case.
	if resp.StatusCode != http.StatusOK && !hasAPIError(out) {
		return c.statusError(resp.StatusCode, payload)
	}
	return nil
}

func (c *Client) statusError(status int, payload []byte) error {
	err := fmt.Errorf("openai error (status %d): %s", status, strings.TrimSpace(string(payload)))
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrQuotaExhausted, err)
	}
	return err
}

func (c *Client) wrapAPIError(e *apiError) error {
	err := fmt.Errorf("openai error: %s", e.Message)
	if containsQuotaMarker(e.Message) || containsQuotaMarker(e.Type) {
		return fmt.Errorf("%w: %w", ErrQuotaExhausted, err)
	}
	return err
}

func hasAPIError(out any) bool {
	switch v := out.(type) {
	case *embeddingResponse:
		return v.Error != nil
	case *chatResponse:
		return v.Error != nil
	}
	return false
}

// IsQuotaExhausted reports whether err looks like upstream quota exhaustion,
// matching both the wrapped sentinel and the known message substrings.
func IsQuotaExhausted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExhausted) {
		return true
	}
	return containsQuotaMarker(err.Error())
}

func containsQuotaMarker(s string) bool {
	for _, marker := range quotaMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
