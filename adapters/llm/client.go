package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gocombo/internal/errors"
	"gocombo/ports"
)

// Config holds LLM client settings. The fine-tuned adapter is expected to be
// served behind an OpenAI-compatible chat-completions endpoint (a local
// inference server or the hosted API).
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

// NewClient creates an LLM client based on config.
func NewClient(cfg Config) (ports.LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.ConfigInvalid("missing API key")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIClient{
		APIKey:      cfg.APIKey,
		BaseURL:     baseURL,
		Timeout:     timeout,
		Temperature: cfg.Temperature,
	}, nil
}

// MockClient is a mock LLM client for testing
type MockClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors
	Prompts  []string
}

func (m *MockClient) ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	// Default mock response
	return "Yes, these cards create an infinite combo: tap one, untap it with the other, and repeat the loop.", nil
}

// OpenAIClient implements ports.LLMClient against a chat-completions API.
type OpenAIClient struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

func (c *OpenAIClient) ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", errors.ConfigInvalid("missing model")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	// Chat Completions API (kept minimal: one system + one user message)
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	}
	body := reqBody{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: "You are a Magic: The Gathering Pauper combo analyst. Answer directly; start with Yes or No."},
			{Role: "user", Content: prompt},
		},
		Temperature: c.Temperature,
		MaxTokens:   maxTokens,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	client := &http.Client{Timeout: c.Timeout}
	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", errors.ModelError("inference request failed", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.ModelError("read inference response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.ModelError(fmt.Sprintf("inference http %d: %s", resp.StatusCode, string(respRaw)), nil)
	}

	type choice struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	type respBody struct {
		Choices []choice `json:"choices"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", errors.ModelError("unmarshal inference response", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.ModelError("inference response missing choices", nil)
	}
	return decoded.Choices[0].Message.Content, nil
}
