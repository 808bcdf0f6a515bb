package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider defines a generic LLM interface
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultOllamaEndpoint is the generate endpoint of a local Ollama daemon
const DefaultOllamaEndpoint = "http://localhost:11434/api/generate"

// OllamaClient represents an Ollama client for local LLM interactions
type OllamaClient struct {
	Endpoint string
	Model    string
	Timeout  time.Duration

	httpClient *http.Client
}

// NewOllama creates a new Ollama client
func NewOllama(endpoint, model string, timeout time.Duration) *OllamaClient {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultOllamaEndpoint
	}
	return &OllamaClient{
		Endpoint:   endpoint,
		Model:      model,
		Timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Request represents the JSON structure expected by Ollama
type Request struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// Response represents the response from Ollama
type Response struct {
	Response string `json:"response"`
}

// Generate sends a prompt to Ollama and returns the generated text
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	data, err := json.Marshal(Request{
		Model:  c.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %s", resp.Status)
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	out := strings.TrimSpace(response.Response)
	if out == "" {
		return "", fmt.Errorf("empty response from ollama")
	}
	return out, nil
}

// Name returns provider name
func (c *OllamaClient) Name() string { return "ollama" }

// IsAvailable checks if the Ollama service is available
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.Replace(c.Endpoint, "/api/generate", "/api/tags", 1), nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
