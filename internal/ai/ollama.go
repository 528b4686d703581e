package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

// ollamaClient is the concrete Advisor backed by a local Ollama server.
type ollamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient returns an Advisor that calls Ollama's generate API.
//   - baseURL: e.g. "http://localhost:11434"
//   - model:   e.g. "phi3"
func NewOllamaClient(baseURL, model string) Advisor {
	return &ollamaClient{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// ─── OLLAMA API SHAPES ───────────────────────────────────────────────────────

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// ─── IMPLEMENTATION ──────────────────────────────────────────────────────────

// Analyze probes the server's tags endpoint first so an offline Ollama fails
// fast, then runs the analysis prompt through the generate API with JSON
// output forced.
func (c *ollamaClient) Analyze(ctx context.Context, req Request) (scoring.Hint, error) {
	if err := c.probe(ctx); err != nil {
		return scoring.Hint{}, err
	}

	reqBody := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: buildPrompt(req),
		Stream: false,
		Format: "json",
	}

	raw, err := c.generate(ctx, reqBody)
	if err != nil {
		return scoring.Hint{}, err
	}
	return parseHint(raw)
}

// probe checks the tags endpoint with a short deadline regardless of the
// caller's budget.
func (c *ollamaClient) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("ai: build probe request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: tags endpoint returned %d", ErrAdvisorUnavailable, resp.StatusCode)
	}
	return nil
}

// generate sends one request to the generate API and returns the response
// text.
func (c *ollamaClient) generate(ctx context.Context, reqBody ollamaGenerateRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/generate",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB cap
	if err != nil {
		return "", fmt.Errorf("ai: read response body: %w", err)
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("ai: unmarshal response: %w", err)
	}

	if parsed.Error != "" {
		return "", fmt.Errorf("ai: ollama error: %s", parsed.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}
	if parsed.Response == "" {
		return "", fmt.Errorf("ai: empty response from model")
	}
	return parsed.Response, nil
}
