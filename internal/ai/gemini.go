package ai

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"

	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

// geminiClient is the concrete Advisor backed by the Gemini API. Typically
// wired as the fallback behind a local Ollama.
type geminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient returns an Advisor that calls the Gemini API. The API key
// is read from GEMINI_API_KEY by the genai client itself.
//   - model: e.g. "gemini-2.5-flash"
func NewGeminiClient(ctx context.Context, model string) (Advisor, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("ai: create gemini client: %w", err)
	}
	return &geminiClient{cli: cli, model: model}, nil
}

// Analyze runs the analysis prompt with JSON output requested.
func (g *geminiClient) Analyze(ctx context.Context, req Request) (scoring.Hint, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: buildPrompt(req)}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return scoring.Hint{}, fmt.Errorf("ai: gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return scoring.Hint{}, fmt.Errorf("ai: gemini returned no content")
	}
	return parseHint(resp.Candidates[0].Content.Parts[0].Text)
}
