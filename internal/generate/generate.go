// Package generate turns prompts into candidate document rewrites. The
// model is an untrusted proposal source; everything it returns flows
// through synthesis and validation before it is trusted.
package generate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Generator produces the proposed new full text of a document from a
// prompt. Implementations own their transport concerns; the pipeline
// never retries a generation itself.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini generates through the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// maxAttempts bounds the transport retry inside one Generate call.
const maxAttempts = 3

// NewGemini builds a Gemini generator for the given model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generate: GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: create client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate calls the model, retrying transport failures with a short
// exponential backoff. An empty completion is an error; callers rely on
// getting either text or a reason.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			}
		}

		result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			lastErr = fmt.Errorf("generate: %s: %w", g.model, err)
			continue
		}
		text := strings.TrimSpace(result.Text())
		if text == "" {
			lastErr = fmt.Errorf("generate: %s returned an empty completion", g.model)
			continue
		}
		return text, nil
	}
	return "", lastErr
}

// Replay reads the canned model response from a file instead of calling
// an API. Used for offline runs and deterministic tests.
type Replay struct {
	Path string
}

func (r Replay) Generate(_ context.Context, _ string) (string, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return "", fmt.Errorf("generate: replay %s: %w", r.Path, err)
	}
	return string(data), nil
}
