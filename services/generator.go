package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator produces an answer for a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls a Gemini model with a single-turn prompt.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator. temperature <= 0 keeps the model default.
func NewGeminiGenerator(client *genai.Client, model string, temperature float32) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model, temperature: temperature}
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if g.temperature > 0 {
		temp := g.temperature
		cfg = &genai.GenerateContentConfig{Temperature: &temp}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: gemini api call failed: %w", ErrGenerationFailed, err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, ErrEmptyResponse)
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	answer := strings.TrimSpace(responseText.String())
	if answer == "" {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, ErrEmptyResponse)
	}
	return answer, nil
}
