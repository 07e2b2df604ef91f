package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// EmbedMode tells the backend whether text is being indexed or searched for.
type EmbedMode int

const (
	// EmbedModeDocument is used for content written to the index.
	EmbedModeDocument EmbedMode = iota
	// EmbedModeQuery is used for search queries.
	EmbedModeQuery
)

func (m EmbedMode) String() string {
	if m == EmbedModeQuery {
		return "query"
	}
	return "document"
}

// Embedder returns unit-length vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error)
}

// EmbeddingBackend is a remote embedding service returning raw, unnormalised vectors.
type EmbeddingBackend interface {
	EmbedRaw(ctx context.Context, text string, mode EmbedMode) ([]float32, error)
}

// EmbeddingClient normalises whatever the backend returns so stored and query
// vectors are always comparable.
type EmbeddingClient struct {
	backend EmbeddingBackend
	logger  *zap.Logger
}

var _ Embedder = (*EmbeddingClient)(nil)

// NewEmbeddingClient wraps backend.
func NewEmbeddingClient(backend EmbeddingBackend, logger *zap.Logger) *EmbeddingClient {
	return &EmbeddingClient{backend: backend, logger: logger}
}

// Embed calls the backend and L2-normalises the result.
func (c *EmbeddingClient) Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	raw, err := c.backend.EmbedRaw(ctx, text, mode)
	if err != nil {
		c.logger.Warn("embedding: backend call failed", zap.Stringer("mode", mode), zap.Error(err))
		if errors.Is(err, ErrEmbeddingFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	vec, err := Normalize(raw)
	if err != nil {
		c.logger.Warn("embedding: cannot normalise vector", zap.Stringer("mode", mode), zap.Int("dims", len(raw)))
		return nil, err
	}
	return vec, nil
}

// Normalize returns v divided by its L2 norm. Empty, zero and non-finite
// vectors yield ErrZeroVector instead of NaNs.
func Normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, ErrZeroVector
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

// GeminiEmbedder calls the Gemini embedding API with retrieval task types.
type GeminiEmbedder struct {
	client     *genai.Client
	model      string
	dimensions int32
}

var _ EmbeddingBackend = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates a Gemini embedding backend. dimensions <= 0 keeps the model default.
func NewGeminiEmbedder(client *genai.Client, model string, dimensions int) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model, dimensions: int32(dimensions)}
}

func geminiTaskType(mode EmbedMode) string {
	if mode == EmbedModeQuery {
		return "RETRIEVAL_QUERY"
	}
	return "RETRIEVAL_DOCUMENT"
}

// EmbedRaw implements EmbeddingBackend.
func (g *GeminiEmbedder) EmbedRaw(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	cfg := &genai.EmbedContentConfig{TaskType: geminiTaskType(mode)}
	if g.dimensions > 0 {
		dims := g.dimensions
		cfg.OutputDimensionality = &dims
	}
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embed content: %w", ErrEmbeddingFailed, err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("%w: gemini returned no embeddings", ErrEmbeddingFailed)
	}
	return resp.Embeddings[0].Values, nil
}
