package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github/itish2003/portfolio-rag/models"
)

// Retriever embeds a query and fetches its nearest chunks from the index.
type Retriever struct {
	embedder    Embedder
	index       VectorIndex
	defaultTopK int
	logger      *zap.Logger
}

// NewRetriever creates a retriever. defaultTopK is used when Search gets topK <= 0.
func NewRetriever(embedder Embedder, index VectorIndex, defaultTopK int, logger *zap.Logger) *Retriever {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Retriever{embedder: embedder, index: index, defaultTopK: defaultTopK, logger: logger}
}

// Search returns up to topK results in the index's ranking, best match first.
// A failed query embedding yields no results rather than an error. Index
// failures and context cancellation are returned as errors.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}
	r.logger.Debug("retriever: searching", zap.String("query", query), zap.Int("top_k", topK))

	vector, err := r.embedder.Embed(ctx, query, EmbedModeQuery)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("retriever: %w", ctxErr)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("retriever: %w", err)
		}
		r.logger.Warn("retriever: query embedding failed, returning no results", zap.Error(err))
		return nil, nil
	}

	matches, err := r.index.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("retriever: %w", err)
	}

	results := make([]models.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, models.SearchResult{
			Content:    m.Text,
			Metadata:   m.Metadata,
			Similarity: 1 - m.Distance,
		})
	}
	r.logger.Debug("retriever: found chunks", zap.Int("count", len(results)))
	return results, nil
}
