package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github/itish2003/portfolio-rag/models"
)

// RAGService interface defines the operations exposed to the HTTP layer and CLI.
type RAGService interface {
	Ask(ctx context.Context, question, sessionID string) (*models.AskResponse, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// Options tunes the answer pipeline.
type Options struct {
	MaxSources   int
	HistoryTurns int
	NoInfoAnswer string
	Prompt       PromptConfig
}

// ragServiceImpl holds the dependencies it needs to do its job
type ragServiceImpl struct {
	retriever *Retriever
	generator Generator
	sessions  *SessionStore
	index     VectorIndex
	opts      Options
	logger    *zap.Logger
}

var _ RAGService = (*ragServiceImpl)(nil)

// NewRAGService creates a new RAG service instance
func NewRAGService(retriever *Retriever, generator Generator, sessions *SessionStore, index VectorIndex, opts Options, logger *zap.Logger) RAGService {
	if opts.MaxSources <= 0 {
		opts.MaxSources = 5
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = 4
	}
	return &ragServiceImpl{
		retriever: retriever,
		generator: generator,
		sessions:  sessions,
		index:     index,
		opts:      opts,
		logger:    logger,
	}
}

// Ask answers a question within a session. The returned response always
// carries an answer string and is recorded in the session, even when the
// error is non-nil. An empty sessionID starts a new session with a fresh id.
func (r *ragServiceImpl) Ask(ctx context.Context, question, sessionID string) (*models.AskResponse, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
		r.logger.Debug("service: no session id supplied, starting a new session", zap.String("session_id", sessionID))
	}
	log := r.logger.With(zap.String("session_id", sessionID))
	log.Info("service: answering question", zap.String("question", truncateRunes(question, 100)))

	unlock := r.sessions.Lock(sessionID)
	defer unlock()

	resp := &models.AskResponse{
		Question:  question,
		SessionID: sessionID,
		Sources:   []models.SourceCitation{},
	}

	results, err := r.retriever.Search(ctx, question, r.opts.MaxSources)
	if err != nil {
		return r.fail(resp, err, log)
	}

	if len(results) == 0 {
		log.Info("service: no relevant chunks found")
		resp.Answer = r.opts.NoInfoAnswer
		r.sessions.Append(sessionID, question, resp.Answer)
		return resp, nil
	}

	prompt := r.opts.Prompt.BuildPrompt(PromptInput{
		Question:    question,
		Results:     results,
		IsFirstTurn: r.sessions.IsFirstTurn(sessionID),
		History:     FormatHistory(r.sessions.Recent(sessionID, r.opts.HistoryTurns)),
	})

	answer, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return r.fail(resp, err, log)
	}

	resp.Answer = answer
	resp.Sources = ExtractSources(results)
	r.sessions.Append(sessionID, question, answer)
	log.Info("service: answer generated", zap.Int("sources", len(resp.Sources)))
	return resp, nil
}

// fail records the failure as the turn's answer so the conversation can go on,
// and hands the error back to the caller.
func (r *ragServiceImpl) fail(resp *models.AskResponse, err error, log *zap.Logger) (*models.AskResponse, error) {
	log.Error("service: failed to answer question", zap.Error(err))
	resp.Answer = fmt.Sprintf("An error occurred while processing your request: %v", err)
	resp.Error = err.Error()
	r.sessions.Append(resp.SessionID, resp.Question, resp.Answer)
	return resp, err
}

// Stats reports the size and name of the knowledge base.
func (r *ragServiceImpl) Stats(ctx context.Context) (*models.Stats, error) {
	count, err := r.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return &models.Stats{TotalChunks: count, CollectionName: r.index.Name()}, nil
}

// ExtractSources lists each source url once, in first-occurrence order.
func ExtractSources(results []models.SearchResult) []models.SourceCitation {
	sources := make([]models.SourceCitation, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, res := range results {
		if seen[res.Metadata.URL] {
			continue
		}
		seen[res.Metadata.URL] = true
		sources = append(sources, models.SourceCitation{
			Title:       res.Metadata.Title,
			URL:         res.Metadata.URL,
			Description: res.Metadata.Description,
		})
	}
	return sources
}
