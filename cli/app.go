package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github/itish2003/portfolio-rag/config"
	"github/itish2003/portfolio-rag/services"
)

// app is the set of components a command works with.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	index   services.VectorIndex
	indexer *services.IndexingService
	rag     services.RAGService
	close   func()
}

// newApp is replaced in tests.
var newApp = buildApp

func loadApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	closers := []func(){func() { _ = logger.Sync() }}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if err := services.SetPDFLicenseKey(cfg.Ingest.PDFLicenseKey); err != nil {
		logger.Warn("PDF processing will fail", zap.Error(err))
	}

	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	var backend services.EmbeddingBackend
	switch cfg.Embedding.Provider {
	case "ollama":
		httpClient := &http.Client{Timeout: time.Duration(cfg.Embedding.TimeoutSecs) * time.Second}
		backend = services.NewOllamaEmbedder(httpClient, cfg.Embedding.OllamaURL, cfg.Embedding.OllamaModel)
	default:
		backend = services.NewGeminiEmbedder(geminiClient, cfg.Gemini.EmbeddingModel, cfg.Embedding.Dimensions)
	}
	embedder := services.NewEmbeddingClient(backend, logger)

	var index services.VectorIndex
	switch cfg.VectorStore.Type {
	case "memory":
		index = services.NewMemoryIndex(cfg.VectorStore.Collection)
	default:
		chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.VectorStore.ChromaURL))
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to create chroma client: %w", err)
		}
		closers = append(closers, func() {
			if err := chromaClient.Close(); err != nil {
				logger.Warn("failed to close chroma client", zap.Error(err))
			}
		})
		chromaIndex, err := services.NewChromaIndex(ctx, chromaClient, cfg.VectorStore.Collection, logger)
		if err != nil {
			closeAll()
			return nil, err
		}
		index = chromaIndex
	}

	splitter := services.NewTextSplitter(cfg.Chunking.Strategy, cfg.Chunking.Size, cfg.Chunking.OverlapOrDefault())
	indexer := services.NewIndexingService(embedder, index, splitter, cfg.Ingest.BatchSize, logger)

	retriever := services.NewRetriever(embedder, index, cfg.RAG.MaxSources, logger)
	generator := services.NewGeminiGenerator(geminiClient, cfg.Gemini.GenerationModel, cfg.Gemini.Temperature)
	sessions := services.NewSessionStore(cfg.RAG.SessionMaxTurns, cfg.RAG.AnswerPreviewLength)
	rag := services.NewRAGService(retriever, generator, sessions, index, services.Options{
		MaxSources:   cfg.RAG.MaxSources,
		HistoryTurns: cfg.RAG.HistoryTurns,
		NoInfoAnswer: cfg.RAG.NoInfoAnswer,
		Prompt: services.PromptConfig{
			CompanyName: cfg.RAG.CompanyName,
			Language:    cfg.RAG.Language,
		},
	}, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		index:   index,
		indexer: indexer,
		rag:     rag,
		close:   closeAll,
	}, nil
}
