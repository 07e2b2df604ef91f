package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github/itish2003/portfolio-rag/config"
	"github/itish2003/portfolio-rag/models"
	"github/itish2003/portfolio-rag/services"
)

type wordBackend struct{}

func (wordBackend) EmbedRaw(_ context.Context, text string, _ services.EmbedMode) ([]float32, error) {
	vec := make([]float32, 32)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%32]++
	}
	return vec, nil
}

type echoGenerator struct{ err error }

func (g echoGenerator) Generate(context.Context, string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "Here is what we did.", nil
}

func testApp(t *testing.T, gen services.Generator) *app {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Ingest.DataPath = t.TempDir()

	logger := zap.NewNop()
	embedder := services.NewEmbeddingClient(wordBackend{}, logger)
	index := services.NewMemoryIndex("eora_cases")
	splitter := services.NewTextSplitter("sentence", 1000, 200)
	sessions := services.NewSessionStore(10, 200)
	return &app{
		cfg:     cfg,
		logger:  logger,
		index:   index,
		indexer: services.NewIndexingService(embedder, index, splitter, 100, logger),
		rag: services.NewRAGService(services.NewRetriever(embedder, index, 5, logger), gen, sessions, index,
			services.Options{NoInfoAnswer: "nothing found", Prompt: services.PromptConfig{CompanyName: "EORA", Language: "English"}}, logger),
		close: func() {},
	}
}

func writeDocs(t *testing.T, path string, docs ...models.Document) {
	t.Helper()
	data, err := json.Marshal(docs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestRunSeed(t *testing.T) {
	a := testApp(t, echoGenerator{})
	writeDocs(t, a.cfg.Ingest.DataFilePath(),
		models.Document{URL: "u1", Title: "Retail", FullText: "Shelf analytics for retail."},
		models.Document{URL: "u2", Title: "Bank", FullText: "A chatbot for a bank."},
	)

	var out bytes.Buffer
	require.NoError(t, runSeed(context.Background(), a, &seedFlags{}, strings.NewReader(""), &out))

	n, err := a.index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, out.String(), "Indexed 2 documents into 2 chunks (0 skipped)")
	assert.Contains(t, out.String(), `Collection "eora_cases": 2 chunks`)
}

func TestRunSeed_Confirmation(t *testing.T) {
	a := testApp(t, echoGenerator{})
	writeDocs(t, a.cfg.Ingest.DataFilePath(), models.Document{URL: "u1", FullText: "One case."})
	require.NoError(t, runSeed(context.Background(), a, &seedFlags{yes: true}, nil, &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, runSeed(context.Background(), a, &seedFlags{}, strings.NewReader("n\n"), &out))
	assert.Contains(t, out.String(), "Cancelled.")
	n, _ := a.index.Count(context.Background())
	assert.Equal(t, 1, n)

	out.Reset()
	require.NoError(t, runSeed(context.Background(), a, &seedFlags{}, strings.NewReader("y\n"), &out))
	n, _ = a.index.Count(context.Background())
	assert.Equal(t, 2, n)
}

func TestRunSeed_ResetAndTestCorpus(t *testing.T) {
	a := testApp(t, echoGenerator{})
	writeDocs(t, a.cfg.Ingest.DataFilePath(), models.Document{URL: "u1", FullText: "Main."}, models.Document{URL: "u2", FullText: "Main two."})
	writeDocs(t, a.cfg.Ingest.FallbackFilePath(), models.Document{URL: "t1", FullText: "Test corpus."})
	require.NoError(t, runSeed(context.Background(), a, &seedFlags{yes: true}, nil, &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, runSeed(context.Background(), a, &seedFlags{test: true, reset: true, yes: true}, nil, &out))

	n, _ := a.index.Count(context.Background())
	assert.Equal(t, 1, n)
	assert.Contains(t, out.String(), "Collection cleared.")
}

func TestRunSeed_DataFileOverride(t *testing.T) {
	a := testApp(t, echoGenerator{})
	custom := filepath.Join(t.TempDir(), "custom.json")
	writeDocs(t, custom, models.Document{URL: "c", FullText: "Custom corpus."})

	require.NoError(t, runSeed(context.Background(), a, &seedFlags{dataFile: custom}, nil, &bytes.Buffer{}))
	n, _ := a.index.Count(context.Background())
	assert.Equal(t, 1, n)

	err := runSeed(context.Background(), a, &seedFlags{dataFile: filepath.Join(t.TempDir(), "nope.json"), yes: true}, nil, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunCheck(t *testing.T) {
	a := testApp(t, echoGenerator{})

	var out bytes.Buffer
	require.NoError(t, runCheck(context.Background(), a, &out))
	assert.Contains(t, out.String(), "Collection: eora_cases")
	assert.Contains(t, out.String(), "Total chunks: 0")
	assert.Contains(t, out.String(), "empty")
}

func TestRunAsk(t *testing.T) {
	a := testApp(t, echoGenerator{})
	_, err := a.indexer.IngestDocuments(context.Background(), []models.Document{
		{URL: "https://eora.ru/cases/retail", Title: "Retail", FullText: "Shelf analytics for retail."},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), a, []string{"retail analytics?", "anything else?"}, "", &out))
	assert.Contains(t, out.String(), "Q: retail analytics?")
	assert.Contains(t, out.String(), "A: Here is what we did.")
	assert.Contains(t, out.String(), "1. Retail (https://eora.ru/cases/retail)")
}

func TestRunAsk_GenerationError(t *testing.T) {
	a := testApp(t, echoGenerator{err: services.ErrGenerationFailed})
	_, err := a.indexer.IngestDocuments(context.Background(), []models.Document{{URL: "u", FullText: "Retail analytics."}})
	require.NoError(t, err)

	var out bytes.Buffer
	err = runAsk(context.Background(), a, []string{"retail analytics"}, "s1", &out)
	assert.True(t, errors.Is(err, services.ErrGenerationFailed))
	assert.Contains(t, out.String(), "An error occurred")
}

func TestAutoSeed(t *testing.T) {
	a := testApp(t, echoGenerator{})
	writeDocs(t, a.cfg.Ingest.FallbackFilePath(), models.Document{URL: "t", FullText: "Fallback corpus."})

	autoSeed(context.Background(), a)

	n, _ := a.index.Count(context.Background())
	assert.Equal(t, 1, n)
}

func TestLoadApp(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_store:\n  type: memory\n  collection: portfolio\n"), 0o644))

	var got *config.Config
	prev := newApp
	newApp = func(_ context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
		got = cfg
		return &app{cfg: cfg, logger: logger, close: func() {}}, nil
	}
	t.Cleanup(func() { newApp = prev })

	a, err := loadApp(context.Background(), &rootFlags{configPath: path, debug: true})
	require.NoError(t, err)
	defer a.close()
	assert.True(t, got.Debug)
	assert.Equal(t, "portfolio", got.VectorStore.Collection)
}

func TestLoadApp_InvalidConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_store:\n  type: redis\n"), 0o644))

	_, err := loadApp(context.Background(), &rootFlags{configPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "seed", "check", "ask"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))

	seed, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	for _, f := range []string{"test", "reset", "data-file", "yes", "watch"} {
		assert.NotNil(t, seed.Flags().Lookup(f), f)
	}
}
