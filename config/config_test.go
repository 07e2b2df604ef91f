package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
vector_store:
  type: memory
  collection: cases_test
chunking:
  size: 500
  overlap: 50
rag:
  max_sources: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "cases_test", cfg.VectorStore.Collection)
	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 50, cfg.Chunking.OverlapOrDefault())
	assert.Equal(t, 3, cfg.RAG.MaxSources)
	assert.False(t, cfg.Debug)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("DATA_PATH", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Server.MaxQuestionLength)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.GenerationModel)
	assert.Equal(t, "eora_cases", cfg.VectorStore.Collection)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Nil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 200, cfg.Chunking.OverlapOrDefault())
	assert.Equal(t, 5, cfg.RAG.MaxSources)
	assert.Equal(t, 4, cfg.RAG.HistoryTurns)
	assert.Equal(t, 10, cfg.RAG.SessionMaxTurns)
	assert.Equal(t, 200, cfg.RAG.AnswerPreviewLength)
	assert.True(t, cfg.Ingest.AutoSeedOrDefault())
	assert.Equal(t, filepath.Join("data", "parsed_cases.json"), cfg.Ingest.DataFilePath())
	assert.Equal(t, filepath.Join("data", "test_cases.json"), cfg.Ingest.FallbackFilePath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("CHROMA_URL", "http://chroma:8000")
	t.Setenv("DATA_PATH", "/srv/data")
	t.Setenv("PORT", "8081")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Gemini.APIKey)
	assert.Equal(t, "http://chroma:8000", cfg.VectorStore.ChromaURL)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "/srv/data/parsed_cases.json", cfg.Ingest.DataFilePath())
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_ZeroOverlapKept(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")
	path := writeConfig(t, `
chunking:
  size: 800
  overlap: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 0, cfg.Chunking.OverlapOrDefault())
	assert.Equal(t, 800, cfg.Chunking.Size)
}

func TestAutoSeedOrDefault(t *testing.T) {
	off := false
	ic := IngestConfig{AutoSeed: &off}
	assert.False(t, ic.AutoSeedOrDefault())
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Gemini.APIKey = "key"
	assert.NoError(t, cfg.Validate())

	t.Run("missing api key", func(t *testing.T) {
		c := *cfg
		c.Gemini.APIKey = ""
		assert.ErrorContains(t, c.Validate(), "GEMINI_API_KEY")
	})

	t.Run("overlap not smaller than size", func(t *testing.T) {
		c := *cfg
		size := c.Chunking.Size
		c.Chunking.Overlap = &size
		assert.Error(t, c.Validate())
	})

	t.Run("negative overlap", func(t *testing.T) {
		c := *cfg
		neg := -1
		c.Chunking.Overlap = &neg
		assert.Error(t, c.Validate())
	})

	t.Run("zero overlap", func(t *testing.T) {
		c := *cfg
		zero := 0
		c.Chunking.Overlap = &zero
		assert.NoError(t, c.Validate())
	})

	t.Run("unknown vector store", func(t *testing.T) {
		c := *cfg
		c.VectorStore.Type = "faiss"
		assert.ErrorContains(t, c.Validate(), "faiss")
	})

	t.Run("unknown embedding provider", func(t *testing.T) {
		c := *cfg
		c.Embedding.Provider = "openai"
		assert.Error(t, c.Validate())
	})
}
