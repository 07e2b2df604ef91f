// Package config loads settings for the portfolio RAG server from an optional
// YAML file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	RAG         RAGConfig         `yaml:"rag"`
	Ingest      IngestConfig      `yaml:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	MaxQuestionLength int    `yaml:"max_question_length"`
	TimeoutSecs       int    `yaml:"timeout_secs"`
}

// GeminiConfig configures the Google Gemini client used for generation and,
// by default, for embeddings.
type GeminiConfig struct {
	APIKey          string  `yaml:"api_key"`
	GenerationModel string  `yaml:"generation_model"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	Temperature     float32 `yaml:"temperature"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "gemini" or "ollama"
	Dimensions  int    `yaml:"dimensions"`
	OllamaURL   string `yaml:"ollama_url"`
	OllamaModel string `yaml:"ollama_model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector index.
type VectorStoreConfig struct {
	Type       string `yaml:"type"` // "chroma" or "memory"
	ChromaURL  string `yaml:"chroma_url"`
	Collection string `yaml:"collection"`
}

// ChunkingConfig controls how documents are split before embedding.
type ChunkingConfig struct {
	Strategy string `yaml:"strategy"` // "sentence" or "recursive"
	Size     int    `yaml:"size"`
	Overlap  *int   `yaml:"overlap"`
}

// DefaultChunkOverlap applies when overlap is not set; an explicit 0 is kept.
const DefaultChunkOverlap = 200

// OverlapOrDefault returns the configured overlap or DefaultChunkOverlap when unset.
func (c *ChunkingConfig) OverlapOrDefault() int {
	if c.Overlap != nil {
		return *c.Overlap
	}
	return DefaultChunkOverlap
}

// RAGConfig holds the retrieval and prompt settings of the answer pipeline.
type RAGConfig struct {
	MaxSources          int    `yaml:"max_sources"`
	HistoryTurns        int    `yaml:"history_turns"`
	SessionMaxTurns     int    `yaml:"session_max_turns"`
	AnswerPreviewLength int    `yaml:"answer_preview_length"`
	CompanyName         string `yaml:"company_name"`
	Language            string `yaml:"language"`
	NoInfoAnswer        string `yaml:"no_info_answer"`
}

// IngestConfig points at the corpus files used by seeding.
type IngestConfig struct {
	DataPath      string `yaml:"data_path"`
	DataFile      string `yaml:"data_file"`
	FallbackFile  string `yaml:"fallback_file"`
	BatchSize     int    `yaml:"batch_size"`
	AutoSeed      *bool  `yaml:"auto_seed"`
	PDFLicenseKey string `yaml:"pdf_license_key"`
}

// AutoSeedOrDefault reports whether an empty collection is seeded on startup; defaults to true.
func (i *IngestConfig) AutoSeedOrDefault() bool {
	if i.AutoSeed != nil {
		return *i.AutoSeed
	}
	return true
}

// DataFilePath resolves the primary corpus file against DataPath.
func (i *IngestConfig) DataFilePath() string {
	return resolve(i.DataPath, i.DataFile)
}

// FallbackFilePath resolves the fallback corpus file against DataPath.
func (i *IngestConfig) FallbackFilePath() string {
	return resolve(i.DataPath, i.FallbackFile)
}

func resolve(dir, file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// Load reads .env (if present), then the YAML file at path (if path is
// non-empty), applies defaults and finally environment overrides.
func Load(path string) (*Config, error) {
	// A missing .env is normal in containers; variables come from the environment then.
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	ApplyDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("CHROMA_URL"); v != "" {
		cfg.VectorStore.ChromaURL = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.Embedding.OllamaURL = v
	}
	if v := os.Getenv("DATA_PATH"); v != "" {
		cfg.Ingest.DataPath = v
	}
	if v := os.Getenv("UNIDOC_LICENSE_KEY"); v != "" {
		cfg.Ingest.PDFLicenseKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// Validate checks the settings needed to build the service.
func (c *Config) Validate() error {
	var errs []error
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is not set"))
	}
	switch c.Embedding.Provider {
	case "gemini", "ollama":
	default:
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider))
	}
	switch c.VectorStore.Type {
	case "chroma", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown vector store %q", c.VectorStore.Type))
	}
	switch c.Chunking.Strategy {
	case "sentence", "recursive":
	default:
		errs = append(errs, fmt.Errorf("unknown chunking strategy %q", c.Chunking.Strategy))
	}
	if overlap := c.Chunking.OverlapOrDefault(); overlap < 0 || overlap >= c.Chunking.Size {
		errs = append(errs, fmt.Errorf("chunk overlap %d must be in [0, %d)", overlap, c.Chunking.Size))
	}
	return errors.Join(errs...)
}
