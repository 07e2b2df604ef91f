package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.MaxQuestionLength == 0 {
		cfg.Server.MaxQuestionLength = 1000
	}
	if cfg.Server.TimeoutSecs == 0 {
		cfg.Server.TimeoutSecs = 60
	}
	if cfg.Gemini.GenerationModel == "" {
		cfg.Gemini.GenerationModel = "gemini-2.5-flash"
	}
	if cfg.Gemini.EmbeddingModel == "" {
		cfg.Gemini.EmbeddingModel = "text-embedding-004"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "gemini"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.OllamaURL == "" {
		cfg.Embedding.OllamaURL = "http://localhost:11434"
	}
	if cfg.Embedding.OllamaModel == "" {
		cfg.Embedding.OllamaModel = "nomic-embed-text:v1.5"
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "chroma"
	}
	if cfg.VectorStore.ChromaURL == "" {
		cfg.VectorStore.ChromaURL = "http://localhost:8000"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "eora_cases"
	}
	if cfg.Chunking.Strategy == "" {
		cfg.Chunking.Strategy = "sentence"
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = 1000
	}
	if cfg.RAG.MaxSources == 0 {
		cfg.RAG.MaxSources = 5
	}
	if cfg.RAG.HistoryTurns == 0 {
		cfg.RAG.HistoryTurns = 4
	}
	if cfg.RAG.SessionMaxTurns == 0 {
		cfg.RAG.SessionMaxTurns = 10
	}
	if cfg.RAG.AnswerPreviewLength == 0 {
		cfg.RAG.AnswerPreviewLength = 200
	}
	if cfg.RAG.CompanyName == "" {
		cfg.RAG.CompanyName = "EORA"
	}
	if cfg.RAG.Language == "" {
		cfg.RAG.Language = "Russian"
	}
	if cfg.RAG.NoInfoAnswer == "" {
		cfg.RAG.NoInfoAnswer = "Sorry, I could not find relevant information to answer your question."
	}
	if cfg.Ingest.DataPath == "" {
		cfg.Ingest.DataPath = "data"
	}
	if cfg.Ingest.DataFile == "" {
		cfg.Ingest.DataFile = "parsed_cases.json"
	}
	if cfg.Ingest.FallbackFile == "" {
		cfg.Ingest.FallbackFile = "test_cases.json"
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 100
	}
}
