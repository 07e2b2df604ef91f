package models

import "time"

// Document is one case study as produced by the upstream scraper.
type Document struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FullText    string `json:"full_text"`
}

// ChunkMetadata is stored next to every chunk in the vector index.
type ChunkMetadata struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// Chunk is a contiguous slice of a Document's full text.
type Chunk struct {
	Text string `json:"text"`
	ChunkMetadata
}

// IndexedEntry is what gets written to the vector index.
type IndexedEntry struct {
	ID        string
	Embedding []float32
	Chunk     Chunk
}

// SearchResult is a chunk returned for a query, best match first.
type SearchResult struct {
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float64       `json:"similarity"`
}

// Turn is one answered question inside a session.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// SourceCitation is shown to the user next to an answer.
type SourceCitation struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
