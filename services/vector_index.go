package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github/itish2003/portfolio-rag/models"
)

// QueryMatch is one nearest-neighbour hit as reported by the index.
type QueryMatch struct {
	ID       string
	Text     string
	Metadata models.ChunkMetadata
	Distance float64
}

// VectorIndex stores chunk embeddings and answers nearest-neighbour queries
// by cosine distance. Stored entries are never modified; Add rejects ids that
// already exist. Implementations must be safe for concurrent Query calls.
type VectorIndex interface {
	Add(ctx context.Context, entries []models.IndexedEntry) error
	Query(ctx context.Context, vector []float32, k int) ([]QueryMatch, error)
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
	Name() string
}

// MemoryIndex is an in-memory VectorIndex using brute-force cosine distance.
// Used in tests and for running without a Chroma server.
type MemoryIndex struct {
	name    string
	mu      sync.RWMutex
	ids     map[string]int
	entries []models.IndexedEntry
}

var _ VectorIndex = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex(name string) *MemoryIndex {
	return &MemoryIndex{name: name, ids: make(map[string]int)}
}

// Name returns the collection name.
func (m *MemoryIndex) Name() string { return m.name }

// Add inserts entries. The batch is rejected as a whole if any id is empty,
// already stored or repeated, or if a vector has the wrong dimension.
func (m *MemoryIndex) Add(ctx context.Context, entries []models.IndexedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dims := -1
	if len(m.entries) > 0 {
		dims = len(m.entries[0].Embedding)
	}
	batch := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: entry without id", ErrInvalidInput)
		}
		if _, ok := m.ids[e.ID]; ok || batch[e.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		batch[e.ID] = true
		if dims < 0 {
			dims = len(e.Embedding)
		}
		if len(e.Embedding) != dims {
			return fmt.Errorf("%w: vector dimension mismatch: got %d, expected %d",
				ErrInvalidInput, len(e.Embedding), dims)
		}
	}

	for _, e := range entries {
		vec := make([]float32, len(e.Embedding))
		copy(vec, e.Embedding)
		e.Embedding = vec
		m.ids[e.ID] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return nil
}

// Query returns the k entries closest to vector, nearest first.
func (m *MemoryIndex) Query(ctx context.Context, vector []float32, k int) ([]QueryMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}
	matches := make([]QueryMatch, 0, len(m.entries))
	for _, e := range m.entries {
		if len(e.Embedding) != len(vector) {
			return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(vector), len(e.Embedding))
		}
		var dot float64
		for j := range vector {
			dot += float64(vector[j]) * float64(e.Embedding[j])
		}
		matches = append(matches, QueryMatch{
			ID:       e.ID,
			Text:     e.Chunk.Text,
			Metadata: e.Chunk.ChunkMetadata,
			Distance: 1 - dot,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Count returns the number of stored entries.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Reset drops every entry.
func (m *MemoryIndex) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = make(map[string]int)
	m.entries = nil
	return nil
}
