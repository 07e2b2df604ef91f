package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"

	"github/itish2003/portfolio-rag/models"
)

const fakeDims = 64

// hashBackend is a deterministic bag-of-words embedding backend: every word
// bumps one dimension chosen by its hash.
type hashBackend struct {
	mu    sync.Mutex
	modes []EmbedMode
	fail  func(text string) bool
}

func (h *hashBackend) EmbedRaw(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.modes = append(h.modes, mode)
	h.mu.Unlock()
	if h.fail != nil && h.fail(text) {
		return nil, errors.New("backend unavailable")
	}
	vec := make([]float32, fakeDims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(strings.Trim(w, ".,!?")))
		vec[f.Sum32()%fakeDims]++
	}
	return vec, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	answer  string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

// failingIndex wraps a VectorIndex and fails the chosen operations.
type failingIndex struct {
	VectorIndex
	queryErr error
	addErr   error
	countErr error
}

func (f *failingIndex) Query(ctx context.Context, vector []float32, k int) ([]QueryMatch, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.VectorIndex.Query(ctx, vector, k)
}

func (f *failingIndex) Add(ctx context.Context, entries []models.IndexedEntry) error {
	if f.addErr != nil {
		return f.addErr
	}
	return f.VectorIndex.Add(ctx, entries)
}

func (f *failingIndex) Count(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.VectorIndex.Count(ctx)
}
