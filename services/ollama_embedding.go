package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github/itish2003/portfolio-rag/models"
)

// OllamaEmbedder generates embeddings with a local Ollama server. nomic-embed-text
// expects task prefixes, which is how document and query modes are kept apart.
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

var _ EmbeddingBackend = (*OllamaEmbedder)(nil)

// NewOllamaEmbedder creates an Ollama embedding backend.
func NewOllamaEmbedder(client *http.Client, baseURL, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

func ollamaPrefix(mode EmbedMode) string {
	if mode == EmbedModeQuery {
		return "search_query: "
	}
	return "search_document: "
}

// EmbedRaw implements EmbeddingBackend.
func (o *OllamaEmbedder) EmbedRaw(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	reqBody, err := json.Marshal(models.OllamaEmbedRequest{
		Model:  o.model,
		Prompt: ollamaPrefix(mode) + text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: call ollama embedding api: %w", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp models.OllamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("%w: decode ollama response: %v", ErrEmbeddingFailed, err)
	}
	if ollamaResp.Error != "" {
		return nil, fmt.Errorf("%w: ollama: %s", ErrEmbeddingFailed, ollamaResp.Error)
	}
	return ollamaResp.Embedding, nil
}
