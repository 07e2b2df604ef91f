package models

// AskResponse is returned by the RAG service and serialised as-is by the controller.
type AskResponse struct {
	Question  string           `json:"question"`
	Answer    string           `json:"answer"`
	Sources   []SourceCitation `json:"sources"`
	SessionID string           `json:"session_id"`
	Error     string           `json:"error,omitempty"`
}

// Stats describes the knowledge base.
type Stats struct {
	TotalChunks    int    `json:"total_chunks"`
	CollectionName string `json:"collection_name"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Stats  *Stats `json:"stats,omitempty"`
	Error  string `json:"error,omitempty"`
}
