package agent

import (
	"github.com/GasparGW/chinfield-rag-demo/internal/middleware"
	"github.com/GasparGW/chinfield-rag-demo/internal/retrieval"
)

// QueryResult is the full outcome of one pipeline run. It is always
// fully formed and serializable, failures included; Model and
// Timestamp are empty when Success is false.
type QueryResult struct {
	Query         string                     `json:"query"`
	Answer        string                     `json:"answer"`
	Model         string                     `json:"model,omitempty"`
	Success       bool                       `json:"success"`
	Timestamp     string                     `json:"timestamp,omitempty" description:"ISO-8601 generation time"`
	NumDocsUsed   int                        `json:"num_docs_used"`
	RetrievedDocs []retrieval.ScoredDocument `json:"retrieved_docs"`
}

type ChatRequest struct {
	Message   string `json:"message" description:"User question"`
	SessionID string `json:"session_id,omitempty" description:"Optional chat session identifier"`
}

type ChatResponse struct {
	Answer     string `json:"answer"`
	Success    bool   `json:"success"`
	NumDocs    int    `json:"num_docs"`
	Model      string `json:"model"`
	NeedsHuman bool   `json:"needs_human"`
}

type HealthResponse struct {
	Status     string `json:"status" description:"Service status"`
	Version    string `json:"version" description:"API version"`
	IndexReady bool   `json:"index_ready" description:"Whether the vector index is reachable"`
}

func (c *ChatRequest) Validate() error {
	if c.Message == "" {
		return middleware.ErrEmptyMessage
	}
	return nil
}
