package retrieval

import "github.com/GasparGW/chinfield-rag-demo/internal/store"

// ScoredDocument is one retrieved document with its query-time score.
// Rank follows the index's native ordering, dense from 1. Similarity
// is 1/(1+distance), rounded to 4 decimals, and never recomputed after
// retrieval.
type ScoredDocument struct {
	Rank       int            `json:"rank"`
	Text       string         `json:"text"`
	Metadata   store.Metadata `json:"metadata"`
	Similarity float64        `json:"similarity"`
}
