package retrieval

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/GasparGW/chinfield-rag-demo/internal/store"
)

// similarityPrecision fixes the number of decimals kept on similarity
// scores, for stable comparison across runs.
const similarityPrecision = 4

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// Searcher answers nearest-neighbor queries by embedding vector.
type Searcher interface {
	SemanticSearch(ctx context.Context, queryEmbedding []float32, limit int) ([]store.Match, error)
}

// Cache holds retrieval results keyed by (query, k). Safe to use
// because retrieval against an unchanged index is deterministic.
type Cache interface {
	Get(ctx context.Context, query string, k int) ([]ScoredDocument, bool)
	Set(ctx context.Context, query string, k int, docs []ScoredDocument)
}

// Retriever wraps the embedding provider and the vector index into a
// single text-in, ranked-documents-out operation.
type Retriever struct {
	embedder Embedder
	searcher Searcher
	cache    Cache
	logger   *zerolog.Logger
}

func NewRetriever(embedder Embedder, searcher Searcher, cache Cache, logger *zerolog.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		cache:    cache,
		logger:   logger,
	}
}

// Retrieve embeds the query, runs one nearest-neighbor search and zips
// the matches into ScoredDocuments. It returns at most k documents,
// and an empty slice (not an error) when the index has no matches.
// Ties are broken by the index; results are never re-sorted here.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	if r.cache != nil {
		if docs, hit := r.cache.Get(ctx, query, k); hit {
			r.logger.Debug().Str("query", query).Int("k", k).Msg("Retrieval cache hit")
			return docs, nil
		}
	}

	embedding, err := r.embedder.GenerateEmbeddings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to generate query embedding: %w", err)
	}

	matches, err := r.searcher.SemanticSearch(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("unable to run semantic search: %w", err)
	}

	docs := make([]ScoredDocument, 0, len(matches))
	for i, match := range matches {
		docs = append(docs, ScoredDocument{
			Rank:       i + 1,
			Text:       match.Content,
			Metadata:   match.Metadata,
			Similarity: DistanceToSimilarity(match.Distance),
		})
	}

	r.logger.Debug().Str("query", query).Int("k", k).Int("found", len(docs)).Msg("Retrieval done")

	if r.cache != nil {
		r.cache.Set(ctx, query, k, docs)
	}

	return docs, nil
}

// DistanceToSimilarity converts a non-negative, unbounded distance into
// a similarity in (0,1]: strictly decreasing in distance, approaching 1
// as distance approaches 0.
func DistanceToSimilarity(distance float64) float64 {
	similarity := 1.0 / (1.0 + distance)

	factor := math.Pow(10, similarityPrecision)
	return math.Round(similarity*factor) / factor
}
