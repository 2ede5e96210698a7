package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// SemanticSearch runs a nearest-neighbor query against the collection
// and returns up to limit matches ordered by ascending L2 distance.
// The database defines the ranking; results are never re-sorted here.
func (db *DB) SemanticSearch(ctx context.Context, queryEmbedding []float32, limit int) ([]Match, error) {
	embedding := pgvector.NewVector(queryEmbedding)

	query := fmt.Sprintf(`
	SELECT
	  id,
	  content,
	  metadata,
	  embedding <-> $1 AS distance
	FROM %s
	ORDER BY distance ASC
	LIMIT $2`, db.table)

	rows, err := db.Pool.Query(ctx, query, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to query the database: %w", err)
	}

	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var match Match
		var rawMetadata []byte

		if err := rows.Scan(&match.ID, &match.Content, &rawMetadata, &match.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if err := json.Unmarshal(rawMetadata, &match.Metadata); err != nil {
			log.Warn().Str("doc_id", match.ID).Err(err).Msg("Failed to parse document metadata")
		}

		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return matches, nil
}

// CountDocuments reports the collection size, used by the health check.
func (db *DB) CountDocuments(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, db.table)

	var count int64
	if err := db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}
