package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/GasparGW/chinfield-rag-demo/internal/generate"
	"github.com/GasparGW/chinfield-rag-demo/internal/prompt"
	"github.com/GasparGW/chinfield-rag-demo/internal/retrieval"
)

// Retriever turns a text query into ranked, scored documents.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]retrieval.ScoredDocument, error)
}

// Composer assembles the generation prompt from the grounding context
// and the user query.
type Composer interface {
	Build(contextBlock string, query string) (string, error)
}

// Generator produces an answer for a prompt; failure is encoded in the
// result, never raised.
type Generator interface {
	Generate(ctx context.Context, prompt string) generate.Result
}

// Service is the query orchestrator and the sole public entry point of
// the pipeline: retrieve, compose, generate, attach metadata. It never
// returns an error; every failure is encoded in the QueryResult.
type Service struct {
	retriever Retriever
	composer  Composer
	generator Generator
	defaultK  int
	logger    *zerolog.Logger
}

func NewService(retriever Retriever, composer Composer, generator Generator, defaultK int, logger *zerolog.Logger) *Service {
	return &Service{
		retriever: retriever,
		composer:  composer,
		generator: generator,
		defaultK:  defaultK,
		logger:    logger,
	}
}

// Query runs the full pipeline for one question. k <= 0 selects the
// configured default fan-out. Generation always runs, even with zero
// retrieved documents: the model handles an empty context per its own
// prompt contract.
func (s *Service) Query(ctx context.Context, question string, k int) QueryResult {
	if k <= 0 {
		k = s.defaultK
	}

	docs, err := s.retriever.Retrieve(ctx, question, k)
	if err != nil {
		s.logger.Error().Err(err).Str("query", question).Msg("Retrieval failed")
		return s.failureResult(question, nil, err)
	}

	s.logger.Info().Str("query", question).Int("k", k).Int("num_docs", len(docs)).Msg("Documents retrieved")

	promptText, err := s.composer.Build(prompt.BuildContext(docs), question)
	if err != nil {
		s.logger.Error().Err(err).Str("query", question).Msg("Prompt composition failed")
		return s.failureResult(question, docs, err)
	}

	generated := s.generator.Generate(ctx, promptText)

	result := QueryResult{
		Query:         question,
		Answer:        generated.Answer,
		Model:         generated.Model,
		Success:       generated.Success,
		NumDocsUsed:   len(docs),
		RetrievedDocs: docs,
	}
	if generated.Success {
		result.Timestamp = generated.Timestamp.Format(time.RFC3339)
	}
	if result.RetrievedDocs == nil {
		result.RetrievedDocs = []retrieval.ScoredDocument{}
	}

	return result
}

func (s *Service) failureResult(question string, docs []retrieval.ScoredDocument, err error) QueryResult {
	if docs == nil {
		docs = []retrieval.ScoredDocument{}
	}

	return QueryResult{
		Query:         question,
		Answer:        fmt.Sprintf("Error: %s", err.Error()),
		Success:       false,
		NumDocsUsed:   len(docs),
		RetrievedDocs: docs,
	}
}
