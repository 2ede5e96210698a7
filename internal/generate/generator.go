package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/GasparGW/chinfield-rag-demo/internal/llm"
)

// systemInstruction is sent ahead of every composed prompt.
const systemInstruction = "Eres un asistente técnico veterinario de Laboratorio Chinfield."

// Result is the outcome of one generation call. Failure is encoded in
// the value: Success is false, Err holds the typed cause, and Answer
// carries the stringified description for the wire. Model and
// Timestamp are only set on success.
type Result struct {
	Answer    string
	Model     string
	Success   bool
	Timestamp time.Time
	Err       error
}

// Options are the sampling parameters applied to every request.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Generator invokes a single llm.Client selected once at construction.
// Generate never returns an error: every transport or provider failure
// degrades into a Result with Success false, so the orchestrator never
// branches on backend identity.
type Generator struct {
	client  llm.Client
	modelID string
	opts    Options
	logger  *zerolog.Logger
}

func NewGenerator(client llm.Client, modelID string, opts Options, logger *zerolog.Logger) *Generator {
	return &Generator{
		client:  client,
		modelID: modelID,
		opts:    opts,
		logger:  logger,
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string) Result {
	response, err := g.client.InvokeModel(ctx, llm.Request{
		System:      systemInstruction,
		Prompt:      prompt,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		g.logger.Error().Err(err).Str("model", g.modelID).Msg("Generation failed")
		return failure(err)
	}

	return Result{
		Answer:    response.Content,
		Model:     g.modelID,
		Success:   true,
		Timestamp: time.Now(),
	}
}

func failure(err error) Result {
	return Result{
		Answer:  fmt.Sprintf("Error: %s", err.Error()),
		Success: false,
		Err:     err,
	}
}
