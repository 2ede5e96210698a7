package llm

import (
	"context"
)

// Client is the provider-agnostic interface for invoking an LLM.
// Exactly one implementation is selected at startup; callers never
// branch on which one they got.
type Client interface {
	InvokeModel(ctx context.Context, request Request) (*Response, error)
}
