package llm

// Request carries the composed prompt plus sampling parameters.
// System is an optional instruction sent ahead of the prompt; providers
// that have no separate system channel may fold it into the request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Response struct {
	Content    string
	StopReason string
}
