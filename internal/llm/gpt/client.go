package gpt

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/GasparGW/chinfield-rag-demo/internal/llm"
)

// Client is the hosted chat-completion variant of the generation
// backend.
type Client struct {
	client  openai.Client
	modelID string
}

func NewClient(apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI model ID is required")
	}

	openaiClient := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Client{
		client:  openaiClient,
		modelID: model,
	}, nil
}

// InvokeModel sends a two-message exchange (system instruction plus
// the composed prompt) to the chat completions API.
func (c *Client) InvokeModel(ctx context.Context, request llm.Request) (*llm.Response, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if request.System != "" {
		messages = append(messages, openai.SystemMessage(request.System))
	}
	messages = append(messages, openai.UserMessage(request.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(request.MaxTokens)),
		Temperature:         openai.Float(request.Temperature),
		Model:               openai.ChatModel(c.modelID),
	}

	output, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("unable to invoke gpt model: %w", err)
	}

	if len(output.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := output.Choices[0]
	return &llm.Response{
		Content:    choice.Message.Content,
		StopReason: fmt.Sprint(choice.FinishReason),
	}, nil
}
