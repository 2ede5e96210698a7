package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GasparGW/chinfield-rag-demo/internal/llm"
)

// Generation on CPU-bound local hardware can take minutes.
const requestTimeout = 120 * time.Second

// Client is the local-inference variant of the generation backend. It
// talks to an Ollama-compatible /api/generate endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	modelID    string
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response   string `json:"response"`
	DoneReason string `json:"done_reason"`
}

func NewClient(baseURL string, model string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ollama base URL is required")
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model ID is required")
	}

	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		modelID:    model,
	}, nil
}

func (c *Client) InvokeModel(ctx context.Context, request llm.Request) (*llm.Response, error) {
	payload := generateRequest{
		Model:  c.modelID,
		Prompt: request.Prompt,
		System: request.System,
		Stream: false,
		Options: generateOptions{
			Temperature: request.Temperature,
			NumPredict:  request.MaxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ollama response: %w", err)
	}

	var response generateResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ollama response: %w", err)
	}

	return &llm.Response{
		Content:    strings.TrimSpace(response.Response),
		StopReason: response.DoneReason,
	}, nil
}
