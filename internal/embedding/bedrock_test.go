package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type fakeInvoker struct {
	output *bedrockruntime.InvokeModelOutput
	err    error
	input  *bedrockruntime.InvokeModelInput
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	return f.output, f.err
}

func TestGenerateEmbeddings(t *testing.T) {
	body, _ := json.Marshal(titanEmbeddingResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	invoker := &fakeInvoker{output: &bedrockruntime.InvokeModelOutput{Body: body}}

	embedder := &BedrockEmbedder{client: invoker, modelID: "amazon.titan-embed-text-v2:0"}

	embedding, err := embedder.GenerateEmbeddings(context.Background(), "Dipirona 50% analgésico")
	if err != nil {
		t.Fatalf("GenerateEmbeddings failed: %v", err)
	}

	if len(embedding) != 3 {
		t.Fatalf("Expected 3 dimensions, got %d", len(embedding))
	}

	if invoker.input == nil || invoker.input.ModelId == nil {
		t.Fatal("Expected model ID on the request")
	}
	if *invoker.input.ModelId != "amazon.titan-embed-text-v2:0" {
		t.Errorf("Unexpected model ID: %s", *invoker.input.ModelId)
	}

	var request titanEmbeddingRequest
	if err := json.Unmarshal(invoker.input.Body, &request); err != nil {
		t.Fatalf("Failed to decode request body: %v", err)
	}
	if request.InputText != "Dipirona 50% analgésico" {
		t.Errorf("Unexpected input text: %q", request.InputText)
	}
}

func TestGenerateEmbeddings_InvokeError(t *testing.T) {
	invoker := &fakeInvoker{err: errors.New("throttled")}
	embedder := &BedrockEmbedder{client: invoker, modelID: "amazon.titan-embed-text-v2:0"}

	if _, err := embedder.GenerateEmbeddings(context.Background(), "texto"); err == nil {
		t.Error("Expected error from invoker to propagate")
	}
}

func TestGenerateEmbeddings_EmptyEmbedding(t *testing.T) {
	body, _ := json.Marshal(titanEmbeddingResponse{})
	invoker := &fakeInvoker{output: &bedrockruntime.InvokeModelOutput{Body: body}}
	embedder := &BedrockEmbedder{client: invoker, modelID: "amazon.titan-embed-text-v2:0"}

	if _, err := embedder.GenerateEmbeddings(context.Background(), "texto"); err == nil {
		t.Error("Expected error for empty embedding")
	}
}
