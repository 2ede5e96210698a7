package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/GasparGW/chinfield-rag-demo/internal/handoff"
	"github.com/GasparGW/chinfield-rag-demo/internal/retrieval"
)

type stubQueryService struct {
	result QueryResult
}

func (s *stubQueryService) Query(ctx context.Context, question string, k int) QueryResult {
	result := s.result
	result.Query = question
	return result
}

type stubProvider struct {
	service QueryService
	err     error
	ready   bool
}

func (s *stubProvider) Service(ctx context.Context) (QueryService, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.service, nil
}

func (s *stubProvider) Ready(ctx context.Context) bool {
	return s.ready
}

func newTestContainer(provider ServiceProvider) *restful.Container {
	handler := NewHandler(provider, handoff.NewPolicy(0.65), "2.0.0")
	container := restful.NewContainer()
	RegisterRoutes(container, handler)
	return container
}

func postChat(t *testing.T, container *restful.Container, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	request.Header.Set("Content-Type", restful.MIME_JSON)
	recorder := httptest.NewRecorder()

	container.ServeHTTP(recorder, request)
	return recorder
}

func decodeChatResponse(t *testing.T, recorder *httptest.ResponseRecorder) ChatResponse {
	t.Helper()

	var response ChatResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return response
}

func confidentResult(answer string) QueryResult {
	return QueryResult{
		Answer:      answer,
		Model:       "gpt-4o-mini",
		Success:     true,
		Timestamp:   "2026-08-30T12:00:00Z",
		NumDocsUsed: 2,
		RetrievedDocs: []retrieval.ScoredDocument{
			{Rank: 1, Text: "Dipirona 50%", Similarity: 0.91},
			{Rank: 2, Text: "Flunifield", Similarity: 0.82},
		},
	}
}

func TestChat_ConfidentAnswer(t *testing.T) {
	provider := &stubProvider{service: &stubQueryService{result: confidentResult("Te recomiendo Dipirona 50%.")}}
	container := newTestContainer(provider)

	recorder := postChat(t, container, `{"message": "¿Qué me recomiendan para el dolor en bovinos?"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	response := decodeChatResponse(t, recorder)
	if !response.Success {
		t.Error("Expected success")
	}
	if response.NeedsHuman {
		t.Error("Expected no handoff for confident answer")
	}
	if strings.Contains(response.Answer, "¿Necesitás más ayuda?") {
		t.Error("Expected no contact block for confident answer")
	}
	if response.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected model: %s", response.Model)
	}
	if response.NumDocs != 2 {
		t.Errorf("Expected 2 documents, got %d", response.NumDocs)
	}
}

func TestChat_EmptyRetrievalEscalates(t *testing.T) {
	provider := &stubProvider{service: &stubQueryService{result: QueryResult{
		Answer:        "No encontré productos específicos para eso.",
		Model:         "gpt-4o-mini",
		Success:       true,
		NumDocsUsed:   0,
		RetrievedDocs: []retrieval.ScoredDocument{},
	}}}
	container := newTestContainer(provider)

	recorder := postChat(t, container, `{"message": "¿Venden repuestos de tractores?"}`)

	response := decodeChatResponse(t, recorder)
	if !response.Success {
		t.Error("Expected success, the pipeline itself did not fail")
	}
	if !response.NeedsHuman {
		t.Error("Expected handoff with zero documents")
	}
	if !strings.Contains(response.Answer, "¿Necesitás más ayuda?") {
		t.Error("Expected contact block in escalated answer")
	}
	if !strings.HasPrefix(response.Answer, "No encontré productos específicos para eso.") {
		t.Errorf("Expected the generated answer to be preserved, got %q", response.Answer)
	}
}

func TestChat_LowConfidenceEscalates(t *testing.T) {
	provider := &stubProvider{service: &stubQueryService{result: QueryResult{
		Answer:      "Podría servir la Fenilbutazona.",
		Model:       "gpt-4o-mini",
		Success:     true,
		NumDocsUsed: 2,
		RetrievedDocs: []retrieval.ScoredDocument{
			{Rank: 1, Text: "a", Similarity: 0.5},
			{Rank: 2, Text: "b", Similarity: 0.4},
		},
	}}}
	container := newTestContainer(provider)

	recorder := postChat(t, container, `{"message": "consulta ambigua"}`)

	response := decodeChatResponse(t, recorder)
	if !response.NeedsHuman {
		t.Error("Expected handoff for weak similarities")
	}
	if !strings.Contains(response.Answer, "info@chinfield.com") {
		t.Error("Expected contact details in escalated answer")
	}
}

func TestChat_GenerationFailure(t *testing.T) {
	provider := &stubProvider{service: &stubQueryService{result: QueryResult{
		Answer:      "Error: rate limited",
		Success:     false,
		NumDocsUsed: 2,
		RetrievedDocs: []retrieval.ScoredDocument{
			{Rank: 1, Text: "a", Similarity: 0.9},
			{Rank: 2, Text: "b", Similarity: 0.9},
		},
	}}}
	container := newTestContainer(provider)

	recorder := postChat(t, container, `{"message": "consulta"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for pipeline failure, got %d", recorder.Code)
	}

	response := decodeChatResponse(t, recorder)
	if response.Success {
		t.Error("Expected success false")
	}
	if !response.NeedsHuman {
		t.Error("Expected handoff for failed generation")
	}
	if response.Model != "error" {
		t.Errorf("Expected model \"error\", got %q", response.Model)
	}
	if response.NumDocs != 0 {
		t.Errorf("Expected num_docs 0 on failure, got %d", response.NumDocs)
	}
	if strings.Contains(response.Answer, "rate limited") {
		t.Error("Expected raw error to be replaced by the fallback answer")
	}
	if !strings.HasPrefix(response.Answer, fallbackAnswer) {
		t.Errorf("Expected fallback answer, got %q", response.Answer)
	}
	if !strings.Contains(response.Answer, "¿Necesitás más ayuda?") {
		t.Error("Expected contact block in failure answer")
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	provider := &stubProvider{service: &stubQueryService{result: confidentResult("nunca")}}
	container := newTestContainer(provider)

	recorder := postChat(t, container, `{"message": ""}`)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
}

func TestChat_MalformedBody(t *testing.T) {
	provider := &stubProvider{service: &stubQueryService{result: confidentResult("nunca")}}
	container := newTestContainer(provider)

	recorder := postChat(t, container, `{"message": `)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
}

func TestChat_PipelineUnavailable(t *testing.T) {
	provider := &stubProvider{err: errors.New("vector index unreachable")}
	container := newTestContainer(provider)

	recorder := postChat(t, container, `{"message": "consulta"}`)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", recorder.Code)
	}
}

func TestHealth(t *testing.T) {
	provider := &stubProvider{ready: true}
	container := newTestContainer(provider)

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var response HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("Expected status healthy, got %q", response.Status)
	}
	if response.Version != "2.0.0" {
		t.Errorf("Expected version 2.0.0, got %q", response.Version)
	}
	if !response.IndexReady {
		t.Error("Expected index ready")
	}
}

func TestHealth_IndexNotReady(t *testing.T) {
	provider := &stubProvider{ready: false}
	container := newTestContainer(provider)

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200 even when index is down, got %d", recorder.Code)
	}

	var response HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.IndexReady {
		t.Error("Expected index_ready false")
	}
}

func TestChatRequest_Validate(t *testing.T) {
	valid := ChatRequest{Message: "hola"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Unexpected error for valid request: %v", err)
	}

	empty := ChatRequest{}
	if err := empty.Validate(); err == nil {
		t.Error("Expected error for empty message")
	}
}

// Ensure the generate result mapping stays aligned with the wire shape.
func TestQueryResult_FailureShape(t *testing.T) {
	logger := zerolog.Nop()
	service := NewService(&fakeRetriever{err: errors.New("boom")}, &fakeComposer{}, &fakeGenerator{}, 3, &logger)

	result := service.Query(context.Background(), "q", 0)

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	payload := string(data)
	if strings.Contains(payload, `"model"`) {
		t.Error("Expected model to be omitted on failure")
	}
	if strings.Contains(payload, `"timestamp"`) {
		t.Error("Expected timestamp to be omitted on failure")
	}
	if !strings.Contains(payload, `"retrieved_docs":[]`) {
		t.Error("Expected empty retrieved_docs array, not null")
	}
}
