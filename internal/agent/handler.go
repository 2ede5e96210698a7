package agent

import (
	"context"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GasparGW/chinfield-rag-demo/internal/handoff"
	"github.com/GasparGW/chinfield-rag-demo/internal/middleware"
)

// fallbackAnswer replaces the raw error description on the wire so the
// chat client always has a renderable, polite message.
const fallbackAnswer = "Disculpá, hubo un problema procesando tu consulta. " +
	"Te recomiendo contactar directamente a nuestro equipo técnico."

// QueryService is what the handler needs from the orchestrator.
type QueryService interface {
	Query(ctx context.Context, question string, k int) QueryResult
}

// ServiceProvider hands out the initialize-once pipeline. Construction
// failure here is the only condition that yields HTTP 500; every
// in-pipeline failure is a 200 with success false.
type ServiceProvider interface {
	Service(ctx context.Context) (QueryService, error)
	Ready(ctx context.Context) bool
}

type Handler struct {
	provider ServiceProvider
	policy   *handoff.Policy
	version  string
}

func NewHandler(provider ServiceProvider, policy *handoff.Policy, version string) *Handler {
	return &Handler{
		provider: provider,
		policy:   policy,
		version:  version,
	}
}

// Chat handles POST /api/chat
func (h *Handler) Chat(req *restful.Request, resp *restful.Response) {
	var chatRequest ChatRequest

	if err := req.ReadEntity(&chatRequest); err != nil {
		log.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := chatRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	sessionID := chatRequest.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	log.Info().
		Str("session_id", sessionID).
		Str("message", chatRequest.Message).
		Msg("Process chat message")

	ctx := req.Request.Context()

	service, err := h.provider.Service(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Pipeline unavailable")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	result := service.Query(ctx, chatRequest.Message, 0)

	needsHuman := h.policy.NeedsHandoff(result.Success, result.RetrievedDocs)

	answer := result.Answer
	model := result.Model
	numDocs := result.NumDocsUsed
	if !result.Success {
		answer = fallbackAnswer
		model = "error"
		numDocs = 0
	}
	if needsHuman {
		answer = h.policy.AppendContact(answer)
	}

	log.Info().
		Str("session_id", sessionID).
		Bool("success", result.Success).
		Bool("needs_human", needsHuman).
		Int("num_docs", result.NumDocsUsed).
		Msg("Chat message handled")

	resp.WriteHeaderAndEntity(http.StatusOK, ChatResponse{
		Answer:     answer,
		Success:    result.Success,
		NumDocs:    numDocs,
		Model:      model,
		NeedsHuman: needsHuman,
	})
}

// Health handles GET /health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:     "healthy",
		Version:    h.version,
		IndexReady: h.provider.Ready(req.Request.Context()),
	})
}
