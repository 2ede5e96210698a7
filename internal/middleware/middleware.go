package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

// Logger assigns each request an id and logs method, path, status and
// duration once the chain completes.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	requestID := req.HeaderParameter(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	resp.AddHeader(requestIDHeader, requestID)

	start := time.Now()
	chain.ProcessFilter(req, resp)

	log.Info().
		Str("request_id", requestID).
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request handled")
}

// RecoverPanic converts a handler panic into a 500 response instead of
// killing the serving process.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("path", req.Request.URL.Path).
				Interface("panic", r).
				Msg("Recovered from panic in handler")
			HandleError(resp, fmt.Errorf("internal server error"), http.StatusInternalServerError)
		}
	}()

	chain.ProcessFilter(req, resp)
}
