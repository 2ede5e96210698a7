package middleware

import (
	"errors"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyMessage = errors.New("message must not be empty")
)

type ErrorResponse struct {
	Error string `json:"error" description:"Error message"`
	Code  int    `json:"code" description:"HTTP status code"`
}

// HandleError writes a JSON error body with the given status code.
func HandleError(resp *restful.Response, err error, code int) {
	body := ErrorResponse{
		Error: err.Error(),
		Code:  code,
	}

	if writeErr := resp.WriteHeaderAndEntity(code, body); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
