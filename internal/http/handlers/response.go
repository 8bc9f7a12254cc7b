// Package handlers provides the HTTP handlers of the public API.
//
// Every failure is answered with ErrorResponse through fail(); successes go
// through ok() or noContent(). 5xx responses are logged with the
// request-scoped logger.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-call-analysis/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Recording not found"`
	// Where the client should navigate to, if anywhere
	Redirect string `json:"redirect,omitempty" example:"/"`
	// Failed pipeline stage for processing_failed
	Stage string `json:"stage,omitempty" example:"transcribing"`
}

// failWith aborts the request with resp, stamping the request id.
func failWith(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		ev := lg.Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message)
		if resp.Stage != "" {
			ev = ev.Str("stage", resp.Stage)
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// fail aborts the request with a plain {code, message} envelope.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Message: msg})
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
