// Package handlers – response envelope helpers.
//
// Every failure goes out as an ErrorResponse with a stable snake_case code so
// clients can branch without parsing messages. fail logs 5xx responses with
// the request-scoped logger; 4xx responses are the client's problem and stay
// out of the error log.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillup-app/go-skillup-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints. RequestID
// echoes the X-Request-ID header so a client error can be matched to server
// logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// fail aborts the request with a structured error body.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail lets packages outside handlers (router fallbacks) emit the same
// envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
