// Package handlers implements the HTTP endpoints of the scheme directory:
// catalogue listing and lookup, scheme creation, and the chat endpoint.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/http/middleware"
)

// ErrorResponse is the error body of every endpoint. Message is always
// present, so clients that only read {message} keep working.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"Scheme not found"`
}

// fail aborts with an ErrorResponse. 5xx responses are logged with cause,
// which stays out of the body.
func fail(c *gin.Context, status int, code, msg string, cause ...error) {
	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code)
		if len(cause) > 0 && cause[0] != nil {
			ev = ev.Err(cause[0])
		}
		ev.Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is fail for callers outside the package, such as router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
