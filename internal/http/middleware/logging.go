// Package middleware holds the Gin middleware shared by the scheme directory
// HTTP API.
//
// This file provides the request ID injector, panic recovery and access to
// the request-scoped logger:
//
//   - RequestID() reuses or mints an X-Request-ID and stores it in the Gin
//     context so error envelopes and log lines can carry it.
//   - Recovery() converts panics into the JSON 500 envelope, keeping the
//     request ID, and logs the stack trace.
//   - LoggerFrom() returns the zerolog.Logger attached by RedactingLogger so
//     handlers can log with request fields (e.g. lg.Warn().Err(err).Msg("…")).
//
// Register RequestID first, then RedactingLogger, then Recovery, so panics and
// access logs include the correlation ID. Query strings are truncated before
// they are logged.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key holding the request ID.
	requestIDKey = "requestID"
	// loggerKey is the Gin context key holding the request-scoped logger.
	loggerKey = "logger"
	// requestIDHeader carries the correlation ID in and out.
	requestIDHeader = "X-Request-ID"

	// maxQueryLogLength caps how much of the raw query string reaches the log.
	maxQueryLogLength = 2048
)

// RequestID reuses the caller's X-Request-ID or mints a UUID, and echoes it
// on the response. Register it first so every later log line carries it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Recovery turns a panic into a JSON 500 carrying the request ID.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := c.GetString(requestIDKey)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "Internal Server Error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger set by RedactingLogger, or the
// global logger when none is attached.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
