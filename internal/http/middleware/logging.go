// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request correlation and logging chain:
//
//   - RequestID() gives every request a stable correlation id, reusing an
//     incoming X-Request-ID when the client sent one.
//   - Logger() emits one structured access log per request and stores a
//     request-scoped zerolog.Logger in the Gin context for handlers and
//     services to enrich.
//   - Recovery() converts panics into a JSON 500 carrying the correlation id.
//   - LoggerFrom() fetches the request-scoped logger; it never returns nil.
//
// Mount RequestID first, then Logger, then Recovery, so panics and error
// responses always carry the correlation id. Query strings are truncated
// before logging to keep log lines bounded.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
	// ctxKeyLogger is the Gin context key for the request-scoped logger.
	ctxKeyLogger = "logger"
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
)

// RequestID attaches (or propagates) a correlation identifier per request.
// The id is echoed in the X-Request-ID response header and stored in the Gin
// context for downstream middleware.
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

// Logger writes a structured access log for each request and response.
//
// The log line records method, route (raw path on a 404), remote IP, user
// agent, correlation id, acting user id, request and response sizes, status,
// and latency. The level follows the outcome: error for 5xx or collected Gin
// errors, warn for 4xx, info otherwise.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		uid, _ := c.Get(ctxKeyUserID)
		path := c.FullPath()
		if path == "" {
			// Unmatched route; log what the client asked for.
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("user_id", asString(uid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()

		c.Set(ctxKeyLogger, &l)

		c.Next()

		ev := l.With().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("request")
		case c.Writer.Status() >= 500:
			ev.Error().Msg("request")
		case c.Writer.Status() >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

// Recovery intercepts panics, logs the stack, and answers with the standard
// JSON error envelope when nothing has been written yet.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", asString(rid)).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.Header(requestIDHeader, asString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": asString(rid),
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger attached by Logger().
// When none is attached it falls back to the global logger, so callers never
// need a nil check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// asString returns v when it is a string and "" otherwise. Context values are
// untyped, so this guards every lookup.
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes, appending an ellipsis. A max <= 0 disables
// truncation. Byte truncation can split a rune, which is acceptable for logs.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
