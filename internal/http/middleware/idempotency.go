// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for unsafe HTTP methods (e.g., the
// chat send POST). It validates an Idempotency-Key request header and stashes
// the normalized key in the request context; the handler that owns the
// operation performs the authoritative lookup, because only it knows which
// thread the key scopes to. An optional lookup lets the middleware flag an
// obvious replay early so the rate limiter can skip counting it.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header that clients use to
// convey an idempotency key for unsafe operations. The value is expected to
// be stable for a given semantic operation so retries can be deduplicated.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys used internally to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the middleware detected that this request would
// replay a previously completed operation.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation for IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// RFC7230-like token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
	// ThreadFrom extracts the thread id the key scopes to. If nil, the
	// "thread_id" query parameter is used. TTL enforcement belongs to the
	// lookup.
	ThreadFrom func(c *gin.Context) string
}

// IdempotencyLookup answers whether a successful, still-valid result exists
// for (userID, threadID, key) at the given time. Return exists=true when the
// prior response can be replayed; return an error only for lookup failures,
// which must not block normal processing.
type IdempotencyLookup func(ctx context.Context, userID, threadID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header (if present),
// stashes it in the request context, and optionally checks for a prior
// completed request via the supplied lookup. A detected replay sets the
// replay and rate-bypass flags; serving the cached payload remains the
// handler's job.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}
	threadFrom := opts.ThreadFrom
	if threadFrom == nil {
		threadFrom = func(c *gin.Context) string { return c.Query("thread_id") }
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			uid := UserIDFrom(c)
			threadID := threadFrom(c)
			now := time.Now().UTC()

			if exists, _ := lookup(c.Request.Context(), uid, threadID, key, now); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
