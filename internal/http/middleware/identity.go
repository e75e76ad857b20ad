// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the per-session user identity. The backend treats the
// identity provider as external: requests carry an opaque, stable user id in
// the X-User-ID header, and private collections are namespaced by it. A
// development-friendly fallback id keeps local testing headerless.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUserID is the request header carrying the opaque user identifier.
const HeaderUserID = "X-User-ID"

// DefaultUserID is the fallback identity for requests without a header.
const DefaultUserID = "demo-user"

const ctxKeyUserID = "userID"

// Identity stashes the resolved user id in the Gin context for downstream
// handlers and middleware.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if id == "" {
			id = DefaultUserID
		}
		c.Set(ctxKeyUserID, id)
		c.Next()
	}
}

// UserIDFrom returns the identity resolved by Identity, falling back to the
// header and then to DefaultUserID so handlers work in tests that skip the
// middleware.
func UserIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader(HeaderUserID)); h != "" {
			return h
		}
	}
	return DefaultUserID
}
