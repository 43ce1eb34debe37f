// Package middleware holds the Gin middleware shared by the scheme directory
// HTTP API.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey lets a client retry POST /chat without the exchange
// being logged twice.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the key accepted by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether the handler answered the request as a replay of an
// earlier one with the same key and body.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}

// MarkReplay flags the request as a replay so the access log can record it.
func MarkReplay(c *gin.Context) {
	c.Set(ctxKeyIdemReplay, true)
}

// IdempotencyOptions configures key validation.
type IdempotencyOptions struct {
	// MaxLen defaults to 200.
	MaxLen int
	// Pattern defaults to ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// ClientID identifies the caller for idempotency and rate limiting. There is
// no authentication, so the client IP is the only stable handle.
func ClientID(c *gin.Context) string {
	return c.ClientIP()
}

// IdempotencyValidator checks the Idempotency-Key header when present and
// stores it on the context. A malformed key is rejected with 400. Whether the
// key was seen before is decided by the handler, which compares the body.
func IdempotencyValidator(opts IdempotencyOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
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
		c.Next()
	}
}
