package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderAPIKey carries the caller's shared secret on mutating endpoints.
const HeaderAPIKey = "X-API-Key"

// APIKeyRequired authenticates the upstream caller. Authentication always
// runs before request validation; an unconfigured expected key rejects
// everything rather than failing open.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := s.cfg.APIKey
		provided := strings.TrimSpace(c.GetHeader(HeaderAPIKey))
		if expected == "" || provided == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RateLimitRequired throttles mutating endpoints per client IP. A nil
// limiter (RATE_LIMIT unset) disables throttling.
func (s *Server) RateLimitRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}
		if !s.limiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
