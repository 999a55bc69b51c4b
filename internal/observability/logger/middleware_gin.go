package logger

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/sspkit/razorgate/internal/observability/context"
	"go.uber.org/zap"
)

// MiddlewareConfig controls the gin access-log middleware.
type MiddlewareConfig struct {
	Logger    *zap.Logger
	GenID     *snowflake.Node
	SkipPaths []string
}

// GinMiddleware assigns a request ID, echoes it in the X-Request-Id header,
// and emits one structured access log per request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if requestID == "" {
			requestID = newRequestID(cfg.GenID)
		}
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		start := time.Now()
		c.Next()

		if _, ok := skip[c.FullPath()]; ok {
			return
		}

		log := cfg.Logger
		if log == nil {
			log = FromContext(c.Request.Context())
		}
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= 400 {
			fields = append(fields, zap.Any("request", SafeFieldsFromRequest(c.Request)))
		}
		log.Info("http request", fields...)
	}
}

func newRequestID(genID *snowflake.Node) string {
	if genID != nil {
		return genID.Generate().String()
	}
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
