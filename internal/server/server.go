package server

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sspkit/razorgate/internal/config"
	"github.com/sspkit/razorgate/internal/gateway/adapters"
	gatewaydomain "github.com/sspkit/razorgate/internal/gateway/domain"
	"github.com/sspkit/razorgate/internal/observability/logger"
	"github.com/sspkit/razorgate/internal/observability/metrics"
	"github.com/sspkit/razorgate/internal/observability/tracing"
	"github.com/sspkit/razorgate/internal/webhook"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	GenID       *snowflake.Node
	GatewaySvc  gatewaydomain.Service
	Registry    *adapters.Registry
	Verifier    *webhook.Verifier
	Forwarder   *webhook.Forwarder
	HTTPMetrics *metrics.HTTPMetrics `optional:"true"`
}

// Server carries every dependency the HTTP handlers need. Static
// configuration only; nothing mutable crosses requests.
type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	gatewaySvc gatewaydomain.Service
	registry   *adapters.Registry
	verifier   *webhook.Verifier
	forwarder  *webhook.Forwarder
	limiter    *rateLimiter
}

func NewEngine(p Params) *gin.Engine {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		p.Log.Error("panic recovered", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   true,
			"message": "Internal server error",
		})
	}))
	engine.Use(func(c *gin.Context) {
		ctx := tracing.ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Logger:    p.Log,
		GenID:     p.GenID,
		SkipPaths: []string{"/health", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(p.HTTPMetrics))
	return engine
}

func NewServer(p Params, engine *gin.Engine) *Server {
	var limiter *rateLimiter
	if p.Cfg.RateLimit > 0 {
		limiter = newRateLimiter(p.Cfg.RateLimit, p.Cfg.RateLimitWindow)
	}
	return &Server{
		engine:     engine,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		gatewaySvc: p.GatewaySvc,
		registry:   p.Registry,
		verifier:   p.Verifier,
		forwarder:  p.Forwarder,
		limiter:    limiter,
	}
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/health", s.Health)
	s.engine.GET("/capabilities", s.Capabilities)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := s.engine.Group("", s.RateLimitRequired(), s.APIKeyRequired())
	authed.POST("/charge", s.Charge)
	authed.POST("/refund", s.Refund)
	authed.GET("/transactions/:id", s.Transaction)
	authed.POST("/payment-intent", s.PaymentIntent)

	s.engine.POST("/webhooks/:provider", s.HandleWebhook)
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("http server shutting down")
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterRoutes()
	}),
	fx.Invoke(RunHTTP),
)
