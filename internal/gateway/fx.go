package gateway

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sspkit/razorgate/internal/config"
	"github.com/sspkit/razorgate/internal/gateway/adapters"
	"github.com/sspkit/razorgate/internal/gateway/adapters/razorpay"
	"github.com/sspkit/razorgate/internal/gateway/service"
)

// Module wires the provider registry and the gateway service.
var Module = fx.Module("gateway",
	fx.Provide(
		newRegistry,
		service.NewService,
	),
)

func newRegistry(cfg config.Config, log *zap.Logger) *adapters.Registry {
	return adapters.NewRegistry(
		razorpay.NewFactory(razorpay.Options{
			BaseURL:          cfg.ProviderBaseURL,
			Timeout:          cfg.ProviderTimeout,
			DefaultKeyID:     cfg.DefaultKeyID,
			DefaultKeySecret: cfg.DefaultKeySecret,
			Logger:           log,
		}),
	)
}
