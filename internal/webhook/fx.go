package webhook

import (
	"github.com/sspkit/razorgate/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("webhook",
	fx.Provide(func(cfg config.Config) *Verifier {
		return NewVerifier(cfg.WebhookSecret)
	}),
	fx.Provide(func(cfg config.Config, log *zap.Logger) *Forwarder {
		return NewForwarder(ForwarderOptions{
			URL:     cfg.CallbackURL,
			Secret:  cfg.CallbackSecret,
			Timeout: cfg.ForwardTimeout,
			Logger:  log,
		})
	}),
)
