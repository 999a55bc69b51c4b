package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gatewaydomain "github.com/sspkit/razorgate/internal/gateway/domain"
	obscontext "github.com/sspkit/razorgate/internal/observability/context"
	"github.com/sspkit/razorgate/internal/observability/logger"
	"github.com/sspkit/razorgate/internal/observability/metrics"
	"github.com/sspkit/razorgate/internal/webhook"
	"go.uber.org/zap"
)

const (
	// HeaderWebhookSignature is the processor's signature header.
	HeaderWebhookSignature = "X-Razorpay-Signature"

	// forwardProviderName identifies this adapter in forwarded envelopes.
	forwardProviderName = "razorpay-upi"
)

// HandleWebhook verifies the processor signature over the exact raw body,
// then relays the event downstream. Forwarding is best effort: the
// processor always gets {status:"ok"} once the signature checks out, so a
// downstream outage never triggers a processor retry storm.
func (s *Server) HandleWebhook(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	if !s.registry.ProviderExists(provider) {
		AbortWithError(c, gatewaydomain.ErrProviderNotFound)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.verifier.Verify(body, c.GetHeader(HeaderWebhookSignature)); err != nil {
		metrics.Gateway().IncWebhookReceived("rejected")
		s.log.Warn("webhook signature rejected", zap.String("provider", provider))
		AbortWithError(c, err)
		return
	}
	metrics.Gateway().IncWebhookReceived("verified")

	event, err := webhook.ParseEvent(body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := obscontext.WithProvider(c.Request.Context(), provider)
	logger.FromContext(ctx).Info("webhook received", zap.String("event", event.Type))

	if s.forwarder.Configured() {
		if err := s.forwarder.Forward(ctx, webhook.Envelope{
			Provider:      forwardProviderName,
			Event:         event.Type,
			Payload:       event.Payload,
			TransactionID: event.TransactionID,
		}); err != nil {
			// Logged only. The processor response stays ok.
			metrics.Gateway().IncWebhookForwarded("failed")
			logger.FromContext(ctx).Error("webhook forward failed",
				zap.String("event", event.Type),
				zap.Error(err),
			)
		} else {
			metrics.Gateway().IncWebhookForwarded("success")
		}
	} else {
		metrics.Gateway().IncWebhookForwarded("skipped")
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
