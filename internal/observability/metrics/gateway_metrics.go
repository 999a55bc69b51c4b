package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics counts provider calls and webhook outcomes.
type GatewayMetrics struct {
	providerCalls     *prometheus.CounterVec
	webhooksReceived  *prometheus.CounterVec
	webhooksForwarded *prometheus.CounterVec
}

var (
	gatewayMetricsOnce sync.Once
	gatewayMetrics     *GatewayMetrics
)

func Gateway() *GatewayMetrics {
	return GatewayWithConfig(Config{})
}

func GatewayWithConfig(cfg Config) *GatewayMetrics {
	gatewayMetricsOnce.Do(func() {
		gatewayMetrics = newGatewayMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return gatewayMetrics
}

func newGatewayMetrics(registerer prometheus.Registerer, cfg Config) *GatewayMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "razorgate"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	providerCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "razorgate_provider_calls_total",
			Help:        "Total processor API calls by operation and result.",
			ConstLabels: constLabels,
		},
		[]string{"operation", "result"}, // result: success | error
	)

	webhooksReceived := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "razorgate_webhooks_received_total",
			Help:        "Total inbound processor webhooks by verification result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // result: verified | rejected
	)

	webhooksForwarded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "razorgate_webhooks_forwarded_total",
			Help:        "Total webhook forward attempts by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // result: success | failed | skipped
	)

	registerer.MustRegister(
		providerCalls,
		webhooksReceived,
		webhooksForwarded,
	)

	return &GatewayMetrics{
		providerCalls:     providerCalls,
		webhooksReceived:  webhooksReceived,
		webhooksForwarded: webhooksForwarded,
	}
}

func (m *GatewayMetrics) IncProviderCall(operation, result string) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(operation, result).Inc()
}

func (m *GatewayMetrics) IncWebhookReceived(result string) {
	if m == nil {
		return
	}
	m.webhooksReceived.WithLabelValues(result).Inc()
}

func (m *GatewayMetrics) IncWebhookForwarded(result string) {
	if m == nil {
		return
	}
	m.webhooksForwarded.WithLabelValues(result).Inc()
}
