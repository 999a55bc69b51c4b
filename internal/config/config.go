package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config is the process-wide configuration. It is populated once at start
// and immutable afterwards; per-request provider credentials override the
// default key pair field by field.
type Config struct {
	Environment    string
	ServiceName    string
	ServiceVersion string
	Addr           string

	// APIKey is the shared secret callers must present on mutating
	// endpoints.
	APIKey string

	// Default Razorpay credentials, used when the per-request
	// provider_config omits a field.
	DefaultKeyID     string
	DefaultKeySecret string

	// ProviderBaseURL overrides the Razorpay API base URL, mainly for
	// tests against a local stub.
	ProviderBaseURL string
	ProviderTimeout time.Duration

	// Webhook verification and downstream forwarding.
	WebhookSecret  string
	CallbackURL    string
	CallbackSecret string
	ForwardTimeout time.Duration

	RateLimit       int
	RateLimitWindow time.Duration

	TracingEnabled  bool
	TracingEndpoint string
	TracingProtocol string
	TracingSampling float64
}

// Load reads configuration from the environment. A .env file is honored
// when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:      getString("ENVIRONMENT", "development"),
		ServiceName:      getString("SERVICE_NAME", "razorgate"),
		ServiceVersion:   getString("SERVICE_VERSION", "1.0.0"),
		Addr:             ":" + getString("PORT", "3000"),
		APIKey:           os.Getenv("SSP_API_KEY"),
		DefaultKeyID:     os.Getenv("DEFAULT_RAZORPAY_KEY_ID"),
		DefaultKeySecret: os.Getenv("DEFAULT_RAZORPAY_KEY_SECRET"),
		ProviderBaseURL:  os.Getenv("RAZORPAY_BASE_URL"),
		ProviderTimeout:  getDuration("RAZORPAY_TIMEOUT", 30*time.Second),
		WebhookSecret:    os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		CallbackURL:      os.Getenv("SSP_CALLBACK_URL"),
		CallbackSecret:   os.Getenv("SSP_WEBHOOK_SECRET"),
		ForwardTimeout:   getDuration("SSP_CALLBACK_TIMEOUT", 10*time.Second),
		RateLimit:        getInt("RATE_LIMIT", 0),
		RateLimitWindow:  getDuration("RATE_LIMIT_WINDOW", time.Minute),
		TracingEnabled:   getBool("TRACING_ENABLED", false),
		TracingEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TracingProtocol:  os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"),
		TracingSampling:  getFloat("TRACING_SAMPLING_RATIO", 0.1),
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
