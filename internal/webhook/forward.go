package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sspkit/razorgate/internal/observability/tracing"
	"go.uber.org/zap"
)

// ErrForwardingUnconfigured means no downstream URL is set; forwarding is
// skipped, which is not a failure.
var ErrForwardingUnconfigured = errors.New("forwarding_unconfigured")

// Envelope is the normalized event relayed downstream.
type Envelope struct {
	Provider      string          `json:"provider"`
	Event         string          `json:"event"`
	Payload       json.RawMessage `json:"payload"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// Forwarder relays verified events to the central callback endpoint.
// Delivery is best effort: failures are logged by the caller and never
// change the response returned to the processor.
type Forwarder struct {
	httpClient *http.Client
	url        string
	secret     string
	log        *zap.Logger
}

type ForwarderOptions struct {
	URL     string
	Secret  string
	Timeout time.Duration
	Logger  *zap.Logger
}

func NewForwarder(opts ForwarderOptions) *Forwarder {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Forwarder{
		httpClient: tracing.WrapHTTPClient(&http.Client{Timeout: timeout}),
		url:        opts.URL,
		secret:     opts.Secret,
		log:        log.Named("webhook.forwarder"),
	}
}

// Configured reports whether a downstream URL is set.
func (f *Forwarder) Configured() bool {
	return f != nil && f.url != ""
}

// Forward POSTs the envelope to the callback URL with the forwarding
// shared-secret header. Exactly one attempt is made.
func (f *Forwarder) Forward(ctx context.Context, envelope Envelope) error {
	if !f.Configured() {
		return ErrForwardingUnconfigured
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", f.secret)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("forward webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("forward webhook: downstream returned %d", resp.StatusCode)
	}

	f.log.Info("webhook forwarded",
		zap.String("provider", envelope.Provider),
		zap.String("event", envelope.Event),
	)
	return nil
}
