package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sspkit/razorgate/internal/gateway/domain"
	"github.com/sspkit/razorgate/internal/observability/tracing"
	"go.uber.org/zap"
)

const (
	// ProviderName identifies this adapter in the factory registry.
	ProviderName = "razorpay"

	defaultBaseURL = "https://api.razorpay.com/v1"
	defaultTimeout = 30 * time.Second
)

// Options configures the factory. Default credentials apply only to fields
// the per-request ProviderConfig leaves empty.
type Options struct {
	BaseURL          string
	Timeout          time.Duration
	DefaultKeyID     string
	DefaultKeySecret string
	Logger           *zap.Logger
}

// Factory builds request-scoped Razorpay clients. The HTTP transport is
// shared; credentials live on the client and never outlive the request.
type Factory struct {
	baseURL    string
	httpClient *http.Client
	defaults   domain.ProviderConfig
	log        *zap.Logger
}

func NewFactory(opts Options) *Factory {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{
		baseURL:    baseURL,
		httpClient: tracing.WrapHTTPClient(&http.Client{Timeout: timeout}),
		defaults:   domain.ProviderConfig{KeyID: opts.DefaultKeyID, KeySecret: opts.DefaultKeySecret},
		log:        log.Named("razorpay"),
	}
}

func (f *Factory) Provider() string { return ProviderName }

func (f *Factory) NewClient(cfg domain.ClientConfig) (domain.Client, error) {
	keyID := strings.TrimSpace(cfg.Config.KeyID)
	if keyID == "" {
		keyID = f.defaults.KeyID
	}
	keySecret := strings.TrimSpace(cfg.Config.KeySecret)
	if keySecret == "" {
		keySecret = f.defaults.KeySecret
	}
	if keyID == "" || keySecret == "" {
		return nil, domain.ErrInvalidConfig
	}
	return &Client{
		baseURL:    f.baseURL,
		httpClient: f.httpClient,
		keyID:      keyID,
		keySecret:  keySecret,
		log:        f.log,
	}, nil
}

// Client talks to the Razorpay REST API with basic auth.
type Client struct {
	baseURL    string
	httpClient *http.Client
	keyID      string
	keySecret  string
	log        *zap.Logger
}

func (c *Client) CreateCharge(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*domain.ProviderCharge, error) {
	var order orderResponse
	err := c.do(ctx, http.MethodPost, "/orders", orderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	}, &order, "Failed to process charge")
	if err != nil {
		return nil, err
	}
	return &domain.ProviderCharge{
		ID:        order.ID,
		Status:    order.Status,
		Receipt:   order.Receipt,
		CreatedAt: time.Unix(order.CreatedAt, 0).UTC(),
	}, nil
}

func (c *Client) CreateRefund(ctx context.Context, transactionID string, amountMinor int64, notes map[string]string) (*domain.ProviderRefund, error) {
	var refund refundResponse
	path := "/payments/" + url.PathEscape(transactionID) + "/refund"
	err := c.do(ctx, http.MethodPost, path, refundRequest{
		Amount: amountMinor,
		Notes:  notes,
	}, &refund, "Failed to process refund")
	if err != nil {
		return nil, err
	}
	return &domain.ProviderRefund{
		ID:          refund.ID,
		Status:      refund.Status,
		AmountMinor: refund.Amount,
		Currency:    refund.Currency,
		CreatedAt:   time.Unix(refund.CreatedAt, 0).UTC(),
	}, nil
}

func (c *Client) FetchTransaction(ctx context.Context, id string) (*domain.ProviderTransaction, error) {
	var payment paymentResponse
	path := "/payments/" + url.PathEscape(id)
	err := c.do(ctx, http.MethodGet, path, nil, &payment, "Failed to fetch transaction")
	if err != nil {
		return nil, err
	}
	return &domain.ProviderTransaction{
		ID:          payment.ID,
		Status:      payment.Status,
		AmountMinor: payment.Amount,
		Currency:    payment.Currency,
		Method:      payment.Method,
		Email:       payment.Email,
		Contact:     payment.Contact,
		OrderID:     payment.OrderID,
		CreatedAt:   time.Unix(payment.CreatedAt, 0).UTC(),
	}, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*domain.ProviderIntent, error) {
	var order orderResponse
	err := c.do(ctx, http.MethodPost, "/orders", orderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	}, &order, "Failed to create payment intent")
	if err != nil {
		return nil, err
	}
	return &domain.ProviderIntent{
		ID:        order.ID,
		Status:    order.Status,
		CreatedAt: time.Unix(order.CreatedAt, 0).UTC(),
	}, nil
}

// do issues one request. No retries: transient processor failures surface
// to the caller, whose retry policy governs.
func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &domain.ProviderError{Message: fallback}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &domain.ProviderError{Message: fallback}
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("razorpay request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &domain.ProviderError{Message: fallback}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("razorpay response read failed", zap.String("path", path), zap.Error(err))
		return &domain.ProviderError{Message: fallback}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.apiError(path, resp.StatusCode, raw, fallback)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Error("razorpay response decode failed", zap.String("path", path), zap.Error(err))
		return &domain.ProviderError{Message: fallback}
	}
	return nil
}

func (c *Client) apiError(path string, status int, raw []byte, fallback string) error {
	var decoded errorResponse
	_ = json.Unmarshal(raw, &decoded)

	message := strings.TrimSpace(decoded.Error.Description)
	if message == "" {
		message = fallback
	}
	c.log.Error("razorpay returned an error",
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("code", decoded.Error.Code),
		zap.String("description", decoded.Error.Description),
	)
	return &domain.ProviderError{Code: decoded.Error.Code, Message: message}
}
