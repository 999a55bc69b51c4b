package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/sspkit/razorgate/internal/config"
	"github.com/sspkit/razorgate/internal/gateway/adapters"
	gatewaydomain "github.com/sspkit/razorgate/internal/gateway/domain"
	"github.com/sspkit/razorgate/internal/money"
	"github.com/sspkit/razorgate/internal/webhook"
	"go.uber.org/zap/zaptest"
)

const testAPIKey = "ssp_test_key"

// stubGatewayService counts calls so tests can prove middleware rejects
// requests before any business logic runs.
type stubGatewayService struct {
	chargeCalls      int32
	refundCalls      int32
	transactionCalls int32
	intentCalls      int32

	lastTransactionCfg *gatewaydomain.ProviderConfig
	err                error
}

func (s *stubGatewayService) Charge(_ context.Context, req gatewaydomain.ChargeRequest) (*gatewaydomain.ChargeResult, error) {
	atomic.AddInt32(&s.chargeCalls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &gatewaydomain.ChargeResult{
		Success:       true,
		TransactionID: "order_test",
		Status:        "created",
		Amount:        req.Amount,
		Currency:      req.Currency,
	}, nil
}

func (s *stubGatewayService) Refund(_ context.Context, req gatewaydomain.RefundRequest) (*gatewaydomain.RefundResult, error) {
	atomic.AddInt32(&s.refundCalls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &gatewaydomain.RefundResult{Success: true, RefundID: "rfnd_test", Status: "processed", Amount: req.Amount}, nil
}

func (s *stubGatewayService) Transaction(_ context.Context, id string, cfg *gatewaydomain.ProviderConfig) (*gatewaydomain.TransactionResult, error) {
	atomic.AddInt32(&s.transactionCalls, 1)
	s.lastTransactionCfg = cfg
	if s.err != nil {
		return nil, s.err
	}
	return &gatewaydomain.TransactionResult{Success: true, TransactionID: id, Status: "captured"}, nil
}

func (s *stubGatewayService) PaymentIntent(_ context.Context, req gatewaydomain.PaymentIntentRequest) (*gatewaydomain.PaymentIntentResult, error) {
	atomic.AddInt32(&s.intentCalls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &gatewaydomain.PaymentIntentResult{Success: true, IntentID: "order_intent"}, nil
}

func (s *stubGatewayService) Capabilities() gatewaydomain.Capabilities {
	return gatewaydomain.Capabilities{
		SupportedMethods:    []string{"upi"},
		SupportedCurrencies: []string{"INR"},
		Features:            []string{"charge", "refund", "payment_intent", "webhooks"},
	}
}

type testFactory struct{}

func (testFactory) Provider() string { return "razorpay" }

func (testFactory) NewClient(cfg gatewaydomain.ClientConfig) (gatewaydomain.Client, error) {
	return nil, gatewaydomain.ErrInvalidConfig
}

func newTestServer(t *testing.T, cfg config.Config, svc gatewaydomain.Service, forwarder *webhook.Forwarder) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake.NewNode: %v", err)
	}
	if forwarder == nil {
		forwarder = webhook.NewForwarder(webhook.ForwarderOptions{Logger: zaptest.NewLogger(t)})
	}

	engine := gin.New()
	srv := NewServer(Params{
		Cfg:        cfg,
		Log:        zaptest.NewLogger(t),
		GenID:      node,
		GatewaySvc: svc,
		Registry:   adapters.NewRegistry(testFactory{}),
		Verifier:   webhook.NewVerifier(cfg.WebhookSecret),
		Forwarder:  forwarder,
	}, engine)
	srv.RegisterRoutes()
	return engine
}

func doJSON(engine *gin.Engine, method, path, apiKey string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(HeaderAPIKey, apiKey)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func urlEncode(value string) string {
	return url.QueryEscape(value)
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestAuthRunsBeforeValidation(t *testing.T) {
	svc := &stubGatewayService{}
	engine := newTestServer(t, config.Config{APIKey: testAPIKey}, svc, nil)

	// Invalid payload and missing key at once; the key must win.
	rec := doJSON(engine, http.MethodPost, "/charge", "", map[string]any{"amount": "not-a-number"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["error"] != true {
		t.Errorf("error flag = %v", resp["error"])
	}
	if svc.chargeCalls != 0 {
		t.Errorf("service called %d times before auth", svc.chargeCalls)
	}
}

func TestAuthRejectsWrongKey(t *testing.T) {
	svc := &stubGatewayService{}
	engine := newTestServer(t, config.Config{APIKey: testAPIKey}, svc, nil)

	rec := doJSON(engine, http.MethodPost, "/charge", "wrong", map[string]any{"amount": 100})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if svc.chargeCalls != 0 {
		t.Errorf("service called %d times with bad key", svc.chargeCalls)
	}
}

func TestAuthRejectsWhenNoKeyConfigured(t *testing.T) {
	svc := &stubGatewayService{}
	engine := newTestServer(t, config.Config{}, svc, nil)

	rec := doJSON(engine, http.MethodPost, "/charge", "anything", map[string]any{"amount": 100})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestChargeSuccess(t *testing.T) {
	svc := &stubGatewayService{}
	engine := newTestServer(t, config.Config{APIKey: testAPIKey}, svc, nil)

	rec := doJSON(engine, http.MethodPost, "/charge", testAPIKey, map[string]any{
		"amount":          100.00,
		"currency":        "INR",
		"provider_config": map[string]string{"razorpay_key_id": "k", "razorpay_key_secret": "s"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp gatewaydomain.ChargeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.TransactionID != "order_test" {
		t.Errorf("unexpected result %+v", resp)
	}
	if svc.chargeCalls != 1 {
		t.Errorf("service called %d times, want 1", svc.chargeCalls)
	}
}

func TestChargeMissingFieldsMessage(t *testing.T) {
	svc := &stubGatewayService{err: &money.MissingFieldsError{Fields: []string{"amount", "provider_config"}}}
	engine := newTestServer(t, config.Config{APIKey: testAPIKey}, svc, nil)

	rec := doJSON(engine, http.MethodPost, "/charge", testAPIKey, map[string]any{"currency": "INR"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "Missing required fields: amount, provider_config" {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestChargeProviderErrorPassthrough(t *testing.T) {
	svc := &stubGatewayService{err: &gatewaydomain.ProviderError{Code: "BAD_REQUEST_ERROR", Message: "amount exceeds limit"}}
	engine := newTestServer(t, config.Config{APIKey: testAPIKey}, svc, nil)

	rec := doJSON(engine, http.MethodPost, "/charge", testAPIKey, map[string]any{"amount": 100})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["code"] != "BAD_REQUEST_ERROR" || resp["message"] != "amount exceeds limit" {
		t.Errorf("body = %v", resp)
	}
}

func TestTransactionProviderConfigQuery(t *testing.T) {
	svc := &stubGatewayService{}
	engine := newTestServer(t, config.Config{APIKey: testAPIKey}, svc, nil)

	rec := doJSON(engine, http.MethodGet, "/transactions/pay_1", testAPIKey, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastTransactionCfg != nil {
		t.Errorf("config = %+v, want nil when query absent", svc.lastTransactionCfg)
	}

	cfgJSON := `{"razorpay_key_id":"k","razorpay_key_secret":"s"}`
	rec = doJSON(engine, http.MethodGet, "/transactions/pay_1?provider_config="+urlEncode(cfgJSON), testAPIKey, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.lastTransactionCfg == nil || svc.lastTransactionCfg.KeyID != "k" {
		t.Errorf("config = %+v", svc.lastTransactionCfg)
	}

	rec = doJSON(engine, http.MethodGet, "/transactions/pay_1?provider_config=not-json", testAPIKey, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 on malformed config", rec.Code)
	}
}

func TestHealthAndCapabilitiesUnauthenticated(t *testing.T) {
	engine := newTestServer(t, config.Config{APIKey: testAPIKey, ServiceVersion: "1.0.0"}, &stubGatewayService{}, nil)

	rec := doJSON(engine, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var health map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &health)
	if health["status"] != "ok" || health["version"] != "1.0.0" {
		t.Errorf("health = %v", health)
	}

	rec = doJSON(engine, http.MethodGet, "/capabilities", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("capabilities status = %d", rec.Code)
	}
	var caps gatewaydomain.Capabilities
	_ = json.Unmarshal(rec.Body.Bytes(), &caps)
	if len(caps.SupportedCurrencies) != 1 || caps.SupportedCurrencies[0] != "INR" {
		t.Errorf("capabilities = %+v", caps)
	}
}

func TestRateLimitExceeded(t *testing.T) {
	cfg := config.Config{APIKey: testAPIKey, RateLimit: 1, RateLimitWindow: time.Minute}
	engine := newTestServer(t, cfg, &stubGatewayService{}, nil)

	body := map[string]any{"amount": 100}
	if rec := doJSON(engine, http.MethodPost, "/charge", testAPIKey, body); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := doJSON(engine, http.MethodPost, "/charge", testAPIKey, body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	var forwarded int32
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&forwarded, 1)
	}))
	defer downstream.Close()

	cfg := config.Config{WebhookSecret: "whsec"}
	forwarder := webhook.NewForwarder(webhook.ForwarderOptions{URL: downstream.URL, Secret: "cbsec", Logger: zaptest.NewLogger(t)})
	engine := newTestServer(t, cfg, &stubGatewayService{}, forwarder)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(HeaderWebhookSignature, "deadbeef")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if atomic.LoadInt32(&forwarded) != 0 {
		t.Errorf("downstream called %d times on rejected signature", forwarded)
	}
}

func TestWebhookMissingSignature(t *testing.T) {
	engine := newTestServer(t, config.Config{WebhookSecret: "whsec"}, &stubGatewayService{}, nil)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWebhookUnknownProvider(t *testing.T) {
	engine := newTestServer(t, config.Config{WebhookSecret: "whsec"}, &stubGatewayService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestWebhookForwardsVerifiedEvent(t *testing.T) {
	var envelope webhook.Envelope
	var gotSecret string
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Webhook-Secret")
		_ = json.NewDecoder(r.Body).Decode(&envelope)
	}))
	defer downstream.Close()

	cfg := config.Config{WebhookSecret: "whsec"}
	forwarder := webhook.NewForwarder(webhook.ForwarderOptions{URL: downstream.URL, Secret: "cbsec", Logger: zaptest.NewLogger(t)})
	engine := newTestServer(t, cfg, &stubGatewayService{}, forwarder)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_777"}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(HeaderWebhookSignature, signBody("whsec", body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("body = %v", resp)
	}

	if gotSecret != "cbsec" {
		t.Errorf("X-Webhook-Secret = %q", gotSecret)
	}
	if envelope.Provider != "razorpay-upi" || envelope.Event != "payment.captured" {
		t.Errorf("envelope = %+v", envelope)
	}
	if envelope.TransactionID != "pay_777" {
		t.Errorf("transaction id = %q", envelope.TransactionID)
	}
}

func TestWebhookForwardFailureStillOk(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer downstream.Close()

	cfg := config.Config{WebhookSecret: "whsec"}
	forwarder := webhook.NewForwarder(webhook.ForwarderOptions{URL: downstream.URL, Secret: "cbsec", Logger: zaptest.NewLogger(t)})
	engine := newTestServer(t, cfg, &stubGatewayService{}, forwarder)

	body := []byte(`{"event":"payment.failed","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(HeaderWebhookSignature, signBody("whsec", body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite forward failure", rec.Code)
	}
}

func TestWebhookUnconfiguredForwarderSkips(t *testing.T) {
	engine := newTestServer(t, config.Config{WebhookSecret: "whsec"}, &stubGatewayService{}, nil)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(HeaderWebhookSignature, signBody("whsec", body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
