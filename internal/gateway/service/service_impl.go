package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sspkit/razorgate/internal/clock"
	"github.com/sspkit/razorgate/internal/gateway/adapters"
	"github.com/sspkit/razorgate/internal/gateway/domain"
	"github.com/sspkit/razorgate/internal/money"
	"github.com/sspkit/razorgate/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultProvider = "razorpay"

	// checkoutURLFormat is the fixed processor checkout template the
	// redirect URL is derived from.
	checkoutURLFormat = "https://api.razorpay.com/v1/checkout/%s"

	// intentTTL is the fixed payment-intent expiry policy. It is not
	// processor-derived.
	intentTTL = 24 * time.Hour
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Registry *adapters.Registry
}

// Service orchestrates each request: validate, normalize to minor units,
// invoke the provider client once, normalize the response. It holds no
// request state and no shared client instance.
type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	registry *adapters.Registry
}

func NewService(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("gateway.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		registry: p.Registry,
	}
}

func (s *Service) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	if err := money.RequireFields(
		money.Field{Name: "amount", Value: req.Amount},
		money.Field{Name: "currency", Value: req.Currency},
		money.Field{Name: "provider_config", Value: req.ProviderConfig},
	); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	amountMinor, err := money.ToMinorUnits(req.Amount, currency)
	if err != nil {
		return nil, err
	}

	client, err := s.newClient(req.ProviderConfig)
	if err != nil {
		return nil, err
	}

	notes := map[string]string{}
	if req.Customer != nil {
		if req.Customer.Email != "" {
			notes["customer_email"] = req.Customer.Email
		}
		if req.Customer.Phone != "" {
			notes["customer_phone"] = req.Customer.Phone
		}
	}
	if req.Description != "" {
		notes["description"] = req.Description
	}

	receipt := "receipt_" + s.genID.Generate().String()
	order, err := client.CreateCharge(ctx, amountMinor, currency, receipt, notes)
	if err != nil {
		metrics.Gateway().IncProviderCall("charge", "error")
		return nil, err
	}
	metrics.Gateway().IncProviderCall("charge", "success")

	return &domain.ChargeResult{
		Success:               true,
		TransactionID:         order.ID,
		Status:                order.Status,
		Amount:                req.Amount,
		Currency:              currency,
		ProviderTransactionID: order.ID,
		Metadata: map[string]string{
			"receipt":    order.Receipt,
			"created_at": order.CreatedAt.Format(time.RFC3339),
		},
	}, nil
}

func (s *Service) Refund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	if err := money.RequireFields(
		money.Field{Name: "transaction_id", Value: req.TransactionID},
		money.Field{Name: "amount", Value: req.Amount},
		money.Field{Name: "provider_config", Value: req.ProviderConfig},
	); err != nil {
		return nil, err
	}

	amountMinor, err := money.ToMinorUnits(req.Amount, "INR")
	if err != nil {
		return nil, err
	}

	client, err := s.newClient(req.ProviderConfig)
	if err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = "Refund requested"
	}

	refund, err := client.CreateRefund(ctx, req.TransactionID, amountMinor, map[string]string{"reason": reason})
	if err != nil {
		metrics.Gateway().IncProviderCall("refund", "error")
		return nil, err
	}
	metrics.Gateway().IncProviderCall("refund", "success")

	return &domain.RefundResult{
		Success:               true,
		RefundID:              refund.ID,
		Status:                refund.Status,
		Amount:                money.ToMajorUnits(refund.AmountMinor, refund.Currency),
		OriginalTransactionID: req.TransactionID,
		Metadata: map[string]string{
			"created_at": refund.CreatedAt.Format(time.RFC3339),
		},
	}, nil
}

func (s *Service) Transaction(ctx context.Context, id string, cfg *domain.ProviderConfig) (*domain.TransactionResult, error) {
	client, err := s.newClient(cfg)
	if err != nil {
		return nil, err
	}

	payment, err := client.FetchTransaction(ctx, id)
	if err != nil {
		metrics.Gateway().IncProviderCall("transaction", "error")
		return nil, err
	}
	metrics.Gateway().IncProviderCall("transaction", "success")

	return &domain.TransactionResult{
		Success:       true,
		TransactionID: payment.ID,
		Status:        payment.Status,
		Amount:        money.ToMajorUnits(payment.AmountMinor, payment.Currency),
		Currency:      payment.Currency,
		Method:        payment.Method,
		CreatedAt:     payment.CreatedAt,
		Metadata: map[string]string{
			"email":    payment.Email,
			"contact":  payment.Contact,
			"order_id": payment.OrderID,
		},
	}, nil
}

func (s *Service) PaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntentResult, error) {
	if err := money.RequireFields(
		money.Field{Name: "amount", Value: req.Amount},
		money.Field{Name: "currency", Value: req.Currency},
		money.Field{Name: "provider_config", Value: req.ProviderConfig},
	); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	amountMinor, err := money.ToMinorUnits(req.Amount, currency)
	if err != nil {
		return nil, err
	}

	client, err := s.newClient(req.ProviderConfig)
	if err != nil {
		return nil, err
	}

	notes := map[string]string{}
	if req.CallbackURL != "" {
		notes["callback_url"] = req.CallbackURL
	}
	if req.Customer != nil && req.Customer.Email != "" {
		notes["customer_email"] = req.Customer.Email
	}

	receipt := "intent_" + s.genID.Generate().String()
	intent, err := client.CreatePaymentIntent(ctx, amountMinor, currency, receipt, notes)
	if err != nil {
		metrics.Gateway().IncProviderCall("payment_intent", "error")
		return nil, err
	}
	metrics.Gateway().IncProviderCall("payment_intent", "success")

	return &domain.PaymentIntentResult{
		Success:     true,
		IntentID:    intent.ID,
		RedirectURL: fmt.Sprintf(checkoutURLFormat, intent.ID),
		QRCodeURL:   nil, // generated dynamically by the processor
		ExpiresAt:   s.clock.Now().UTC().Add(intentTTL),
		Metadata: map[string]string{
			"order_id": intent.ID,
		},
	}, nil
}

func (s *Service) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		SupportedMethods:    []string{"upi", "cards", "netbanking", "wallets"},
		SupportedCurrencies: []string{"INR"},
		Features:            []string{"charge", "refund", "payment_intent", "webhooks"},
	}
}

// newClient builds a request-scoped provider client. A nil config is valid
// and resolves entirely from process defaults.
func (s *Service) newClient(cfg *domain.ProviderConfig) (domain.Client, error) {
	bound := domain.ProviderConfig{}
	if cfg != nil {
		bound = *cfg
	}
	return s.registry.NewClient(defaultProvider, domain.ClientConfig{
		Provider: defaultProvider,
		Config:   bound,
	})
}
