package domain

import "context"

// Service is the adapter facade. Every operation validates its request,
// normalizes amounts to minor units, invokes the provider client exactly
// once, and normalizes the response. No operation retries.
type Service interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	Transaction(ctx context.Context, id string, cfg *ProviderConfig) (*TransactionResult, error)
	PaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntentResult, error)
	Capabilities() Capabilities
}
