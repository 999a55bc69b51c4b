package domain

import (
	"context"
	"time"
)

// Client is the provider-side capability set. One implementation exists per
// payment processor; a fresh client is constructed per request so caller
// credentials never leak across requests.
type Client interface {
	CreateCharge(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*ProviderCharge, error)
	CreateRefund(ctx context.Context, transactionID string, amountMinor int64, notes map[string]string) (*ProviderRefund, error)
	FetchTransaction(ctx context.Context, id string) (*ProviderTransaction, error)
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*ProviderIntent, error)
}

// ProviderCharge is the processor's view of a created order/charge.
type ProviderCharge struct {
	ID        string
	Status    string
	Receipt   string
	CreatedAt time.Time
}

type ProviderRefund struct {
	ID          string
	Status      string
	AmountMinor int64
	Currency    string
	CreatedAt   time.Time
}

type ProviderTransaction struct {
	ID          string
	Status      string
	AmountMinor int64
	Currency    string
	Method      string
	Email       string
	Contact     string
	OrderID     string
	CreatedAt   time.Time
}

type ProviderIntent struct {
	ID        string
	Status    string
	CreatedAt time.Time
}

// ClientConfig binds a provider client to one request's credentials.
type ClientConfig struct {
	Provider string
	Config   ProviderConfig
}

// Factory constructs clients for a single provider.
type Factory interface {
	Provider() string
	NewClient(cfg ClientConfig) (Client, error)
}
