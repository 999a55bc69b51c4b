package domain

import "time"

// ProviderConfig is the per-request credential bundle supplied by the
// caller. Empty fields fall back to the process-wide defaults; the bundle
// never outlives the request.
type ProviderConfig struct {
	KeyID     string `json:"razorpay_key_id"`
	KeySecret string `json:"razorpay_key_secret"`
}

// Customer carries optional contact details attached to a charge.
type Customer struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ChargeRequest struct {
	Amount         float64         `json:"amount"`
	Currency       string          `json:"currency"`
	Customer       *Customer       `json:"customer"`
	ProviderConfig *ProviderConfig `json:"provider_config"`
	Description    string          `json:"description"`
}

type ChargeResult struct {
	Success               bool              `json:"success"`
	TransactionID         string            `json:"transaction_id"`
	Status                string            `json:"status"`
	Amount                float64           `json:"amount"`
	Currency              string            `json:"currency"`
	ProviderTransactionID string            `json:"provider_transaction_id"`
	Metadata              map[string]string `json:"metadata"`
}

type RefundRequest struct {
	TransactionID  string          `json:"transaction_id"`
	Amount         float64         `json:"amount"`
	ProviderConfig *ProviderConfig `json:"provider_config"`
	Reason         string          `json:"reason"`
}

type RefundResult struct {
	Success               bool              `json:"success"`
	RefundID              string            `json:"refund_id"`
	Status                string            `json:"status"`
	Amount                float64           `json:"amount"`
	OriginalTransactionID string            `json:"original_transaction_id"`
	Metadata              map[string]string `json:"metadata"`
}

type TransactionResult struct {
	Success       bool              `json:"success"`
	TransactionID string            `json:"transaction_id"`
	Status        string            `json:"status"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Method        string            `json:"method"`
	CreatedAt     time.Time         `json:"created_at"`
	Metadata      map[string]string `json:"metadata"`
}

type PaymentIntentRequest struct {
	Amount         float64         `json:"amount"`
	Currency       string          `json:"currency"`
	Customer       *Customer       `json:"customer"`
	CallbackURL    string          `json:"callback_url"`
	ProviderConfig *ProviderConfig `json:"provider_config"`
}

type PaymentIntentResult struct {
	Success     bool              `json:"success"`
	IntentID    string            `json:"intent_id"`
	RedirectURL string            `json:"redirect_url"`
	QRCodeURL   *string           `json:"qr_code_url"`
	ExpiresAt   time.Time         `json:"expires_at"`
	Metadata    map[string]string `json:"metadata"`
}

// Capabilities describes what this adapter supports for discovery.
type Capabilities struct {
	SupportedMethods    []string `json:"supported_methods"`
	SupportedCurrencies []string `json:"supported_currencies"`
	Features            []string `json:"features"`
}
