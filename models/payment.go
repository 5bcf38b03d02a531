package models

import (
	"time"
)

// Intent statuses.
const (
	IntentPending    = "pending"
	IntentProcessing = "processing"
	IntentPaid       = "paid"
)

// Payment results carried in the status handoff URL.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// PaymentIntent is a registered amount awaiting payer action. It is
// immutable once created except for its status, and it expires with its
// redis TTL; nothing about it is stored durably.
type PaymentIntent struct {
	ID        string    `json:"payment_id"`
	Amount    string    `json:"amount"` // decimal string, two places
	Currency  string    `json:"currency"`
	Recipient string    `json:"recipient,omitempty"`
	GatewayID int64     `json:"gateway_id,omitempty"` // gateway variant only
	PayURL    string    `json:"pay_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CardDetails is the payer's card input as submitted, after the
// format-as-you-type transforms (number grouped in 4s, expiry MM/YY).
type CardDetails struct {
	Number string `json:"card_number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
	Name   string `json:"name"`
}

// Receipt is the read-only view rendered by the status screen. Reference
// is display-only: generated per request, not unique, not verifiable.
type Receipt struct {
	Result    string    `json:"result"`
	Amount    string    `json:"amount"`
	Recipient string    `json:"recipient"`
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
}

// SettlementNotification is the shape published on the notification
// channel when a gateway-side settlement completes.
type SettlementNotification struct {
	PaymentID string    `json:"payment_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
