package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode enumerates the supported payment modes.
type PaymentMode string

const (
	PaymentModeCOD    PaymentMode = "cod"
	PaymentModeOnline PaymentMode = "online"
)

// PaymentStatus enumerates the states of a payment record.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is the one-to-one companion record of an order. TransactionID is
// set for online payments only and is unique when present.
type Payment struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Mode          PaymentMode     `json:"payment_mode"`
	Status        PaymentStatus   `json:"status"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InitiatePaymentRequest represents the customer reaching the payment step.
type InitiatePaymentRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Mode    string `json:"payment_mode" validate:"required,oneof=cod online"`
}
