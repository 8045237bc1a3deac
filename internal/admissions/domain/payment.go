package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// PaymentType distinguishes the two fees the platform collects.
type PaymentType string

const (
	PaymentTypeApplicationFee  PaymentType = "application_fee"
	PaymentTypeIssueResolution PaymentType = "issue_resolution"
)

// PaymentStatus tracks the gateway outcome for a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// ValidPaymentStatus reports whether a gateway callback status is known.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// Payment links one application and one user to a fee. Amount is fixed at
// creation time: the program's fee for application_fee, a configured
// constant for issue_resolution.
type Payment struct {
	ID            string        `json:"id" db:"id"`
	PaymentID     string        `json:"payment_id" db:"payment_id"`
	ApplicationID string        `json:"application_id" db:"application_id"`
	UserID        string        `json:"user_id" db:"user_id"`
	PaymentType   PaymentType   `json:"payment_type" db:"payment_type"`
	Amount        float64       `json:"amount" db:"amount"`
	Status        PaymentStatus `json:"status" db:"status"`
	TransactionID *string       `json:"transaction_id,omitempty" db:"transaction_id"`
	PaymentData   JSONMap       `json:"payment_data,omitempty" db:"payment_data"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// NewPaymentID generates a payment identifier in the form
// PAY-<epoch-ms>-<6-digit-random>.
func NewPaymentID(now time.Time) string {
	return fmt.Sprintf("PAY-%d-%06d", now.UnixMilli(), rand.IntN(1000000))
}

// GatewayOrder is the handoff passed to the external payment gateway. The
// core never talks to the gateway directly.
type GatewayOrder struct {
	Key      string `json:"key"`
	Amount   int64  `json:"amount"` // smallest currency unit (paise)
	Currency string `json:"currency"`
	OrderID  string `json:"orderId"`
}

// NewGatewayOrder builds the gateway handoff for a pending payment.
func NewGatewayOrder(key, currency string, p *Payment) GatewayOrder {
	return GatewayOrder{
		Key:      key,
		Amount:   int64(p.Amount * 100),
		Currency: currency,
		OrderID:  p.PaymentID,
	}
}
