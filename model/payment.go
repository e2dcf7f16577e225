// model/payment.go
package model

import "time"

type PaymentStatus string

const (
	PaymentNone      PaymentStatus = "NONE"
	PaymentCreated   PaymentStatus = "CREATED"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// DepositPayment tracks one payment-intent lifecycle for a refundable deposit.
// Status only moves forward: CREATED -> SUCCEEDED -> REFUNDED. Rows are never
// deleted; the most recent row per (user, item) is authoritative for status.
type DepositPayment struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	RentalItemID    int64         `json:"rental_item_id"`
	PaymentIntentID string        `json:"payment_intent_id"`
	Amount          int64         `json:"amount"`
	Status          PaymentStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	SucceededAt     *time.Time    `json:"succeeded_at,omitempty"`
	RefundedAt      *time.Time    `json:"refunded_at,omitempty"`
	RefundID        *string       `json:"refund_id,omitempty"`
}
