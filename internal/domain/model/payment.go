package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusExpired   PaymentStatus = "expired"
)

// paymentTransitions: pending is the only non-terminal payment state.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusExpired},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AmountTolerance absorbs floating-point rounding from upstream clients.
// A payment may differ from the transaction's final amount by at most this.
var AmountTolerance = decimal.RequireFromString("0.01")

// Payment is the 1:1 money record for a transaction.
type Payment struct {
	ID            string // ULID
	TransactionID string
	Amount        decimal.Decimal // must equal Transaction.FinalAmount within AmountTolerance
	ServiceFee    decimal.Decimal
	Method        string
	Status        PaymentStatus
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	StatusHistory []PaymentStatusEntry
}

// Total is what the gateway is asked to collect.
func (p *Payment) Total() decimal.Decimal {
	return p.Amount.Add(p.ServiceFee)
}

// PaymentStatusEntry is one append-only status-history record.
type PaymentStatusEntry struct {
	ID        string
	PaymentID string
	Status    PaymentStatus
	Note      string
	Actor     string
	At        time.Time
}
