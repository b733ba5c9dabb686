package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeProduct  TransactionType = "product"
	TransactionTypeWhatsapp TransactionType = "whatsapp_service"
	TransactionTypeMixed    TransactionType = "mixed_checkout"
)

type TransactionStatus string

const (
	TransactionStatusCreated    TransactionStatus = "created"
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusInProgress TransactionStatus = "in-progress"
	TransactionStatusSuccess    TransactionStatus = "success"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
	TransactionStatusExpired    TransactionStatus = "expired"
)

// transactionTransitions is the full (from -> allowed to) table. Anything
// not listed here is rejected, including all moves out of terminal states.
var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusCreated:    {TransactionStatusPending, TransactionStatusCancelled, TransactionStatusExpired},
	TransactionStatusPending:    {TransactionStatusInProgress, TransactionStatusCancelled, TransactionStatusExpired},
	TransactionStatusInProgress: {TransactionStatusSuccess},
}

// CanTransitionTo reports whether next is a legal move from s.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s TransactionStatus) IsTerminal() bool {
	return len(transactionTransitions[s]) == 0
}

// ChildStatus tracks a line-item sub-transaction.
type ChildStatus string

const (
	ChildStatusPending ChildStatus = "pending"
	ChildStatusSuccess ChildStatus = "success"
	ChildStatusFailed  ChildStatus = "failed"
	ChildStatusExpired ChildStatus = "expired"
)

// Transaction is the aggregate root for one checkout. Amounts are snapshots
// taken at creation and never recomputed.
type Transaction struct {
	ID             string // ULID: lexically ordered by creation time
	UserID         string
	Type           TransactionType
	Status         TransactionStatus
	Currency       Currency
	OriginalAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	VoucherID      *string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExpiresAt      time.Time

	Products        []ProductTransaction
	Addons          []AddonTransaction
	WhatsappService *WhatsappServiceTransaction
}

// ProductTransaction is a product line owned by a transaction. Start and end
// dates are stamped at activation, not at creation.
type ProductTransaction struct {
	ID            string
	TransactionID string
	ProductID     string
	Name          string
	UnitPrice     decimal.Decimal
	Quantity      int
	Status        ChildStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

// AddonTransaction is an addon line owned by a transaction.
type AddonTransaction struct {
	ID            string
	TransactionID string
	AddonID       string
	Name          string
	UnitPrice     decimal.Decimal
	Quantity      int
	Status        ChildStatus
}

// WhatsappServiceTransaction is a package purchase owned by a transaction.
// EndDate is computed at activation time from the entitlement rule, never at
// creation.
type WhatsappServiceTransaction struct {
	ID            string
	TransactionID string
	PackageID     string
	Duration      BillingDuration
	Amount        decimal.Decimal
	Status        ChildStatus
	StartDate     *time.Time
	EndDate       *time.Time
}
