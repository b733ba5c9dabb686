package model

import "time"

const EntitlementStatusActive = "active"

// Entitlement is the (customer, package) service record. It is the only
// contended row in the system; all writes go through the activation engine.
type Entitlement struct {
	ID         string
	CustomerID string
	PackageID  string
	ExpiredAt  time.Time
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Expired reports whether the entitlement lapsed before now.
func (e *Entitlement) Expired(now time.Time) bool {
	return !e.ExpiredAt.After(now)
}

// NextExpiry applies the extend-vs-fresh rule: an unexpired entitlement is
// extended from its current expiry, otherwise the new period starts at now.
func NextExpiry(existing *Entitlement, d BillingDuration, now time.Time) time.Time {
	if existing != nil && !existing.Expired(now) {
		return d.AddTo(existing.ExpiredAt)
	}
	return d.AddTo(now)
}
