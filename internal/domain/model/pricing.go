package model

import "github.com/shopspring/decimal"

// CartItem is a single requested line before pricing. Duration is required
// for whatsapp_package items and ignored otherwise.
type CartItem struct {
	Type     ItemType
	ItemID   string
	Quantity int
	Duration BillingDuration
}

// PricedLine is an immutable priced snapshot of a cart item.
type PricedLine struct {
	Type      ItemType
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Duration  BillingDuration
	LineTotal decimal.Decimal
}

// PricingResult carries the priced lines and their subtotal for one currency.
type PricingResult struct {
	Currency Currency
	Lines    []PricedLine
	Subtotal decimal.Decimal
}

// SubtotalFor sums line totals of a single item type.
func (r *PricingResult) SubtotalFor(t ItemType) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range r.Lines {
		if l.Type == t {
			sum = sum.Add(l.LineTotal)
		}
	}
	return sum
}
