package model

import (
	"time"

	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain"
)

type Currency string

const (
	CurrencyIDR Currency = "idr"
	CurrencyUSD Currency = "usd"
)

func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case CurrencyIDR, CurrencyUSD:
		return Currency(s), nil
	}
	return "", domain.ErrInvalidArgument
}

// ItemType discriminates cart lines and child transaction rows.
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeAddon   ItemType = "addon"
	ItemTypePackage ItemType = "whatsapp_package"
)

// BillingDuration is the purchasable period for a WhatsApp package.
type BillingDuration string

const (
	DurationMonth BillingDuration = "month"
	DurationYear  BillingDuration = "year"
)

func ParseBillingDuration(s string) (BillingDuration, error) {
	switch BillingDuration(s) {
	case DurationMonth, DurationYear:
		return BillingDuration(s), nil
	}
	return "", domain.ErrInvalidArgument
}

// AddTo advances t by one calendar month or year.
func (d BillingDuration) AddTo(t time.Time) time.Time {
	if d == DurationYear {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

// Product is a one-off purchasable catalog entry priced per currency.
type Product struct {
	ID        string
	Name      string
	PriceIDR  decimal.Decimal
	PriceUSD  decimal.Decimal
	Active    bool
	CreatedAt time.Time
}

func (p *Product) Price(cur Currency) decimal.Decimal {
	if cur == CurrencyUSD {
		return p.PriceUSD
	}
	return p.PriceIDR
}

// Addon is an optional extra attached to a checkout, priced per currency.
type Addon struct {
	ID        string
	Name      string
	PriceIDR  decimal.Decimal
	PriceUSD  decimal.Decimal
	Active    bool
	CreatedAt time.Time
}

func (a *Addon) Price(cur Currency) decimal.Decimal {
	if cur == CurrencyUSD {
		return a.PriceUSD
	}
	return a.PriceIDR
}

// WhatsAppPackage is a messaging-service subscription package.
// Packages are priced in IDR only; USD prices are derived via a fixed rate.
type WhatsAppPackage struct {
	ID            string
	Name          string
	PriceMonthIDR decimal.Decimal
	PriceYearIDR  decimal.Decimal
	MaxSessions   int
	Active        bool
	CreatedAt     time.Time
}

// PriceIDRFor returns the IDR list price for the given duration.
func (w *WhatsAppPackage) PriceIDRFor(d BillingDuration) decimal.Decimal {
	if d == DurationYear {
		return w.PriceYearIDR
	}
	return w.PriceMonthIDR
}
