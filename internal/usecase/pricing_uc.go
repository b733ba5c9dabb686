// File: internal/usecase/pricing_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ PricingUseCase = (*pricingUC)(nil)

// PricingUseCase resolves canonical unit prices for a cart and computes the
// subtotal. Read-only: quoting has no side effects.
type PricingUseCase interface {
	Quote(ctx context.Context, items []model.CartItem, currency model.Currency) (*model.PricingResult, error)
}

type pricingUC struct {
	catalog repository.CatalogRepository
	// IDR per 1 USD. WhatsApp packages are priced in IDR only and converted
	// with this fixed approximate rate when quoting in USD.
	usdRate decimal.Decimal
	log     *zerolog.Logger
}

func NewPricingUseCase(catalog repository.CatalogRepository, usdRate decimal.Decimal, logger *zerolog.Logger) *pricingUC {
	l := logger.With().Str("component", "PricingUseCase").Logger()
	return &pricingUC{catalog: catalog, usdRate: usdRate, log: &l}
}

func (u *pricingUC) Quote(ctx context.Context, items []model.CartItem, currency model.Currency) (*model.PricingResult, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	res := &model.PricingResult{Currency: currency, Subtotal: decimal.Zero}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, domain.ErrInvalidArgument
		}
		line, err := u.priceItem(ctx, it, currency)
		if err != nil {
			return nil, err
		}
		res.Lines = append(res.Lines, *line)
		res.Subtotal = res.Subtotal.Add(line.LineTotal)
	}
	return res, nil
}

func (u *pricingUC) priceItem(ctx context.Context, it model.CartItem, currency model.Currency) (*model.PricedLine, error) {
	line := &model.PricedLine{Type: it.Type, ItemID: it.ItemID, Quantity: it.Quantity, Duration: it.Duration}

	switch it.Type {
	case model.ItemTypeProduct:
		p, err := u.catalog.FindProduct(ctx, it.ItemID)
		if err != nil {
			return nil, domain.ErrItemNotFound
		}
		line.Name = p.Name
		line.UnitPrice = p.Price(currency)

	case model.ItemTypeAddon:
		a, err := u.catalog.FindAddon(ctx, it.ItemID)
		if err != nil {
			return nil, domain.ErrItemNotFound
		}
		line.Name = a.Name
		line.UnitPrice = a.Price(currency)

	case model.ItemTypePackage:
		if it.Duration == "" {
			return nil, domain.ErrMissingDuration
		}
		w, err := u.catalog.FindPackage(ctx, it.ItemID)
		if err != nil {
			return nil, domain.ErrItemNotFound
		}
		line.Name = w.Name
		price := w.PriceIDRFor(it.Duration)
		if currency == model.CurrencyUSD {
			price = price.Div(u.usdRate).Round(2)
		}
		line.UnitPrice = price

	default:
		return nil, domain.ErrInvalidArgument
	}

	line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	return line, nil
}
