package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain/model"
)

// PaymentGateway is the hex port for payment providers. Implementations must
// not hold locks across deferred callbacks: confirmation always re-enters
// through the payment use case.
type PaymentGateway interface {
	Name() string

	// CreateCharge registers the charge with the provider and returns a
	// provider reference. The provider later confirms (or fails) the payment
	// asynchronously via the webhook path.
	CreateCharge(ctx context.Context, paymentID string, amount decimal.Decimal, currency model.Currency, method string) (ref string, err error)
}
