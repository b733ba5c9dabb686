package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway to use in tests. It
// records charges and never confirms them.
type NoopPaymentGateway struct {
	mu      sync.Mutex
	seq     int64
	charges map[string]decimal.Decimal // paymentID -> amount
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{
		charges: make(map[string]decimal.Decimal),
	}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) CreateCharge(ctx context.Context, paymentID string, amount decimal.Decimal, currency model.Currency, method string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.charges[paymentID] = amount
	return fmt.Sprintf("noop-%d", g.seq), nil
}

// Charged reports whether a charge was registered for the payment.
func (g *NoopPaymentGateway) Charged(paymentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.charges[paymentID]
	return ok
}
