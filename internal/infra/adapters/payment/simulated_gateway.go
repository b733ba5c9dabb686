// File: internal/infra/adapters/payment/simulated_gateway.go
package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*SimulatedGateway)(nil)

// ConfirmFunc re-enters the payment flow once the provider "settles" a
// charge. Wired to the webhook path at startup so the gateway never imports
// the use case layer.
type ConfirmFunc func(ctx context.Context, paymentID string)

// SimulatedGateway accepts every charge and confirms it after a fixed delay,
// mimicking an async provider. The deferred callback holds no locks: it
// re-enters through the same path a real webhook would.
type SimulatedGateway struct {
	mu      sync.Mutex
	seq     int64
	delay   time.Duration
	confirm ConfirmFunc
	timers  []*time.Timer
}

func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &SimulatedGateway{delay: delay}
}

func (g *SimulatedGateway) Name() string { return "simulated" }

// SetConfirmFunc wires the settle callback. Charges created before this is
// set are accepted but never confirmed.
func (g *SimulatedGateway) SetConfirmFunc(fn ConfirmFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirm = fn
}

func (g *SimulatedGateway) CreateCharge(ctx context.Context, paymentID string, amount decimal.Decimal, currency model.Currency, method string) (string, error) {
	g.mu.Lock()
	g.seq++
	ref := fmt.Sprintf("sim-%d", g.seq)
	confirm := g.confirm

	if confirm != nil {
		t := time.AfterFunc(g.delay, func() {
			confirm(context.Background(), paymentID)
		})
		g.timers = append(g.timers, t)
	}
	g.mu.Unlock()

	return ref, nil
}

// Close stops any pending confirmations. Test hygiene.
func (g *SimulatedGateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
}
