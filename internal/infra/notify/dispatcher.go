// File: internal/infra/notify/dispatcher.go
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"whatsapp-commerce-billing/internal/domain/ports/adapter"
	"whatsapp-commerce-billing/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Message is one outbound notification. Kind labels the metric series
// ("payment", "activation", ...), never the content.
type Message struct {
	To   string
	Text string
	Kind string
}

// Dispatcher pushes messages through a bounded queue of workers so the
// request path never blocks on gateway latency. Delivery is best effort:
// a message that exhausts its retries is logged and dropped.
type Dispatcher struct {
	sender  adapter.MessageSender
	jobs    chan Message
	quit    chan struct{}
	wg      sync.WaitGroup
	workers int
	retries int
	log     *zerolog.Logger
}

func NewDispatcher(sender adapter.MessageSender, workers, retries int, logger *zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	if retries <= 0 {
		retries = 3
	}
	l := logger.With().Str("component", "NotifyDispatcher").Logger()
	return &Dispatcher{
		sender:  sender,
		jobs:    make(chan Message, workers*8),
		quit:    make(chan struct{}),
		workers: workers,
		retries: retries,
		log:     &l,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-d.quit:
					return
				case msg := <-d.jobs:
					d.deliver(ctx, msg)
				}
			}
		}()
	}
}

func (d *Dispatcher) Stop() {
	close(d.quit)
	d.wg.Wait()
}

// Submit enqueues a message. When the queue is saturated the message is
// dropped rather than back-pressuring the caller.
func (d *Dispatcher) Submit(msg Message) error {
	select {
	case d.jobs <- msg:
		return nil
	default:
		metrics.IncMessageDelivery(msg.Kind, "dropped")
		return errors.New("notify queue full")
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	var lastErr error
	for attempt := 0; attempt < d.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}

		sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		err := d.sender.SendMessage(sendCtx, msg.To, msg.Text)
		cancel()
		if err == nil {
			metrics.IncMessageDelivery(msg.Kind, "sent")
			return
		}
		lastErr = err

		// Auth and config failures will not heal on retry.
		var de *adapter.DeliveryError
		if errors.As(err, &de) && (de.Kind == adapter.DeliveryAuth || de.Kind == adapter.DeliveryConfig) {
			break
		}
	}
	metrics.IncMessageDelivery(msg.Kind, "failed")
	d.log.Warn().Err(lastErr).Str("kind", msg.Kind).Msg("notification delivery failed")
}
