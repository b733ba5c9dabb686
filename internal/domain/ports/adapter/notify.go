package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
)

// DeliveryErrorKind classifies outbound delivery failures so callers can map
// them to distinct user-facing messages.
type DeliveryErrorKind string

const (
	DeliveryTimeout DeliveryErrorKind = "timeout"
	DeliveryNetwork DeliveryErrorKind = "network"
	DeliveryAuth    DeliveryErrorKind = "auth"
	DeliveryConfig  DeliveryErrorKind = "config"
	DeliveryUnknown DeliveryErrorKind = "unknown"
)

// DeliveryError wraps an outbound failure with its classification.
type DeliveryError struct {
	Kind DeliveryErrorKind
	Op   string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ClassifyDelivery maps a raw transport error onto a DeliveryErrorKind.
// HTTP status classification is the caller's job; this covers dial/timeout
// level failures.
func ClassifyDelivery(err error) DeliveryErrorKind {
	if err == nil {
		return DeliveryUnknown
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return DeliveryTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return DeliveryTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return DeliveryNetwork
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return DeliveryTimeout
	}
	return DeliveryUnknown
}

// ClassifyStatus maps an HTTP status from the gateway onto a kind.
func ClassifyStatus(status int) DeliveryErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return DeliveryAuth
	case status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		return DeliveryConfig
	case status >= 500:
		return DeliveryNetwork
	}
	return DeliveryUnknown
}

// MessageSender delivers an outbound WhatsApp message through the external
// gateway service. Best effort: failures are classified, logged and never
// block the request path.
type MessageSender interface {
	SendMessage(ctx context.Context, to, text string) error
}
