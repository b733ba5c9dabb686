// File: internal/infra/notify/whatsapp_sender.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"whatsapp-commerce-billing/internal/config"
	"whatsapp-commerce-billing/internal/domain/ports/adapter"
)

// WhatsAppSender delivers messages through the external WhatsApp gateway's
// HTTP API. All failures come back as *adapter.DeliveryError so callers can
// branch on the kind.
type WhatsAppSender struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ adapter.MessageSender = (*WhatsAppSender)(nil)

func NewWhatsAppSender(cfg *config.NotifyConfig) *WhatsAppSender {
	return &WhatsAppSender{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

func (s *WhatsAppSender) SendMessage(ctx context.Context, to, text string) error {
	if s.baseURL == "" {
		return &adapter.DeliveryError{Kind: adapter.DeliveryConfig, Op: "notify.send", Err: fmt.Errorf("gateway base url not configured")}
	}

	body, err := json.Marshal(sendMessageRequest{To: to, Text: text})
	if err != nil {
		return &adapter.DeliveryError{Kind: adapter.DeliveryUnknown, Op: "notify.send", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return &adapter.DeliveryError{Kind: adapter.DeliveryConfig, Op: "notify.send", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return &adapter.DeliveryError{Kind: adapter.ClassifyDelivery(err), Op: "notify.send", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &adapter.DeliveryError{
		Kind: adapter.ClassifyStatus(resp.StatusCode),
		Op:   "notify.send",
		Err:  fmt.Errorf("gateway status %d: %s", resp.StatusCode, preview),
	}
}
