package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cobrato/cobrato/internal/messaging/domain"
)

// WhatsApp delivers messages through a WhatsApp Business API gateway.
type WhatsApp struct {
	endpoint string
	client   *http.Client
}

// NewWhatsApp creates a WhatsApp sender pointed at the configured gateway.
func NewWhatsApp(endpoint string) *WhatsApp {
	return &WhatsApp{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WhatsApp) Channel() domain.Channel { return domain.ChannelWhatsApp }

type whatsappSendRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Body string `json:"body"`
}

func (w *WhatsApp) Send(ctx context.Context, setting domain.MessagingSetting, to Recipient, text string) error {
	if to.Phone == "" {
		return ErrNoRecipient
	}
	if w.endpoint == "" {
		return fmt.Errorf("whatsapp gateway endpoint not configured")
	}

	body, err := json.Marshal(whatsappSendRequest{From: setting.Sender, To: to.Phone, Body: text})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+setting.APIKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp API error: %s", resp.Status)
	}
	return nil
}
