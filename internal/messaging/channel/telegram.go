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

const defaultTelegramEndpoint = "https://api.telegram.org"

// Telegram delivers messages through the Telegram Bot API.
type Telegram struct {
	endpoint string
	client   *http.Client
}

// NewTelegram creates a Telegram sender. An empty endpoint selects the public
// Bot API host.
func NewTelegram(endpoint string) *Telegram {
	if endpoint == "" {
		endpoint = defaultTelegramEndpoint
	}
	return &Telegram{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Telegram) Channel() domain.Channel { return domain.ChannelTelegram }

type telegramSendRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (t *Telegram) Send(ctx context.Context, setting domain.MessagingSetting, to Recipient, text string) error {
	if to.TelegramChatID == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(telegramSendRequest{ChatID: to.TelegramChatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.endpoint, setting.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: %s", resp.Status)
	}
	return nil
}
