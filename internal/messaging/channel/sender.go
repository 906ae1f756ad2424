// Package channel implements the delivery clients behind each messaging
// channel. Senders are stateless; per-organization credentials arrive with
// every call so one client serves every tenant.
package channel

import (
	"context"
	"errors"

	"github.com/cobrato/cobrato/internal/messaging/domain"
)

// ErrNoRecipient is returned when the customer has no address for the channel.
var ErrNoRecipient = errors.New("customer has no recipient address for channel")

// Recipient carries the customer addresses a sender may need.
type Recipient struct {
	Name           string
	Phone          string
	TelegramChatID string
	Email          string
}

// Sender delivers one message over one channel.
type Sender interface {
	Channel() domain.Channel
	Send(ctx context.Context, setting domain.MessagingSetting, to Recipient, text string) error
}
