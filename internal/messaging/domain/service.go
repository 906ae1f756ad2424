package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrSettingNotFound     = errors.New("messaging setting not found")
	ErrUnknownChannel      = errors.New("unknown messaging channel")
	ErrNoActiveChannels    = errors.New("no active messaging channels configured")
)

// UpsertSettingRequest creates or replaces one channel's configuration.
type UpsertSettingRequest struct {
	Channel  Channel `json:"channel" binding:"required"`
	Priority int     `json:"priority"`
	IsActive *bool   `json:"is_active"`
	APIKey   string  `json:"api_key"`
	BotToken string  `json:"bot_token"`
	Sender   string  `json:"sender"`
}

// TestMessageRequest sends a throwaway message to verify channel credentials.
type TestMessageRequest struct {
	Channel    Channel      `json:"channel" binding:"required"`
	CustomerID snowflake.ID `json:"customer_id" binding:"required"`
	Text       string       `json:"text"`
}

// Service manages channel settings and exposes the message history. All
// operations are scoped to the organization carried in the context.
type Service interface {
	UpsertSetting(ctx context.Context, req UpsertSettingRequest) (*MessagingSetting, error)
	ListSettings(ctx context.Context) ([]MessagingSetting, error)
	DeleteSetting(ctx context.Context, ch Channel) error

	ListHistory(ctx context.Context, f HistoryFilter) ([]MessageHistory, error)

	// SendTest delivers a test message over a single channel, bypassing
	// fallback and the history ledger.
	SendTest(ctx context.Context, req TestMessageRequest) error
}

// ParseChannel validates a channel name.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelWhatsApp, ChannelTelegram, ChannelEmail:
		return Channel(s), nil
	default:
		return "", ErrUnknownChannel
	}
}
