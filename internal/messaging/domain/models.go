// Package domain contains messaging models: delivery channels, per-channel
// organization settings and the message history ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Channel identifies a delivery channel.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelTelegram Channel = "telegram"
	ChannelEmail    Channel = "email"
)

// MessageType classifies why a message was sent.
type MessageType string

const (
	MessageTypeReminder     MessageType = "reminder"
	MessageTypeDueDate      MessageType = "due_date"
	MessageTypeOverdue      MessageType = "overdue"
	MessageTypeConfirmation MessageType = "confirmation"
)

// MessageStatus records the delivery outcome. Pending is reserved for rows
// claimed before dispatch; the orchestrator records after dispatching, so it
// writes sent or failed directly.
type MessageStatus string

const (
	MessageStatusPending MessageStatus = "pending"
	MessageStatusSent    MessageStatus = "sent"
	MessageStatusFailed  MessageStatus = "failed"
)

// MessagingSetting holds one organization's credentials and ordering for a
// channel. Lower priority values are tried first.
type MessagingSetting struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;uniqueIndex:ux_messaging_settings_org_channel" json:"organization_id"`
	Channel   Channel      `gorm:"type:text;not null;uniqueIndex:ux_messaging_settings_org_channel" json:"channel"`
	Priority  int          `gorm:"not null;default:0" json:"priority"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	APIKey    string       `gorm:"type:text" json:"api_key,omitempty"`
	BotToken  string       `gorm:"type:text" json:"bot_token,omitempty"`
	Sender    string       `gorm:"type:text" json:"sender,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MessagingSetting) TableName() string { return "messaging_settings" }

// MessageHistory is the append-only delivery ledger. The unique index over
// invoice, message type and calendar day is what makes dunning runs
// idempotent: a second attempt for the same day hits the constraint instead
// of producing a duplicate message.
type MessageHistory struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID  `gorm:"not null;index" json:"organization_id"`
	InvoiceID   snowflake.ID  `gorm:"not null;uniqueIndex:ux_message_history_invoice_type_day" json:"invoice_id"`
	CustomerID  snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	MessageType MessageType   `gorm:"type:text;not null;uniqueIndex:ux_message_history_invoice_type_day" json:"message_type"`
	SentOn      time.Time     `gorm:"type:date;not null;uniqueIndex:ux_message_history_invoice_type_day" json:"sent_on"`
	Channel     Channel       `gorm:"type:text" json:"channel,omitempty"`
	Status      MessageStatus `gorm:"type:text;not null" json:"status"`
	Body        string        `gorm:"type:text" json:"body"`
	Error       string        `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (MessageHistory) TableName() string { return "message_history" }
