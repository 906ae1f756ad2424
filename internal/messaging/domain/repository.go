package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// HistoryFilter narrows history listings.
type HistoryFilter struct {
	OrgID      snowflake.ID
	InvoiceID  *snowflake.ID
	CustomerID *snowflake.ID
	Type       *MessageType
	Since      *time.Time
	Limit      int
}

// Repository defines persistence for messaging settings and history.
type Repository interface {
	// InsertHistory appends one ledger row. Callers detect the per-day
	// duplicate through the database unique constraint.
	InsertHistory(ctx context.Context, db *gorm.DB, h *MessageHistory) error

	// HistoryExists reports whether a row already exists for the invoice,
	// type and day, regardless of delivery status.
	HistoryExists(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID, t MessageType, day time.Time) (bool, error)

	ListHistory(ctx context.Context, db *gorm.DB, f HistoryFilter) ([]MessageHistory, error)

	UpsertSetting(ctx context.Context, db *gorm.DB, s *MessagingSetting) error
	FindSetting(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ch Channel) (*MessagingSetting, error)

	// ListSettingsOrdered returns the organization's settings sorted by
	// priority, then channel name for a stable order on ties.
	ListSettingsOrdered(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]MessagingSetting, error)

	DeleteSetting(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ch Channel) error
}
