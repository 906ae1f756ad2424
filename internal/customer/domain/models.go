package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Customer is a billable contact owned by one organization. Phone and
// TelegramChatID are the delivery addresses for dunning messages.
type Customer struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID   `gorm:"not null;index" json:"organization_id"`
	Name             string         `gorm:"not null" json:"name"`
	Email            string         `gorm:"type:text" json:"email,omitempty"`
	Phone            string         `gorm:"type:text" json:"phone,omitempty"`
	TelegramChatID   string         `gorm:"column:telegram_chat_id;type:text" json:"telegram_chat_id,omitempty"`
	Document         string         `gorm:"type:text" json:"document,omitempty"`
	Notes            string         `gorm:"type:text" json:"notes,omitempty"`
	IsActive         bool           `gorm:"not null;default:true" json:"is_active"`
	CollectionRuleID *snowflake.ID  `gorm:"index" json:"collection_rule_id,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
