// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice represents one receivable owned by an organization.
// Amount is stored in cents.
type Invoice struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID   `gorm:"not null;index" json:"organization_id"`
	CustomerID       snowflake.ID   `gorm:"not null;index" json:"customer_id"`
	CollectionRuleID *snowflake.ID  `gorm:"index" json:"collection_rule_id,omitempty"`
	Description      string         `gorm:"type:text" json:"description"`
	Amount           int64          `gorm:"not null" json:"amount"`
	DueDate          time.Time      `gorm:"not null;index" json:"due_date"`
	Status           InvoiceStatus  `gorm:"type:text;not null;default:'pending';index" json:"status"`
	PaymentLink      string         `gorm:"type:text" json:"payment_link,omitempty"`
	PaymentGateway   string         `gorm:"type:text" json:"payment_gateway,omitempty"`
	PaymentRef       string         `gorm:"column:payment_ref;type:text" json:"payment_ref,omitempty"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	PaymentAmount    *int64         `json:"payment_amount,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Open reports whether the invoice can still produce dunning events.
// Paid and cancelled invoices never do.
func (i Invoice) Open() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusOverdue
}
