// Package domain contains persistence models for the org service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SubscriptionStatus represents the tenant's standing on the platform.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionOverdue   SubscriptionStatus = "overdue"
	SubscriptionCanceled  SubscriptionStatus = "canceled"
	SubscriptionPermanent SubscriptionStatus = "permanent"
)

// Gateway identifies the payment gateway the tenant settles through.
type Gateway string

const (
	GatewayMercadoPago Gateway = "mercadopago"
	GatewayAsaas       Gateway = "asaas"
)

// Organization represents a tenant.
type Organization struct {
	ID           snowflake.ID       `gorm:"primaryKey" json:"id"`
	Name         string             `gorm:"type:text;not null" json:"name"`
	Slug         string             `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	Email        string             `gorm:"type:text;not null" json:"email"`
	Phone        string             `gorm:"type:text" json:"phone,omitempty"`
	Status       SubscriptionStatus `gorm:"type:text;not null;default:'trial';index" json:"subscription_status"`
	DueDate      *time.Time         `gorm:"column:subscription_due_date;index" json:"subscription_due_date,omitempty"`
	Amount       int64              `gorm:"column:subscription_amount;not null;default:0" json:"subscription_amount"`
	LastPayment  *time.Time         `gorm:"column:last_payment_date" json:"last_payment_date,omitempty"`
	Blocked      bool               `gorm:"not null;default:false;index" json:"blocked"`
	Gateway      Gateway            `gorm:"type:text" json:"gateway,omitempty"`
	PaymentLink  string             `gorm:"type:text" json:"payment_link,omitempty"`
	PaymentRef   string             `gorm:"column:payment_ref;type:text" json:"payment_ref,omitempty"`
	Metadata     datatypes.JSONMap  `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// InGoodStanding reports whether the tenant may receive dunning dispatch.
// Blocked and overdue tenants are excluded from the daily batch.
func (o Organization) InGoodStanding() bool {
	if o.Blocked {
		return false
	}
	switch o.Status {
	case SubscriptionActive, SubscriptionTrial, SubscriptionPermanent:
		return true
	default:
		return false
	}
}
