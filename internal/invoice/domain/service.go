package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrInvalidAmount       = errors.New("invoice amount must be positive")
	ErrInvalidDueDate      = errors.New("invoice due date is required")
	ErrNotOpen             = errors.New("invoice is not open")
)

// CreateInvoiceRequest carries the fields accepted on creation.
type CreateInvoiceRequest struct {
	CustomerID       snowflake.ID  `json:"customer_id" binding:"required"`
	CollectionRuleID *snowflake.ID `json:"collection_rule_id"`
	Description      string        `json:"description"`
	Amount           int64         `json:"amount" binding:"required"`
	DueDate          time.Time     `json:"due_date" binding:"required"`
	PaymentLink      string        `json:"payment_link"`
}

// UpdateInvoiceRequest carries mutable fields. Nil fields are left untouched.
type UpdateInvoiceRequest struct {
	CollectionRuleID *snowflake.ID `json:"collection_rule_id"`
	Description      *string       `json:"description"`
	Amount           *int64        `json:"amount"`
	DueDate          *time.Time    `json:"due_date"`
	PaymentLink      *string       `json:"payment_link"`
}

// MarkPaidRequest carries optional payment details.
type MarkPaidRequest struct {
	PaidAt        *time.Time `json:"paid_at"`
	PaymentAmount *int64     `json:"payment_amount"`
}

// Service defines invoice business operations. All operations are scoped to
// the organization carried in the context.
type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, customerID *snowflake.ID, status *InvoiceStatus) ([]Invoice, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateInvoiceRequest) (*Invoice, error)

	// MarkPaid settles an open invoice. The returned flag reports whether
	// this call performed the transition, so confirmation messages fire
	// exactly once even under concurrent requests.
	MarkPaid(ctx context.Context, id snowflake.ID, req MarkPaidRequest) (*Invoice, bool, error)

	Cancel(ctx context.Context, id snowflake.ID) (*Invoice, error)

	Delete(ctx context.Context, id snowflake.ID) error
	Restore(ctx context.Context, id snowflake.ID) error
	ListTrashed(ctx context.Context) ([]Invoice, error)
}
