package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows invoice listings.
type ListFilter struct {
	OrgID      snowflake.ID
	CustomerID *snowflake.ID
	Status     *InvoiceStatus
	DueBefore  *time.Time
	DueAfter   *time.Time
}

// Repository defines persistence operations for invoices.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inv *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, f ListFilter) ([]Invoice, error)
	Update(ctx context.Context, db *gorm.DB, inv *Invoice) error

	// MarkPaid transitions an open invoice to paid. It reports whether the
	// transition actually happened so callers can act exactly once.
	MarkPaid(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, paidAt time.Time, amount *int64) (bool, error)

	// Cancel transitions an open invoice to cancelled.
	Cancel(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (bool, error)

	// SweepOverdue flips every pending invoice whose due date lies strictly
	// before the given day to overdue. It returns the number of rows changed
	// and is safe to run repeatedly.
	SweepOverdue(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)

	// ListOpen returns pending and overdue invoices for one organization,
	// the working set of a dunning run.
	ListOpen(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Invoice, error)

	SoftDelete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	Restore(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	ListTrashed(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Invoice, error)
	PurgeDeletedBefore(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
}
