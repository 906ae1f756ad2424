package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/invoice/domain"
)

type repo struct{}

// Provide returns the invoice repository implementation.
func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Create(inv).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListFilter) ([]domain.Invoice, error) {
	q := db.WithContext(ctx).Where("org_id = ?", f.OrgID)
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.DueAfter != nil {
		q = q.Where("due_date >= ?", *f.DueAfter)
	}
	if f.DueBefore != nil {
		q = q.Where("due_date < ?", *f.DueBefore)
	}

	var invoices []domain.Invoice
	if err := q.Order("due_date ASC, id ASC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Save(inv).Error
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, paidAt time.Time, amount *int64) (bool, error) {
	updates := map[string]any{
		"status":  domain.InvoiceStatusPaid,
		"paid_at": paidAt,
	}
	if amount != nil {
		updates["payment_amount"] = *amount
	}
	res := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("org_id = ? AND id = ? AND status IN ?", orgID, id,
			[]domain.InvoiceStatus{domain.InvoiceStatusPending, domain.InvoiceStatusOverdue}).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) Cancel(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("org_id = ? AND id = ? AND status IN ?", orgID, id,
			[]domain.InvoiceStatus{domain.InvoiceStatusPending, domain.InvoiceStatusOverdue}).
		Update("status", domain.InvoiceStatusCancelled)
	return res.RowsAffected > 0, res.Error
}

func (r *repo) SweepOverdue(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("status = ? AND due_date < ?", domain.InvoiceStatusPending, before).
		Update("status", domain.InvoiceStatusOverdue)
	return res.RowsAffected, res.Error
}

func (r *repo) ListOpen(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("org_id = ? AND status IN ?", orgID,
			[]domain.InvoiceStatus{domain.InvoiceStatusPending, domain.InvoiceStatusOverdue}).
		Order("due_date ASC, id ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	res := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Invoice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) Restore(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	res := db.WithContext(ctx).
		Unscoped().
		Model(&domain.Invoice{}).
		Where("org_id = ? AND id = ? AND deleted_at IS NOT NULL", orgID, id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) ListTrashed(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Unscoped().
		Where("org_id = ? AND deleted_at IS NOT NULL", orgID).
		Order("deleted_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) PurgeDeletedBefore(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", before).
		Delete(&domain.Invoice{})
	return res.RowsAffected, res.Error
}
