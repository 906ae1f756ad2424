package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cobrato/cobrato/internal/organization/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, org *domain.Organization) error {
	return db.WithContext(ctx).Create(org).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Organization, error) {
	var orgs []*domain.Organization
	stmt := db.WithContext(ctx).Model(&domain.Organization{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Blocked != nil {
		stmt = stmt.Where("blocked = ?", *filter.Blocked)
	}
	err := stmt.Order("created_at desc, id desc").Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// ListDispatchable returns tenants eligible for the daily dunning batch.
func (r *repo) ListDispatchable(ctx context.Context, db *gorm.DB) ([]*domain.Organization, error) {
	var orgs []*domain.Organization
	err := db.WithContext(ctx).
		Where("blocked = ?", false).
		Where("status IN ?", []domain.SubscriptionStatus{
			domain.SubscriptionActive,
			domain.SubscriptionTrial,
			domain.SubscriptionPermanent,
		}).
		Order("id").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repo) ListDueOn(ctx context.Context, db *gorm.DB, dueDate time.Time) ([]*domain.Organization, error) {
	var orgs []*domain.Organization
	err := db.WithContext(ctx).
		Where("status = ?", domain.SubscriptionActive).
		Where("blocked = ?", false).
		Where("subscription_due_date >= ? AND subscription_due_date < ?", dueDate, dueDate.AddDate(0, 0, 1)).
		Order("id").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, org *domain.Organization) error {
	return db.WithContext(ctx).Save(org).Error
}

// MarkOverdue flips active tenants with a passed due date to overdue+blocked.
// The status filter keeps the sweep idempotent across reruns.
func (r *repo) MarkOverdue(ctx context.Context, db *gorm.DB, before time.Time, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Organization{}).
		Where("subscription_due_date < ?", before).
		Where("status = ?", domain.SubscriptionActive).
		Updates(map[string]any{
			"status":     domain.SubscriptionOverdue,
			"blocked":    true,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repo) SetPayment(ctx context.Context, db *gorm.DB, id snowflake.ID, link, ref string, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Organization{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_link": link,
			"payment_ref":  ref,
			"updated_at":   now,
		}).Error
}
