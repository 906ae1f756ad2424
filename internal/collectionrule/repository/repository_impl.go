package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cobrato/cobrato/internal/collectionrule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *domain.CollectionRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.CollectionRule, error) {
	var rule domain.CollectionRule
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*domain.CollectionRule, error) {
	var rules []*domain.CollectionRule
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at desc, id desc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *domain.CollectionRule) error {
	return db.WithContext(ctx).Save(rule).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	result := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.CollectionRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) Restore(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	result := db.WithContext(ctx).
		Unscoped().
		Model(&domain.CollectionRule{}).
		Where("org_id = ? AND id = ? AND deleted_at IS NOT NULL", orgID, id).
		Update("deleted_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) ListTrashed(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*domain.CollectionRule, error) {
	var rules []*domain.CollectionRule
	err := db.WithContext(ctx).
		Unscoped().
		Where("org_id = ? AND deleted_at IS NOT NULL", orgID).
		Order("deleted_at desc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) PurgeDeletedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&domain.CollectionRule{})
	return result.RowsAffected, result.Error
}
