package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/messaging/domain"
)

type repo struct{}

// Provide returns the messaging repository implementation.
func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertHistory(ctx context.Context, db *gorm.DB, h *domain.MessageHistory) error {
	return db.WithContext(ctx).Create(h).Error
}

func (r *repo) HistoryExists(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID, t domain.MessageType, day time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.MessageHistory{}).
		Where("invoice_id = ? AND message_type = ? AND sent_on = ?", invoiceID, t, day).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, f domain.HistoryFilter) ([]domain.MessageHistory, error) {
	q := db.WithContext(ctx).Where("org_id = ?", f.OrgID)
	if f.InvoiceID != nil {
		q = q.Where("invoice_id = ?", *f.InvoiceID)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Type != nil {
		q = q.Where("message_type = ?", *f.Type)
	}
	if f.Since != nil {
		q = q.Where("sent_on >= ?", *f.Since)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []domain.MessageHistory
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) UpsertSetting(ctx context.Context, db *gorm.DB, s *domain.MessagingSetting) error {
	var existing domain.MessagingSetting
	err := db.WithContext(ctx).
		Where("org_id = ? AND channel = ?", s.OrgID, s.Channel).
		First(&existing).Error
	if err == nil {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		return db.WithContext(ctx).Save(s).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.WithContext(ctx).Create(s).Error
}

func (r *repo) FindSetting(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ch domain.Channel) (*domain.MessagingSetting, error) {
	var s domain.MessagingSetting
	err := db.WithContext(ctx).
		Where("org_id = ? AND channel = ?", orgID, ch).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) ListSettingsOrdered(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.MessagingSetting, error) {
	var settings []domain.MessagingSetting
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("priority ASC, channel ASC").
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *repo) DeleteSetting(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ch domain.Channel) error {
	res := db.WithContext(ctx).
		Where("org_id = ? AND channel = ?", orgID, ch).
		Delete(&domain.MessagingSetting{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
