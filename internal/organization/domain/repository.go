package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, org *Organization) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Organization, error)
	ListDispatchable(ctx context.Context, db *gorm.DB) ([]*Organization, error)
	ListDueOn(ctx context.Context, db *gorm.DB, dueDate time.Time) ([]*Organization, error)
	Update(ctx context.Context, db *gorm.DB, org *Organization) error
	MarkOverdue(ctx context.Context, db *gorm.DB, before time.Time, now time.Time) (int64, error)
	SetPayment(ctx context.Context, db *gorm.DB, id snowflake.ID, link, ref string, now time.Time) error
}
