package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListCustomerFilter) ([]*Customer, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	SoftDelete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	Restore(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	ListTrashed(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*Customer, error)
	PurgeDeletedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}
