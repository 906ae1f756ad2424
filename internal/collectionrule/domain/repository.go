package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *CollectionRule) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*CollectionRule, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*CollectionRule, error)
	Update(ctx context.Context, db *gorm.DB, rule *CollectionRule) error
	SoftDelete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	Restore(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	ListTrashed(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*CollectionRule, error)
	PurgeDeletedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}
