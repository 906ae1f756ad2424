// Package domain contains the collection-rule policy model.
package domain

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CollectionRule is an organization-defined dunning policy: when to remind
// before the due date, whether to notify on the due date, and at which
// day offsets after the due date overdue notices fire.
type CollectionRule struct {
	ID                   snowflake.ID             `gorm:"primaryKey" json:"id"`
	OrgID                snowflake.ID             `gorm:"not null;index" json:"organization_id"`
	Name                 string                   `gorm:"not null" json:"name"`
	IsActive             bool                     `gorm:"not null;default:true" json:"is_active"`
	ReminderDaysBefore   int                      `gorm:"not null;default:0" json:"reminder_days_before"`
	SendOnDueDate        bool                     `gorm:"not null;default:false" json:"send_on_due_date"`
	OverdueDaysAfter     datatypes.JSONSlice[int] `gorm:"type:jsonb" json:"overdue_days_after"`
	ReminderTemplate     string                   `gorm:"type:text" json:"reminder_template"`
	DueDateTemplate      string                   `gorm:"type:text" json:"due_date_template"`
	OverdueTemplate      string                   `gorm:"type:text" json:"overdue_template"`
	ConfirmationTemplate string                   `gorm:"type:text" json:"confirmation_template"`
	CreatedAt            time.Time                `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time                `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt            gorm.DeletedAt           `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName sets the database table name.
func (CollectionRule) TableName() string { return "collection_rules" }

// NormalizeOffsets deduplicates and sorts overdue day offsets, dropping
// negatives. Order never affects evaluation; each offset is checked
// independently.
func NormalizeOffsets(offsets []int) []int {
	seen := make(map[int]struct{}, len(offsets))
	normalized := make([]int, 0, len(offsets))
	for _, offset := range offsets {
		if offset < 0 {
			continue
		}
		if _, ok := seen[offset]; ok {
			continue
		}
		seen[offset] = struct{}{}
		normalized = append(normalized, offset)
	}
	sort.Ints(normalized)
	return normalized
}

// IsOverdueOffset reports whether daysOverdue is one of the rule's offsets.
func (r CollectionRule) IsOverdueOffset(daysOverdue int) bool {
	for _, offset := range r.OverdueDaysAfter {
		if offset == daysOverdue {
			return true
		}
	}
	return false
}
