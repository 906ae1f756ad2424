package domain

import (
	"context"
	"errors"
)

type CreateRuleRequest struct {
	Name                 string
	ReminderDaysBefore   int
	SendOnDueDate        bool
	OverdueDaysAfter     []int
	ReminderTemplate     string
	DueDateTemplate      string
	OverdueTemplate      string
	ConfirmationTemplate string
}

type UpdateRuleRequest struct {
	ID                   string
	Name                 *string
	IsActive             *bool
	ReminderDaysBefore   *int
	SendOnDueDate        *bool
	OverdueDaysAfter     []int
	ReminderTemplate     *string
	DueDateTemplate      *string
	OverdueTemplate      *string
	ConfirmationTemplate *string
}

type Service interface {
	Create(ctx context.Context, req CreateRuleRequest) (CollectionRule, error)
	GetByID(ctx context.Context, id string) (CollectionRule, error)
	List(ctx context.Context) ([]CollectionRule, error)
	Update(ctx context.Context, req UpdateRuleRequest) (CollectionRule, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ListTrashed(ctx context.Context) ([]CollectionRule, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidReminderDays = errors.New("invalid_reminder_days")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
