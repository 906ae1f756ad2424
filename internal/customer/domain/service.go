package domain

import (
	"context"
	"errors"
)

type CreateCustomerRequest struct {
	Name             string
	Email            string
	Phone            string
	TelegramChatID   string
	Document         string
	Notes            string
	CollectionRuleID string
}

type UpdateCustomerRequest struct {
	ID               string
	Name             *string
	Email            *string
	Phone            *string
	TelegramChatID   *string
	Notes            *string
	IsActive         *bool
	CollectionRuleID *string
}

type ListCustomerFilter struct {
	Name     string
	IsActive *bool
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context, filter ListCustomerFilter) ([]Customer, error)
	Update(ctx context.Context, req UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ListTrashed(ctx context.Context) ([]Customer, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
