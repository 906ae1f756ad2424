package domain

import (
	"context"
	"errors"
	"time"
)

type CreateOrganizationRequest struct {
	Name    string
	Email   string
	Phone   string
	Gateway string
}

type UpdateSubscriptionRequest struct {
	ID      string
	Status  string
	DueDate *time.Time
	Amount  *int64
	Blocked *bool
}

type ListFilter struct {
	Status  string
	Blocked *bool
}

type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (Organization, error)
	GetByID(ctx context.Context, id string) (Organization, error)
	List(ctx context.Context, filter ListFilter) ([]Organization, error)
	UpdateSubscription(ctx context.Context, req UpdateSubscriptionRequest) (Organization, error)
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidGateway = errors.New("invalid_gateway")
	ErrNotFound       = errors.New("not_found")
)
