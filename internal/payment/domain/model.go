// Package domain defines the payment-gateway abstraction used to create
// payment links for subscription charges and invoices.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrProviderNotFound = errors.New("payment provider not found")
	ErrInvalidConfig    = errors.New("invalid provider config")
	ErrLinkFailed       = errors.New("payment link creation failed")
)

// AdapterConfig carries one organization's gateway credentials.
type AdapterConfig struct {
	OrgID  snowflake.ID
	APIKey string
}

// LinkRequest describes the charge a link should collect.
type LinkRequest struct {
	Reference   string
	Description string
	// Amount in cents.
	Amount int64
	// PayerName and PayerEmail are passed through to gateways that require
	// payer identification on link creation.
	PayerName  string
	PayerEmail string
}

// Link is a created gateway payment link.
type Link struct {
	URL string
	Ref string
}

// Adapter creates payment links on one gateway for one organization.
type Adapter interface {
	CreateLink(ctx context.Context, req LinkRequest) (*Link, error)
}

// AdapterFactory builds adapters for a named provider.
type AdapterFactory interface {
	Provider() string
	NewAdapter(cfg AdapterConfig) (Adapter, error)
}
