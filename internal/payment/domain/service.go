package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service creates and reuses payment links.
type Service interface {
	// LinkForOrganization returns the organization's subscription payment
	// link, creating one on its configured gateway when none exists yet.
	LinkForOrganization(ctx context.Context, orgID snowflake.ID) (string, error)

	// LinkForInvoice creates a payment link for one invoice and stores it
	// on the invoice. An existing link is returned as-is.
	LinkForInvoice(ctx context.Context, invoiceID snowflake.ID) (string, error)
}
