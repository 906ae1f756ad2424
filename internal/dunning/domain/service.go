package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
)

// Service is the daily dispatch orchestrator. Runs are idempotent: the
// history ledger's per-day unique key stops any message from going out twice
// even when a run is repeated or interrupted mid-batch.
type Service interface {
	// RunAll processes every organization in good standing.
	RunAll(ctx context.Context) (RunSummary, error)

	// RunForOrganization processes one organization's open invoices.
	RunForOrganization(ctx context.Context, orgID snowflake.ID) (OrgSummary, error)

	// ConfirmPayment settles an invoice and, when this call performed the
	// transition, dispatches the rule's confirmation message once.
	ConfirmPayment(ctx context.Context, invoiceID snowflake.ID, req invoicedomain.MarkPaidRequest) (*invoicedomain.Invoice, error)
}
