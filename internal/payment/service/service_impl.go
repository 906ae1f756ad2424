package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/clock"
	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
	"github.com/cobrato/cobrato/internal/observability/logger"
	orgdomain "github.com/cobrato/cobrato/internal/organization/domain"
	"github.com/cobrato/cobrato/internal/orgcontext"
	"github.com/cobrato/cobrato/internal/payment/adapters"
	"github.com/cobrato/cobrato/internal/payment/domain"
)

// metadata key holding the tenant's gateway credential.
const apiKeyMetadata = "gateway_api_key"

// Params declares the service dependencies.
type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Registry *adapters.Registry
	Orgs     orgdomain.Repository
	Invoices invoicedomain.Repository
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	registry *adapters.Registry
	orgs     orgdomain.Repository
	invoices invoicedomain.Repository
}

// New constructs the payment-link service.
func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		clock:    p.Clock,
		registry: p.Registry,
		orgs:     p.Orgs,
		invoices: p.Invoices,
	}
}

func (s *service) LinkForOrganization(ctx context.Context, orgID snowflake.ID) (string, error) {
	org, err := s.orgs.FindByID(ctx, s.db, orgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", orgdomain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if org.PaymentLink != "" {
		return org.PaymentLink, nil
	}

	adapter, err := s.adapterFor(org)
	if err != nil {
		return "", err
	}

	link, err := adapter.CreateLink(ctx, domain.LinkRequest{
		Reference:   fmt.Sprintf("org-%s", org.ID),
		Description: fmt.Sprintf("Assinatura Cobrato - %s", org.Name),
		Amount:      org.Amount,
		PayerName:   org.Name,
		PayerEmail:  org.Email,
	})
	if err != nil {
		return "", err
	}

	if err := s.orgs.SetPayment(ctx, s.db, org.ID, link.URL, link.Ref, s.clock.Now()); err != nil {
		return "", err
	}

	logger.WithContext(ctx, s.log).Info("subscription payment link created",
		zap.String("org_id", org.ID.String()),
		zap.String("gateway", string(org.Gateway)),
	)
	return link.URL, nil
}

func (s *service) LinkForInvoice(ctx context.Context, invoiceID snowflake.ID) (string, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return "", invoicedomain.ErrInvalidOrganization
	}

	inv, err := s.invoices.FindByID(ctx, s.db, orgID, invoiceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", invoicedomain.ErrInvoiceNotFound
	}
	if err != nil {
		return "", err
	}
	if inv.PaymentLink != "" {
		return inv.PaymentLink, nil
	}

	org, err := s.orgs.FindByID(ctx, s.db, orgID)
	if err != nil {
		return "", err
	}
	adapter, err := s.adapterFor(org)
	if err != nil {
		return "", err
	}

	link, err := adapter.CreateLink(ctx, domain.LinkRequest{
		Reference:   fmt.Sprintf("inv-%s", inv.ID),
		Description: inv.Description,
		Amount:      inv.Amount,
	})
	if err != nil {
		return "", err
	}

	inv.PaymentLink = link.URL
	inv.PaymentGateway = string(org.Gateway)
	inv.PaymentRef = link.Ref
	if err := s.invoices.Update(ctx, s.db, inv); err != nil {
		return "", err
	}

	logger.WithContext(ctx, s.log).Info("invoice payment link created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("gateway", string(org.Gateway)),
	)
	return link.URL, nil
}

func (s *service) adapterFor(org *orgdomain.Organization) (domain.Adapter, error) {
	apiKey, _ := org.Metadata[apiKeyMetadata].(string)
	return s.registry.NewAdapter(string(org.Gateway), domain.AdapterConfig{
		OrgID:  org.ID,
		APIKey: apiKey,
	})
}
