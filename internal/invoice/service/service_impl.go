package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/clock"
	"github.com/cobrato/cobrato/internal/invoice/domain"
	"github.com/cobrato/cobrato/internal/observability/logger"
	"github.com/cobrato/cobrato/internal/orgcontext"
)

// Params declares the service dependencies.
type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

// New constructs the invoice service.
func New(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if req.DueDate.IsZero() {
		return nil, domain.ErrInvalidDueDate
	}

	inv := &domain.Invoice{
		ID:               s.genID.Generate(),
		OrgID:            orgID,
		CustomerID:       req.CustomerID,
		CollectionRuleID: req.CollectionRuleID,
		Description:      req.Description,
		Amount:           req.Amount,
		DueDate:          req.DueDate.UTC(),
		Status:           domain.InvoiceStatusPending,
		PaymentLink:      req.PaymentLink,
	}
	if err := s.repo.Insert(ctx, s.db, inv); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.Int64("amount", inv.Amount),
	)
	return inv, nil
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	inv, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, err
}

func (s *service) List(ctx context.Context, customerID *snowflake.ID, status *domain.InvoiceStatus) ([]domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.List(ctx, s.db, domain.ListFilter{
		OrgID:      orgID,
		CustomerID: customerID,
		Status:     status,
	})
}

func (s *service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateInvoiceRequest) (*domain.Invoice, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CollectionRuleID != nil {
		inv.CollectionRuleID = req.CollectionRuleID
	}
	if req.Description != nil {
		inv.Description = *req.Description
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, domain.ErrInvalidAmount
		}
		inv.Amount = *req.Amount
	}
	if req.DueDate != nil {
		inv.DueDate = req.DueDate.UTC()
	}
	if req.PaymentLink != nil {
		inv.PaymentLink = *req.PaymentLink
	}
	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) MarkPaid(ctx context.Context, id snowflake.ID, req domain.MarkPaidRequest) (*domain.Invoice, bool, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, false, domain.ErrInvalidOrganization
	}

	paidAt := s.clock.Now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}

	transitioned, err := s.repo.MarkPaid(ctx, s.db, orgID, id, paidAt, req.PaymentAmount)
	if err != nil {
		return nil, false, err
	}

	inv, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, false, err
	}

	if transitioned {
		logger.WithContext(ctx, s.log).Info("invoice paid",
			zap.String("invoice_id", inv.ID.String()),
			zap.Time("paid_at", paidAt),
		)
	}
	return inv, transitioned, nil
}

func (s *service) Cancel(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	cancelled, err := s.repo.Cancel(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	if !cancelled && inv.Status != domain.InvoiceStatusCancelled {
		return nil, domain.ErrNotOpen
	}
	return inv, nil
}

func (s *service) Delete(ctx context.Context, id snowflake.ID) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	err := s.repo.SoftDelete(ctx, s.db, orgID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrInvoiceNotFound
	}
	return err
}

func (s *service) Restore(ctx context.Context, id snowflake.ID) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	err := s.repo.Restore(ctx, s.db, orgID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrInvoiceNotFound
	}
	return err
}

func (s *service) ListTrashed(ctx context.Context) ([]domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListTrashed(ctx, s.db, orgID)
}
