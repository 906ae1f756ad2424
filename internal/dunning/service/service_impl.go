package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/clock"
	ruledomain "github.com/cobrato/cobrato/internal/collectionrule/domain"
	customerdomain "github.com/cobrato/cobrato/internal/customer/domain"
	"github.com/cobrato/cobrato/internal/dispatch"
	"github.com/cobrato/cobrato/internal/dunning/domain"
	"github.com/cobrato/cobrato/internal/dunning/engine"
	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
	"github.com/cobrato/cobrato/internal/messaging/channel"
	messagingdomain "github.com/cobrato/cobrato/internal/messaging/domain"
	"github.com/cobrato/cobrato/internal/observability/logger"
	"github.com/cobrato/cobrato/internal/observability/metrics"
	orgdomain "github.com/cobrato/cobrato/internal/organization/domain"
	"github.com/cobrato/cobrato/internal/orgcontext"
	"github.com/cobrato/cobrato/internal/template"
	"github.com/cobrato/cobrato/pkg/db"
)

// invoiceParallelism bounds concurrent invoice processing within one
// organization. Each invoice's evaluate-render-dispatch-record sequence runs
// as a unit; the history unique key makes concurrent duplicates harmless.
const invoiceParallelism = 8

// Params declares the orchestrator dependencies.
type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	GenID      *snowflake.Node
	Orgs       orgdomain.Repository
	Customers  customerdomain.Repository
	Rules      ruledomain.Repository
	Invoices   invoicedomain.Repository
	InvoiceSvc invoicedomain.Service
	Messaging  messagingdomain.Repository
	Dispatcher *dispatch.Dispatcher
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	orgs       orgdomain.Repository
	customers  customerdomain.Repository
	rules      ruledomain.Repository
	invoices   invoicedomain.Repository
	invoiceSvc invoicedomain.Service
	messaging  messagingdomain.Repository
	dispatcher *dispatch.Dispatcher
}

// New constructs the dispatch orchestrator.
func New(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("dunning.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		orgs:       p.Orgs,
		customers:  p.Customers,
		rules:      p.Rules,
		invoices:   p.Invoices,
		invoiceSvc: p.InvoiceSvc,
		messaging:  p.Messaging,
		dispatcher: p.Dispatcher,
	}
}

func (s *service) RunAll(ctx context.Context) (domain.RunSummary, error) {
	runID := ulid.Make().String()
	log := logger.WithContext(ctx, s.log).With(zap.String("run_id", runID))

	summary := domain.RunSummary{RunID: runID}
	orgs, err := s.orgs.ListDispatchable(ctx, s.db)
	if err != nil {
		return summary, err
	}

	log.Info("dispatch run started", zap.Int("organizations", len(orgs)))
	for _, org := range orgs {
		orgSummary, err := s.runOrg(ctx, *org)
		if err != nil {
			// One organization's failure never aborts the run.
			log.Error("organization run failed",
				zap.String("org_id", org.ID.String()),
				zap.Error(err),
			)
			continue
		}
		summary.Add(orgSummary)
	}

	log.Info("dispatch run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (s *service) RunForOrganization(ctx context.Context, orgID snowflake.ID) (domain.OrgSummary, error) {
	org, err := s.orgs.FindByID(ctx, s.db, orgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.OrgSummary{}, orgdomain.ErrNotFound
	}
	if err != nil {
		return domain.OrgSummary{}, err
	}
	return s.runOrg(ctx, *org)
}

func (s *service) runOrg(ctx context.Context, org orgdomain.Organization) (domain.OrgSummary, error) {
	summary := domain.OrgSummary{OrgID: org.ID}
	if !org.InGoodStanding() {
		return summary, nil
	}

	settings, err := s.messaging.ListSettingsOrdered(ctx, s.db, org.ID)
	if err != nil {
		return summary, err
	}

	invoices, err := s.invoices.ListOpen(ctx, s.db, org.ID)
	if err != nil {
		return summary, err
	}

	today := clock.Today(s.clock)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(invoiceParallelism)
	for _, inv := range invoices {
		inv := inv
		g.Go(func() error {
			sent, failed, skipped := s.processInvoice(gctx, org, settings, inv, today)
			mu.Lock()
			summary.Processed++
			summary.Sent += sent
			summary.Failed += failed
			summary.Skipped += skipped
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processInvoice runs one invoice's evaluate-render-dispatch-record sequence.
// Failures are recorded, never propagated, so one invoice cannot abort the
// batch.
func (s *service) processInvoice(ctx context.Context, org orgdomain.Organization, settings []messagingdomain.MessagingSetting, inv invoicedomain.Invoice, today time.Time) (sent, failed, skipped int) {
	log := logger.WithContext(ctx, s.log).With(
		zap.String("org_id", org.ID.String()),
		zap.String("invoice_id", inv.ID.String()),
	)

	cust, err := s.customers.FindByID(ctx, s.db, org.ID, inv.CustomerID)
	if err != nil {
		log.Warn("invoice skipped, customer unavailable", zap.Error(err))
		skipped++
		return
	}
	if !cust.IsActive {
		skipped++
		return
	}

	rule, err := s.resolveRule(ctx, org.ID, inv, *cust)
	if err != nil {
		log.Warn("invoice skipped, rule unavailable", zap.Error(err))
		skipped++
		return
	}
	if rule == nil {
		skipped++
		return
	}

	events := engine.Evaluate(*rule, inv, today)
	for _, ev := range events {
		outcome, err := s.dispatchEvent(ctx, org, settings, inv, *cust, ev, today)
		if err != nil {
			log.Warn("event dispatch errored",
				zap.String("message_type", string(ev.Type)),
				zap.Error(err),
			)
			failed++
			continue
		}
		switch outcome {
		case outcomeSent:
			sent++
		case outcomeFailed:
			failed++
		case outcomeSkipped:
			skipped++
		}
	}
	return
}

// resolveRule prefers the invoice's own rule and falls back to the
// customer's. A nil rule with nil error means the invoice has no policy.
func (s *service) resolveRule(ctx context.Context, orgID snowflake.ID, inv invoicedomain.Invoice, cust customerdomain.Customer) (*ruledomain.CollectionRule, error) {
	ruleID := inv.CollectionRuleID
	if ruleID == nil {
		ruleID = cust.CollectionRuleID
	}
	if ruleID == nil {
		return nil, nil
	}
	rule, err := s.rules.FindByID(ctx, s.db, orgID, *ruleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Rule was trashed after assignment. Skip, keep the batch moving.
		return nil, nil
	}
	return rule, err
}

type dispatchOutcome int

const (
	outcomeSkipped dispatchOutcome = iota
	outcomeSent
	outcomeFailed
)

func (s *service) dispatchEvent(ctx context.Context, org orgdomain.Organization, settings []messagingdomain.MessagingSetting, inv invoicedomain.Invoice, cust customerdomain.Customer, ev domain.DueEvent, today time.Time) (dispatchOutcome, error) {
	exists, err := s.messaging.HistoryExists(ctx, s.db, inv.ID, ev.Type, today)
	if err != nil {
		return outcomeSkipped, err
	}
	if exists {
		return outcomeSkipped, nil
	}

	diff := engine.DiffDays(inv.DueDate, today)
	vars := template.Vars{
		CustomerName: cust.Name,
		AmountCents:  &inv.Amount,
		PaymentLink:  inv.PaymentLink,
	}
	if diff >= 0 {
		vars.DaysUntilDue = &diff
	} else {
		overdueDays := -diff
		vars.DaysOverdue = &overdueDays
	}
	body := template.Render(ev.Template, vars)

	res := s.dispatcher.Send(ctx, settings, channel.Recipient{
		Name:           cust.Name,
		Phone:          cust.Phone,
		TelegramChatID: cust.TelegramChatID,
		Email:          cust.Email,
	}, body)

	history := &messagingdomain.MessageHistory{
		ID:          s.genID.Generate(),
		OrgID:       org.ID,
		InvoiceID:   inv.ID,
		CustomerID:  cust.ID,
		MessageType: ev.Type,
		SentOn:      today,
		Channel:     res.Channel,
		Body:        body,
	}
	if res.Delivered {
		history.Status = messagingdomain.MessageStatusSent
	} else {
		history.Status = messagingdomain.MessageStatusFailed
		if res.Err != nil {
			history.Error = res.Err.Error()
		}
	}

	if err := s.messaging.InsertHistory(ctx, s.db, history); err != nil {
		if db.IsUniqueViolation(err) {
			// A concurrent worker won the per-day claim. The message went
			// out once, which is all the invariant asks.
			return outcomeSkipped, nil
		}
		return outcomeSkipped, err
	}

	metrics.Default().IncMessageRecorded(string(ev.Type), string(history.Status))
	if res.Delivered {
		return outcomeSent, nil
	}
	return outcomeFailed, nil
}

func (s *service) ConfirmPayment(ctx context.Context, invoiceID snowflake.ID, req invoicedomain.MarkPaidRequest) (*invoicedomain.Invoice, error) {
	inv, transitioned, err := s.invoiceSvc.MarkPaid(ctx, invoiceID, req)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return inv, nil
	}

	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return inv, nil
	}
	org, err := s.orgs.FindByID(ctx, s.db, orgID)
	if err != nil {
		return inv, err
	}

	cust, err := s.customers.FindByID(ctx, s.db, orgID, inv.CustomerID)
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("confirmation skipped, customer unavailable",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
		return inv, nil
	}

	rule, err := s.resolveRule(ctx, orgID, *inv, *cust)
	if err != nil || rule == nil || !rule.IsActive || rule.ConfirmationTemplate == "" {
		return inv, nil
	}

	settings, err := s.messaging.ListSettingsOrdered(ctx, s.db, orgID)
	if err != nil {
		return inv, err
	}

	ev := domain.DueEvent{
		Type:     messagingdomain.MessageTypeConfirmation,
		Template: rule.ConfirmationTemplate,
	}
	if _, err := s.dispatchEvent(ctx, *org, settings, *inv, *cust, ev, clock.Today(s.clock)); err != nil {
		logger.WithContext(ctx, s.log).Warn("confirmation dispatch errored",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
	}
	return inv, nil
}
