// Package scheduler drives the daily batch: the overdue sweep, the dunning
// dispatch run, subscription housekeeping and trash purging.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/clock"
	ruledomain "github.com/cobrato/cobrato/internal/collectionrule/domain"
	customerdomain "github.com/cobrato/cobrato/internal/customer/domain"
	dunningdomain "github.com/cobrato/cobrato/internal/dunning/domain"
	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
	"github.com/cobrato/cobrato/internal/leaderlock"
	obsmetrics "github.com/cobrato/cobrato/internal/observability/metrics"
	orgdomain "github.com/cobrato/cobrato/internal/organization/domain"
	paymentdomain "github.com/cobrato/cobrato/internal/payment/domain"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

const runLockKey = "scheduler:run:lock"

// Params declares the scheduler dependencies.
type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	DunningSvc dunningdomain.Service
	PaymentSvc paymentdomain.Service
	Orgs       orgdomain.Repository
	Customers  customerdomain.Repository
	Rules      ruledomain.Repository
	Invoices   invoicedomain.Repository
	Locker     *leaderlock.Locker `optional:"true"`
	Config     Config             `optional:"true"`
}

type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	dunningSvc dunningdomain.Service
	paymentSvc paymentdomain.Service
	orgs       orgdomain.Repository
	customers  customerdomain.Repository
	rules      ruledomain.Repository
	invoices   invoicedomain.Repository
	locker     *leaderlock.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.DunningSvc == nil || p.Orgs == nil || p.Invoices == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		dunningSvc: p.DunningSvc,
		paymentSvc: p.PaymentSvc,
		orgs:       p.Orgs,
		customers:  p.Customers,
		rules:      p.Rules,
		invoices:   p.Invoices,
		locker:     p.Locker,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	schedMetrics := obsmetrics.Default()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	// Deadline is a soft failure: the next run picks up where this one
	// stopped, the dedup ledger keeps it safe.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		schedMetrics.IncJobTimeout(name)
		schedMetrics.IncJobError(name, obsmetrics.JobReasonDeadlineExceeded)
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	schedMetrics.IncJobError(name, obsmetrics.JobReasonUnknown)
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce executes one full batch. Each job is bounded by its own timeout
// and a failing job never stops the rest.
func (s *Scheduler) RunOnce(parent context.Context) error {
	runID := ulid.Make().String()
	log := s.log.With(zap.String("run_id", runID))

	token, acquired, err := s.tryLock(parent)
	if err != nil {
		log.Warn("run lock unavailable", zap.Error(err))
		return nil
	}
	if !acquired {
		log.Info("run skipped, another instance holds the lock")
		return nil
	}
	defer s.releaseLock(parent, token)

	log.Info("batch run started")

	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"overdue_sweep", s.OverdueSweepJob},
		{"dispatch", s.DispatchJob},
		{"subscription_sweep", s.SubscriptionSweepJob},
		{"subscription_reminder", s.SubscriptionReminderJob},
		{"trash_purge", s.TrashPurgeJob},
	}

	var errs error
	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		errs = errors.Join(errs, s.runJob(parent, job.Name, s.cfg.JobTimeout, job.Run))
	}

	log.Info("batch run finished")
	return errs
}

// RunForever schedules RunOnce on the configured cron expression and blocks
// until the context is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger)))
	_, err := c.AddFunc(s.cfg.DispatchCron, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid dispatch cron %q: %w", s.cfg.DispatchCron, err)
	}

	s.log.Info("scheduler started", zap.String("cron", s.cfg.DispatchCron))
	c.Start()
	<-ctx.Done()

	stopped := c.Stop()
	<-stopped.Done()
	return nil
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

func (s *Scheduler) tryLock(ctx context.Context) (string, bool, error) {
	return s.locker.TryLock(ctx, runLockKey, s.cfg.LockTTL)
}

func (s *Scheduler) releaseLock(ctx context.Context, token string) {
	if err := s.locker.Release(ctx, runLockKey, token); err != nil {
		s.log.Warn("run lock release failed", zap.Error(err))
	}
}

// OverdueSweepJob flips pending invoices past their due date to overdue.
// The status guard in the update makes re-runs no-ops.
func (s *Scheduler) OverdueSweepJob(ctx context.Context) error {
	today := clock.Today(s.clock)
	flipped, err := s.invoices.SweepOverdue(ctx, s.db, today)
	if err != nil {
		return err
	}
	if flipped > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", flipped))
	}
	return nil
}

// DispatchJob runs the dunning batch across all organizations.
func (s *Scheduler) DispatchJob(ctx context.Context) error {
	summary, err := s.dunningSvc.RunAll(ctx)
	if err != nil {
		return err
	}
	s.log.Info("dispatch job finished",
		zap.String("run_id", summary.RunID),
		zap.Int("processed", summary.Processed),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return nil
}

// SubscriptionSweepJob blocks organizations whose platform subscription is
// past due.
func (s *Scheduler) SubscriptionSweepJob(ctx context.Context) error {
	today := clock.Today(s.clock)
	blocked, err := s.orgs.MarkOverdue(ctx, s.db, today, s.clock.Now())
	if err != nil {
		return err
	}
	if blocked > 0 {
		s.log.Info("organizations blocked for overdue subscription", zap.Int64("count", blocked))
	}
	return nil
}

// SubscriptionReminderJob makes sure every organization whose subscription
// comes due soon has a payment link ready.
func (s *Scheduler) SubscriptionReminderJob(ctx context.Context) error {
	if s.paymentSvc == nil {
		return nil
	}
	dueOn := clock.Today(s.clock).AddDate(0, 0, s.cfg.SubscriptionReminderDays)
	orgs, err := s.orgs.ListDueOn(ctx, s.db, dueOn)
	if err != nil {
		return err
	}

	var errs error
	for _, org := range orgs {
		if _, err := s.paymentSvc.LinkForOrganization(ctx, org.ID); err != nil {
			s.log.Warn("subscription payment link failed",
				zap.String("org_id", org.ID.String()),
				zap.Error(err),
			)
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// TrashPurgeJob permanently removes soft-deleted rows past the retention
// window.
func (s *Scheduler) TrashPurgeJob(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.TrashRetention)

	var total int64
	for _, purge := range []func(context.Context, *gorm.DB, time.Time) (int64, error){
		s.customers.PurgeDeletedBefore,
		s.rules.PurgeDeletedBefore,
		s.invoices.PurgeDeletedBefore,
	} {
		n, err := purge(ctx, s.db, cutoff)
		if err != nil {
			return err
		}
		total += n
	}
	if total > 0 {
		s.log.Info("trash purged", zap.Int64("rows", total))
	}
	return nil
}
