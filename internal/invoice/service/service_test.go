package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/clock"
	"github.com/cobrato/cobrato/internal/invoice/domain"
	"github.com/cobrato/cobrato/internal/invoice/repository"
	"github.com/cobrato/cobrato/internal/orgcontext"
)

type fixture struct {
	svc   domain.Service
	clock *clock.FakeClock
	orgID snowflake.ID
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		GenID: node,
		Repo:  repository.Provide(),
	})

	orgID := node.Generate()
	return &fixture{
		svc:   svc,
		clock: fake,
		orgID: orgID,
		ctx:   orgcontext.WithOrgID(context.Background(), orgID),
	}
}

func (f *fixture) create(t *testing.T, amount int64, due time.Time) *domain.Invoice {
	t.Helper()
	inv, err := f.svc.Create(f.ctx, domain.CreateInvoiceRequest{
		CustomerID: 42,
		Amount:     amount,
		DueDate:    due,
	})
	require.NoError(t, err)
	return inv
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	due := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), domain.CreateInvoiceRequest{
		CustomerID: 42, Amount: 1000, DueDate: due,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)

	_, err = f.svc.Create(f.ctx, domain.CreateInvoiceRequest{CustomerID: 42, Amount: 0, DueDate: due})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Create(f.ctx, domain.CreateInvoiceRequest{CustomerID: 42, Amount: 1000})
	assert.ErrorIs(t, err, domain.ErrInvalidDueDate)

	inv := f.create(t, 10000, due)
	assert.Equal(t, domain.InvoiceStatusPending, inv.Status)
	assert.True(t, inv.Open())
}

func TestMarkPaid_TransitionsOnce(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 10000, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC))

	paid, transitioned, err := f.svc.MarkPaid(f.ctx, inv.ID, domain.MarkPaidRequest{})
	require.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// Paying again must not report a second transition.
	paid, transitioned, err = f.svc.MarkPaid(f.ctx, inv.ID, domain.MarkPaidRequest{})
	require.NoError(t, err)
	assert.False(t, transitioned)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
}

func TestMarkPaid_OverdueInvoiceSettles(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 5000, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, f.svc.(*service).db.Model(&domain.Invoice{}).
		Where("id = ?", inv.ID).
		Update("status", domain.InvoiceStatusOverdue).Error)

	amount := int64(5000)
	paid, transitioned, err := f.svc.MarkPaid(f.ctx, inv.ID, domain.MarkPaidRequest{PaymentAmount: &amount})
	require.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentAmount)
	assert.Equal(t, int64(5000), *paid.PaymentAmount)
}

func TestCancel_OnlyOpenInvoices(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 10000, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC))

	cancelled, err := f.svc.Cancel(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.Open())

	paid := f.create(t, 10000, time.Date(2026, time.March, 25, 0, 0, 0, 0, time.UTC))
	_, _, err = f.svc.MarkPaid(f.ctx, paid.ID, domain.MarkPaidRequest{})
	require.NoError(t, err)

	_, err = f.svc.Cancel(f.ctx, paid.ID)
	assert.ErrorIs(t, err, domain.ErrNotOpen)
}

func TestMarkPaid_ScopedToOrganization(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 10000, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC))

	otherCtx := orgcontext.WithOrgID(context.Background(), f.orgID+1)
	_, _, err := f.svc.MarkPaid(otherCtx, inv.ID, domain.MarkPaidRequest{})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestTrash_DeleteRestoreRoundTrip(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, 10000, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC))

	require.NoError(t, f.svc.Delete(f.ctx, inv.ID))

	_, err := f.svc.GetByID(f.ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	trashed, err := f.svc.ListTrashed(f.ctx)
	require.NoError(t, err)
	require.Len(t, trashed, 1)
	assert.Equal(t, inv.ID, trashed[0].ID)

	require.NoError(t, f.svc.Restore(f.ctx, inv.ID))

	back, err := f.svc.GetByID(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPending, back.Status)
}
