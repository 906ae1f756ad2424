package scheduler

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
	ruledomain "github.com/cobrato/cobrato/internal/collectionrule/domain"
	rulerepo "github.com/cobrato/cobrato/internal/collectionrule/repository"
	customerdomain "github.com/cobrato/cobrato/internal/customer/domain"
	customerrepo "github.com/cobrato/cobrato/internal/customer/repository"
	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
	invoicerepo "github.com/cobrato/cobrato/internal/invoice/repository"
	orgdomain "github.com/cobrato/cobrato/internal/organization/domain"
	orgrepo "github.com/cobrato/cobrato/internal/organization/repository"
)

func newJobFixture(t *testing.T) (*Scheduler, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organization{},
		&customerdomain.Customer{},
		&ruledomain.CollectionRule{},
		&invoicedomain.Invoice{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))

	s := &Scheduler{
		db:        db,
		log:       zap.NewNop(),
		cfg:       Config{}.withDefaults(),
		clock:     fake,
		orgs:      orgrepo.Provide(),
		customers: customerrepo.Provide(),
		rules:     rulerepo.Provide(),
		invoices:  invoicerepo.Provide(),
	}
	return s, db, node, fake
}

func TestOverdueSweepJob_FlipsOnlyPastDuePending(t *testing.T) {
	s, db, node, fake := newJobFixture(t)
	orgID := node.Generate()
	custID := node.Generate()
	today := clock.Today(fake)

	pastDue := invoicedomain.Invoice{
		ID: node.Generate(), OrgID: orgID, CustomerID: custID,
		Amount: 5000, DueDate: today.AddDate(0, 0, -1),
		Status: invoicedomain.InvoiceStatusPending,
	}
	dueToday := invoicedomain.Invoice{
		ID: node.Generate(), OrgID: orgID, CustomerID: custID,
		Amount: 5000, DueDate: today,
		Status: invoicedomain.InvoiceStatusPending,
	}
	paid := invoicedomain.Invoice{
		ID: node.Generate(), OrgID: orgID, CustomerID: custID,
		Amount: 5000, DueDate: today.AddDate(0, 0, -10),
		Status: invoicedomain.InvoiceStatusPaid,
	}
	require.NoError(t, db.Create(&pastDue).Error)
	require.NoError(t, db.Create(&dueToday).Error)
	require.NoError(t, db.Create(&paid).Error)

	require.NoError(t, s.OverdueSweepJob(context.Background()))

	var got invoicedomain.Invoice
	require.NoError(t, db.First(&got, "id = ?", pastDue.ID).Error)
	assert.Equal(t, invoicedomain.InvoiceStatusOverdue, got.Status)

	got = invoicedomain.Invoice{}
	require.NoError(t, db.First(&got, "id = ?", dueToday.ID).Error)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, got.Status)

	got = invoicedomain.Invoice{}
	require.NoError(t, db.First(&got, "id = ?", paid.ID).Error)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, got.Status)
}

func TestOverdueSweepJob_Idempotent(t *testing.T) {
	s, db, node, fake := newJobFixture(t)
	today := clock.Today(fake)

	inv := invoicedomain.Invoice{
		ID: node.Generate(), OrgID: node.Generate(), CustomerID: node.Generate(),
		Amount: 5000, DueDate: today.AddDate(0, 0, -2),
		Status: invoicedomain.InvoiceStatusPending,
	}
	require.NoError(t, db.Create(&inv).Error)

	require.NoError(t, s.OverdueSweepJob(context.Background()))
	first, err := s.invoices.SweepOverdue(context.Background(), db, today)
	require.NoError(t, err)
	assert.Zero(t, first)
}

func TestSubscriptionSweepJob_BlocksPastDueActiveOrgs(t *testing.T) {
	s, db, node, fake := newJobFixture(t)
	today := clock.Today(fake)
	past := today.AddDate(0, 0, -1)
	future := today.AddDate(0, 0, 10)

	lapsed := orgdomain.Organization{
		ID: node.Generate(), Name: "Lapsed", Slug: "lapsed", Email: "a@b.c",
		Status: orgdomain.SubscriptionActive, DueDate: &past,
	}
	current := orgdomain.Organization{
		ID: node.Generate(), Name: "Current", Slug: "current", Email: "a@b.c",
		Status: orgdomain.SubscriptionActive, DueDate: &future,
	}
	permanent := orgdomain.Organization{
		ID: node.Generate(), Name: "Permanent", Slug: "permanent", Email: "a@b.c",
		Status: orgdomain.SubscriptionPermanent, DueDate: &past,
	}
	require.NoError(t, db.Create(&lapsed).Error)
	require.NoError(t, db.Create(&current).Error)
	require.NoError(t, db.Create(&permanent).Error)

	require.NoError(t, s.SubscriptionSweepJob(context.Background()))

	var got orgdomain.Organization
	require.NoError(t, db.First(&got, "id = ?", lapsed.ID).Error)
	assert.Equal(t, orgdomain.SubscriptionOverdue, got.Status)
	assert.True(t, got.Blocked)

	got = orgdomain.Organization{}
	require.NoError(t, db.First(&got, "id = ?", current.ID).Error)
	assert.Equal(t, orgdomain.SubscriptionActive, got.Status)
	assert.False(t, got.Blocked)

	got = orgdomain.Organization{}
	require.NoError(t, db.First(&got, "id = ?", permanent.ID).Error)
	assert.Equal(t, orgdomain.SubscriptionPermanent, got.Status)
	assert.False(t, got.Blocked)
}

func TestTrashPurgeJob_RemovesOnlyExpiredRows(t *testing.T) {
	s, db, node, fake := newJobFixture(t)
	orgID := node.Generate()

	old := customerdomain.Customer{
		ID: node.Generate(), OrgID: orgID, Name: "Old", IsActive: true,
	}
	recent := customerdomain.Customer{
		ID: node.Generate(), OrgID: orgID, Name: "Recent", IsActive: true,
	}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	longAgo := fake.Now().Add(-40 * 24 * time.Hour)
	require.NoError(t, db.Model(&customerdomain.Customer{}).Unscoped().
		Where("id = ?", old.ID).Update("deleted_at", longAgo).Error)
	require.NoError(t, db.Delete(&recent).Error)

	require.NoError(t, s.TrashPurgeJob(context.Background()))

	var count int64
	require.NoError(t, db.Unscoped().Model(&customerdomain.Customer{}).
		Where("id = ?", old.ID).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, db.Unscoped().Model(&customerdomain.Customer{}).
		Where("id = ?", recent.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
