package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/collectionrule/domain"
	"github.com/cobrato/cobrato/internal/collectionrule/repository"
	"github.com/cobrato/cobrato/internal/orgcontext"
)

func newService(t *testing.T) (domain.Service, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CollectionRule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})

	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	return svc, ctx
}

func TestCreateRule_NormalizesOverdueOffsets(t *testing.T) {
	svc, ctx := newService(t)

	rule, err := svc.Create(ctx, domain.CreateRuleRequest{
		Name:               "padrao",
		ReminderDaysBefore: 3,
		SendOnDueDate:      true,
		OverdueDaysAfter:   []int{5, 1, 5, -2, 10},
		ReminderTemplate:   "Olá {cliente}, sua fatura de {valor} vence em {dias_para_vencer} dias.",
		OverdueTemplate:    "Olá {cliente}, sua fatura está {dias_atraso} dias em atraso.",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 10}, []int(rule.OverdueDaysAfter))
	assert.True(t, rule.IsActive)
	assert.True(t, rule.IsOverdueOffset(5))
	assert.False(t, rule.IsOverdueOffset(2))
}

func TestCreateRule_Validation(t *testing.T) {
	svc, ctx := newService(t)

	_, err := svc.Create(ctx, domain.CreateRuleRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRuleRequest{Name: "padrao", ReminderDaysBefore: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidReminderDays)

	_, err = svc.Create(context.Background(), domain.CreateRuleRequest{Name: "padrao"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestUpdateRule_PartialFields(t *testing.T) {
	svc, ctx := newService(t)

	rule, err := svc.Create(ctx, domain.CreateRuleRequest{
		Name:               "padrao",
		ReminderDaysBefore: 3,
	})
	require.NoError(t, err)

	inactive := false
	days := 7
	updated, err := svc.Update(ctx, domain.UpdateRuleRequest{
		ID:                 rule.ID.String(),
		IsActive:           &inactive,
		ReminderDaysBefore: &days,
	})
	require.NoError(t, err)
	assert.Equal(t, "padrao", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 7, updated.ReminderDaysBefore)
}

func TestRule_TrashRoundTrip(t *testing.T) {
	svc, ctx := newService(t)

	rule, err := svc.Create(ctx, domain.CreateRuleRequest{Name: "padrao"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rule.ID.String()))

	_, err = svc.GetByID(ctx, rule.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	trashed, err := svc.ListTrashed(ctx)
	require.NoError(t, err)
	require.Len(t, trashed, 1)

	require.NoError(t, svc.Restore(ctx, rule.ID.String()))

	active, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, rule.ID, active[0].ID)
}

func TestGetRule_ScopedToOrganization(t *testing.T) {
	svc, ctx := newService(t)

	rule, err := svc.Create(ctx, domain.CreateRuleRequest{Name: "padrao"})
	require.NoError(t, err)

	otherCtx := orgcontext.WithOrgID(context.Background(), snowflake.ID(999))
	_, err = svc.GetByID(otherCtx, rule.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
