package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cobrato/cobrato/internal/clock"
	ruledomain "github.com/cobrato/cobrato/internal/collectionrule/domain"
	rulerepo "github.com/cobrato/cobrato/internal/collectionrule/repository"
	customerdomain "github.com/cobrato/cobrato/internal/customer/domain"
	customerrepo "github.com/cobrato/cobrato/internal/customer/repository"
	"github.com/cobrato/cobrato/internal/dispatch"
	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
	invoicerepo "github.com/cobrato/cobrato/internal/invoice/repository"
	invoiceservice "github.com/cobrato/cobrato/internal/invoice/service"
	"github.com/cobrato/cobrato/internal/messaging/channel"
	messagingdomain "github.com/cobrato/cobrato/internal/messaging/domain"
	messagingrepo "github.com/cobrato/cobrato/internal/messaging/repository"
	orgdomain "github.com/cobrato/cobrato/internal/organization/domain"
	orgrepo "github.com/cobrato/cobrato/internal/organization/repository"
	"github.com/cobrato/cobrato/internal/orgcontext"
)

type stubSender struct {
	ch   messagingdomain.Channel
	err  error
	sent []string
}

func (s *stubSender) Channel() messagingdomain.Channel { return s.ch }

func (s *stubSender) Send(_ context.Context, _ messagingdomain.MessagingSetting, to channel.Recipient, text string) error {
	if s.ch == messagingdomain.ChannelWhatsApp && to.Phone == "" {
		return channel.ErrNoRecipient
	}
	if s.ch == messagingdomain.ChannelTelegram && to.TelegramChatID == "" {
		return channel.ErrNoRecipient
	}
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

type fixture struct {
	db       *gorm.DB
	svc      *service
	clock    *clock.FakeClock
	whatsapp *stubSender
	telegram *stubSender
	orgID    snowflake.ID
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organization{},
		&customerdomain.Customer{},
		&ruledomain.CollectionRule{},
		&invoicedomain.Invoice{},
		&messagingdomain.MessagingSetting{},
		&messagingdomain.MessageHistory{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	whatsapp := &stubSender{ch: messagingdomain.ChannelWhatsApp}
	telegram := &stubSender{ch: messagingdomain.ChannelTelegram}
	dispatcher := dispatch.New(dispatch.Params{
		Log:     log,
		Senders: channel.NewRegistryWith(whatsapp, telegram),
	})

	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB:    db,
		Log:   log,
		Clock: fake,
		GenID: node,
		Repo:  invoicerepo.Provide(),
	})

	svc := New(Params{
		DB:         db,
		Log:        log,
		Clock:      fake,
		GenID:      node,
		Orgs:       orgrepo.Provide(),
		Customers:  customerrepo.Provide(),
		Rules:      rulerepo.Provide(),
		Invoices:   invoicerepo.Provide(),
		InvoiceSvc: invoiceSvc,
		Messaging:  messagingrepo.Provide(),
		Dispatcher: dispatcher,
	}).(*service)

	orgID := node.Generate()
	require.NoError(t, db.Create(&orgdomain.Organization{
		ID:     orgID,
		Name:   "Academia Boa Forma",
		Slug:   "academia-boa-forma",
		Status: orgdomain.SubscriptionActive,
	}).Error)

	for i, ch := range []messagingdomain.Channel{messagingdomain.ChannelWhatsApp, messagingdomain.ChannelTelegram} {
		require.NoError(t, db.Create(&messagingdomain.MessagingSetting{
			ID:       node.Generate(),
			OrgID:    orgID,
			Channel:  ch,
			Priority: i,
			IsActive: true,
		}).Error)
	}

	return &fixture{
		db:       db,
		svc:      svc,
		clock:    fake,
		whatsapp: whatsapp,
		telegram: telegram,
		orgID:    orgID,
		ctx:      orgcontext.WithOrgID(context.Background(), orgID),
	}
}

func (f *fixture) seedCustomer(t *testing.T, ruleID *snowflake.ID) customerdomain.Customer {
	t.Helper()
	cust := customerdomain.Customer{
		ID:               f.svc.genID.Generate(),
		OrgID:            f.orgID,
		Name:             "Ana",
		Phone:            "+5511999990000",
		TelegramChatID:   "42",
		IsActive:         true,
		CollectionRuleID: ruleID,
	}
	require.NoError(t, f.db.Create(&cust).Error)
	return cust
}

func (f *fixture) seedRule(t *testing.T) ruledomain.CollectionRule {
	t.Helper()
	rule := ruledomain.CollectionRule{
		ID:                   f.svc.genID.Generate(),
		OrgID:                f.orgID,
		Name:                 "padrao",
		IsActive:             true,
		ReminderDaysBefore:   3,
		SendOnDueDate:        true,
		OverdueDaysAfter:     datatypes.JSONSlice[int]{1, 3, 5, 10},
		ReminderTemplate:     "Olá {cliente}, sua fatura de {valor} vence em {dias_para_vencer} dias.",
		DueDateTemplate:      "Olá {cliente}, sua fatura de {valor} vence hoje.",
		OverdueTemplate:      "{cliente}, sua fatura está atrasada há {dias_atraso} dias.",
		ConfirmationTemplate: "Pagamento de {valor} confirmado. Obrigado, {cliente}!",
	}
	require.NoError(t, f.db.Create(&rule).Error)
	return rule
}

func (f *fixture) seedInvoice(t *testing.T, cust customerdomain.Customer, dueIn int) invoicedomain.Invoice {
	t.Helper()
	today := clock.Today(f.clock)
	inv := invoicedomain.Invoice{
		ID:         f.svc.genID.Generate(),
		OrgID:      f.orgID,
		CustomerID: cust.ID,
		Amount:     10000,
		DueDate:    today.AddDate(0, 0, dueIn),
		Status:     invoicedomain.InvoiceStatusPending,
	}
	require.NoError(t, f.db.Create(&inv).Error)
	return inv
}

func (f *fixture) historyRows(t *testing.T) []messagingdomain.MessageHistory {
	t.Helper()
	var rows []messagingdomain.MessageHistory
	require.NoError(t, f.db.Order("id ASC").Find(&rows).Error)
	return rows
}

func TestRunForOrganization_SendsReminder(t *testing.T) {
	f := newFixture(t)
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	f.seedInvoice(t, cust, 3)

	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 0, summary.Failed)

	rows := f.historyRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, messagingdomain.MessageTypeReminder, rows[0].MessageType)
	assert.Equal(t, messagingdomain.MessageStatusSent, rows[0].Status)
	assert.Equal(t, messagingdomain.ChannelWhatsApp, rows[0].Channel)
	assert.Equal(t, "Olá Ana, sua fatura de R$ 100,00 vence em 3 dias.", rows[0].Body)
}

func TestRunForOrganization_SecondRunIsIdempotent(t *testing.T) {
	f := newFixture(t)
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	f.seedInvoice(t, cust, 3)

	_, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)

	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 1, summary.Skipped)

	assert.Len(t, f.historyRows(t), 1)
	assert.Len(t, f.whatsapp.sent, 1)
}

func TestRunForOrganization_FallsBackToTelegram(t *testing.T) {
	f := newFixture(t)
	f.whatsapp.err = errors.New("gateway down")
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	f.seedInvoice(t, cust, 3)

	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)

	rows := f.historyRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, messagingdomain.ChannelTelegram, rows[0].Channel)
	assert.Equal(t, messagingdomain.MessageStatusSent, rows[0].Status)
}

func TestRunForOrganization_AllChannelsFailRecordsFailure(t *testing.T) {
	f := newFixture(t)
	f.whatsapp.err = errors.New("whatsapp down")
	f.telegram.err = errors.New("telegram down")
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	f.seedInvoice(t, cust, 3)

	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	rows := f.historyRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, messagingdomain.MessageStatusFailed, rows[0].Status)
	assert.Equal(t, "telegram down", rows[0].Error)
}

func TestRunForOrganization_FailedSendNotRetriedSameDay(t *testing.T) {
	f := newFixture(t)
	f.whatsapp.err = errors.New("whatsapp down")
	f.telegram.err = errors.New("telegram down")
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	f.seedInvoice(t, cust, 3)

	_, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)

	f.telegram.err = nil
	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 1, summary.Skipped)
	assert.Len(t, f.historyRows(t), 1)
}

func TestRunForOrganization_OverdueNoticeOnConfiguredOffset(t *testing.T) {
	f := newFixture(t)
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	inv := f.seedInvoice(t, cust, -5)
	require.NoError(t, f.db.Model(&inv).Update("status", invoicedomain.InvoiceStatusOverdue).Error)

	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)

	rows := f.historyRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, messagingdomain.MessageTypeOverdue, rows[0].MessageType)
	assert.Equal(t, "Ana, sua fatura está atrasada há 5 dias.", rows[0].Body)
}

func TestRunForOrganization_NextDayProducesNewRow(t *testing.T) {
	f := newFixture(t)
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	inv := f.seedInvoice(t, cust, -1)
	require.NoError(t, f.db.Model(&inv).Update("status", invoicedomain.InvoiceStatusOverdue).Error)

	_, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	require.Len(t, f.historyRows(t), 1)

	// Two days later the invoice hits the next offset.
	f.clock.Advance(48 * time.Hour)
	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Len(t, f.historyRows(t), 2)
}

func TestRunForOrganization_SkipsInvoiceWithoutRule(t *testing.T) {
	f := newFixture(t)
	cust := f.seedCustomer(t, nil)
	f.seedInvoice(t, cust, 3)

	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, f.historyRows(t))
}

func TestRunForOrganization_SkipsTrashedRule(t *testing.T) {
	f := newFixture(t)
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	f.seedInvoice(t, cust, 3)
	require.NoError(t, f.db.Delete(&rule).Error)

	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, f.historyRows(t))
}

func TestRunForOrganization_BlockedOrganizationProcessesNothing(t *testing.T) {
	f := newFixture(t)
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	f.seedInvoice(t, cust, 3)
	require.NoError(t, f.db.Model(&orgdomain.Organization{}).
		Where("id = ?", f.orgID).
		Update("blocked", true).Error)

	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, f.historyRows(t))
}

func TestConfirmPayment_SendsConfirmationOnce(t *testing.T) {
	f := newFixture(t)
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	inv := f.seedInvoice(t, cust, 3)

	paid, err := f.svc.ConfirmPayment(f.ctx, inv.ID, invoicedomain.MarkPaidRequest{})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, paid.Status)

	rows := f.historyRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, messagingdomain.MessageTypeConfirmation, rows[0].MessageType)
	assert.Equal(t, "Pagamento de R$ 100,00 confirmado. Obrigado, Ana!", rows[0].Body)

	// A second call sees no transition and stays quiet.
	_, err = f.svc.ConfirmPayment(f.ctx, inv.ID, invoicedomain.MarkPaidRequest{})
	require.NoError(t, err)
	assert.Len(t, f.historyRows(t), 1)
}

func TestConfirmPayment_PaidInvoiceNeverDunnedAgain(t *testing.T) {
	f := newFixture(t)
	rule := f.seedRule(t)
	cust := f.seedCustomer(t, &rule.ID)
	inv := f.seedInvoice(t, cust, 3)

	_, err := f.svc.ConfirmPayment(f.ctx, inv.ID, invoicedomain.MarkPaidRequest{})
	require.NoError(t, err)

	summary, err := f.svc.RunForOrganization(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Len(t, f.historyRows(t), 1)
}
