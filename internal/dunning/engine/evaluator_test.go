package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	ruledomain "github.com/cobrato/cobrato/internal/collectionrule/domain"
	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
	messagingdomain "github.com/cobrato/cobrato/internal/messaging/domain"
)

var today = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func rule() ruledomain.CollectionRule {
	return ruledomain.CollectionRule{
		IsActive:             true,
		ReminderDaysBefore:   3,
		SendOnDueDate:        true,
		OverdueDaysAfter:     datatypes.JSONSlice[int]{1, 3, 5, 10},
		ReminderTemplate:     "lembrete",
		DueDateTemplate:      "vence hoje",
		OverdueTemplate:      "atrasada",
		ConfirmationTemplate: "pago",
	}
}

func invoiceDueIn(days int) invoicedomain.Invoice {
	return invoicedomain.Invoice{
		Status:  invoicedomain.InvoiceStatusPending,
		DueDate: today.AddDate(0, 0, days),
	}
}

func eventTypes(t *testing.T, r ruledomain.CollectionRule, inv invoicedomain.Invoice) []messagingdomain.MessageType {
	t.Helper()
	events := Evaluate(r, inv, today)
	out := make([]messagingdomain.MessageType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestEvaluate_ReminderFiresOnlyOnExactDay(t *testing.T) {
	assert.Equal(t, []messagingdomain.MessageType{messagingdomain.MessageTypeReminder},
		eventTypes(t, rule(), invoiceDueIn(3)))

	for _, days := range []int{4, 2, 6} {
		assert.Empty(t, eventTypes(t, rule(), invoiceDueIn(days)),
			"due in %d days must not fire", days)
	}
}

func TestEvaluate_DueDateOnly(t *testing.T) {
	got := eventTypes(t, rule(), invoiceDueIn(0))
	assert.Equal(t, []messagingdomain.MessageType{messagingdomain.MessageTypeDueDate}, got)
}

func TestEvaluate_ReminderZeroDaysOverlapsDueDate(t *testing.T) {
	r := rule()
	r.ReminderDaysBefore = 0

	got := eventTypes(t, r, invoiceDueIn(0))
	assert.Equal(t, []messagingdomain.MessageType{
		messagingdomain.MessageTypeReminder,
		messagingdomain.MessageTypeDueDate,
	}, got)
}

func TestEvaluate_OverdueOffsets(t *testing.T) {
	for _, days := range []int{1, 3, 5, 10} {
		inv := invoiceDueIn(-days)
		inv.Status = invoicedomain.InvoiceStatusOverdue
		got := eventTypes(t, rule(), inv)
		assert.Equal(t, []messagingdomain.MessageType{messagingdomain.MessageTypeOverdue}, got,
			"%d days overdue", days)
	}

	for _, days := range []int{2, 4, 7, 11} {
		inv := invoiceDueIn(-days)
		inv.Status = invoicedomain.InvoiceStatusOverdue
		assert.Empty(t, eventTypes(t, rule(), inv), "%d days overdue must not fire", days)
	}
}

func TestEvaluate_OverdueOffsetZeroFiresOnDueDate(t *testing.T) {
	r := rule()
	r.SendOnDueDate = false
	r.ReminderDaysBefore = 3
	r.OverdueDaysAfter = datatypes.JSONSlice[int]{0, 5}

	got := eventTypes(t, r, invoiceDueIn(0))
	assert.Equal(t, []messagingdomain.MessageType{messagingdomain.MessageTypeOverdue}, got)

	// Alongside the due-date notice, not instead of it.
	r.SendOnDueDate = true
	got = eventTypes(t, r, invoiceDueIn(0))
	assert.Equal(t, []messagingdomain.MessageType{
		messagingdomain.MessageTypeDueDate,
		messagingdomain.MessageTypeOverdue,
	}, got)
}

func TestEvaluate_OverdueStatusDoesNotBlockEvaluation(t *testing.T) {
	inv := invoiceDueIn(-5)
	inv.Status = invoicedomain.InvoiceStatusOverdue

	events := Evaluate(rule(), inv, today)
	require.Len(t, events, 1)
	assert.Equal(t, messagingdomain.MessageTypeOverdue, events[0].Type)
	assert.Equal(t, "atrasada", events[0].Template)
}

func TestEvaluate_PaidAndCancelledNeverEmit(t *testing.T) {
	for _, status := range []invoicedomain.InvoiceStatus{
		invoicedomain.InvoiceStatusPaid,
		invoicedomain.InvoiceStatusCancelled,
	} {
		for _, days := range []int{3, 0, -5} {
			inv := invoiceDueIn(days)
			inv.Status = status
			assert.Empty(t, Evaluate(rule(), inv, today), "status %s due in %d", status, days)
		}
	}
}

func TestEvaluate_InactiveRuleNeverEmits(t *testing.T) {
	r := rule()
	r.IsActive = false
	for _, days := range []int{3, 0, -5} {
		assert.Empty(t, Evaluate(r, invoiceDueIn(days), today))
	}
}

func TestEvaluate_IgnoresWallClockTime(t *testing.T) {
	inv := invoiceDueIn(3)
	inv.DueDate = time.Date(2026, time.March, 13, 23, 59, 59, 0, time.UTC)

	lateToday := time.Date(2026, time.March, 10, 0, 0, 1, 0, time.UTC)
	events := Evaluate(rule(), inv, lateToday)
	require.Len(t, events, 1)
	assert.Equal(t, messagingdomain.MessageTypeReminder, events[0].Type)
}

func TestDiffDays(t *testing.T) {
	assert.Equal(t, 3, DiffDays(today.AddDate(0, 0, 3), today))
	assert.Equal(t, 0, DiffDays(today, today))
	assert.Equal(t, -5, DiffDays(today.AddDate(0, 0, -5), today))
}
