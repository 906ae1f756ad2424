// Package engine computes which dunning messages are due for an invoice on a
// given day. It is pure date arithmetic with no I/O.
package engine

import (
	"time"

	ruledomain "github.com/cobrato/cobrato/internal/collectionrule/domain"
	"github.com/cobrato/cobrato/internal/dunning/domain"
	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
	messagingdomain "github.com/cobrato/cobrato/internal/messaging/domain"
)

// DiffDays returns dueDate minus today in whole calendar days, positive when
// the due date lies in the future. Both dates are compared as UTC days so
// the wall-clock time of either value never shifts the result.
func DiffDays(dueDate, today time.Time) int {
	due := truncateDay(dueDate)
	now := truncateDay(today)
	return int(due.Sub(now).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Evaluate returns the message events due today for one invoice under one
// rule. Reminders match the configured day exactly: a rule set to 3 days
// fires on that single day only, never on the days in between. Confirmation
// events are not produced here; they fire on the paid transition.
func Evaluate(rule ruledomain.CollectionRule, inv invoicedomain.Invoice, today time.Time) []domain.DueEvent {
	if !rule.IsActive || !inv.Open() {
		return nil
	}

	diff := DiffDays(inv.DueDate, today)

	var events []domain.DueEvent
	if diff >= 0 && diff == rule.ReminderDaysBefore {
		events = append(events, domain.DueEvent{
			Type:     messagingdomain.MessageTypeReminder,
			Template: rule.ReminderTemplate,
		})
	}
	if diff == 0 && rule.SendOnDueDate {
		events = append(events, domain.DueEvent{
			Type:     messagingdomain.MessageTypeDueDate,
			Template: rule.DueDateTemplate,
		})
	}
	if diff <= 0 && rule.IsOverdueOffset(-diff) {
		events = append(events, domain.DueEvent{
			Type:     messagingdomain.MessageTypeOverdue,
			Template: rule.OverdueTemplate,
		})
	}
	return events
}
