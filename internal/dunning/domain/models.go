// Package domain contains the dunning engine's event and summary types.
package domain

import (
	"github.com/bwmarrin/snowflake"

	messagingdomain "github.com/cobrato/cobrato/internal/messaging/domain"
)

// DueEvent instructs the orchestrator to send one message type today using
// one of the rule's templates.
type DueEvent struct {
	Type     messagingdomain.MessageType
	Template string
}

// OrgSummary aggregates one organization's run outcome.
type OrgSummary struct {
	OrgID     snowflake.ID `json:"organization_id"`
	Processed int          `json:"processed"`
	Sent      int          `json:"sent"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
}

// RunSummary aggregates a full dispatch run across organizations.
type RunSummary struct {
	RunID         string       `json:"run_id"`
	Processed     int          `json:"processed"`
	Sent          int          `json:"sent"`
	Failed        int          `json:"failed"`
	Skipped       int          `json:"skipped"`
	Organizations []OrgSummary `json:"organizations"`
}

// Add folds one organization's summary into the run totals.
func (r *RunSummary) Add(o OrgSummary) {
	r.Processed += o.Processed
	r.Sent += o.Sent
	r.Failed += o.Failed
	r.Skipped += o.Skipped
	r.Organizations = append(r.Organizations, o)
}
