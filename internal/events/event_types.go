package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/triage-service/internal/domain"
	"github.com/caseflow/triage-service/internal/triage"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated           EventType = "case_created"
	EventCaseResolved          EventType = "case_resolved"
	EventCaseEscalated         EventType = "case_escalated"
	EventVerificationRequested EventType = "verification_requested"
)

// Event represents a case lifecycle change emitted after the store write commits.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    int64       `json:"case_id"`
	Case      domain.Case `json:"case"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

// CaseCreatedPayload carries the triage decision applied at intake.
type CaseCreatedPayload struct {
	Action   triage.Action       `json:"action"`
	Category domain.CaseCategory `json:"category"`
	Status   domain.CaseStatus   `json:"status"`
}

// CaseTransitionPayload describes a resolve, escalate or verify change.
type CaseTransitionPayload struct {
	OldStatus domain.CaseStatus `json:"old_status"`
	NewStatus domain.CaseStatus `json:"new_status"`
}

// NewCaseEvent stamps a fresh id and timestamp onto a snapshot of c.
func NewCaseEvent(eventType EventType, c domain.Case, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CaseID:    c.ID,
		Case:      c,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
