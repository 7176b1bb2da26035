// Package triage maps classifier categories onto the initial case status and
// the follow-up action the intake flow should take.
package triage

import "github.com/caseflow/triage-service/internal/domain"

// Action names the side effect attached to a triage decision.
type Action string

const (
	ActionNone              Action = "none"
	ActionAlertSecurity     Action = "alert_security"
	ActionAutoResolve       Action = "auto_resolve"
	ActionNotifyRequester   Action = "notify_requester"
	ActionQueueVerification Action = "queue_verification"
)

// Decision is the outcome of applying the rule table to a category.
type Decision struct {
	Status domain.CaseStatus
	Action Action
}

var rules = map[domain.CaseCategory]Decision{
	domain.CategoryFraud:          {Status: domain.CaseStatusResolved, Action: ActionAlertSecurity},
	domain.CategoryGeneralInquiry: {Status: domain.CaseStatusResolved, Action: ActionAutoResolve},
	domain.CategoryAccountAccess:  {Status: domain.CaseStatusPending, Action: ActionNotifyRequester},
	domain.CategoryVerification:   {Status: domain.CaseStatusPending, Action: ActionQueueVerification},
}

// Decide returns the decision for category. Unmatched categories fall through
// to Pending with no action.
func Decide(category domain.CaseCategory) Decision {
	if decision, ok := rules[category]; ok {
		return decision
	}
	return Decision{Status: domain.CaseStatusPending, Action: ActionNone}
}

// Describe returns the operator-facing log line for an action.
func (a Action) Describe() string {
	switch a {
	case ActionAlertSecurity:
		return "fraud detected, flagging for security team"
	case ActionAutoResolve:
		return "no action needed, auto-resolving general inquiry"
	case ActionNotifyRequester:
		return "notifying requester about login issue"
	case ActionQueueVerification:
		return "queued for manual verification review"
	default:
		return "no triage rule matched, leaving case pending"
	}
}
