package domain

import (
	"strings"
	"time"
)

// CaseStatus enumerates lifecycle states for cases.
type CaseStatus string

const (
	CaseStatusPending               CaseStatus = "Pending"
	CaseStatusResolved              CaseStatus = "Resolved"
	CaseStatusEscalated             CaseStatus = "Escalated"
	CaseStatusVerificationRequested CaseStatus = "Verification Requested"
)

// CasePriority enumerates requester-supplied urgency.
type CasePriority string

const (
	CasePriorityLow    CasePriority = "Low"
	CasePriorityMedium CasePriority = "Medium"
	CasePriorityHigh   CasePriority = "High"
)

// CaseCategory is the label assigned by the classifier. Values outside the
// known set are kept verbatim.
type CaseCategory string

const (
	CategoryFraud          CaseCategory = "Fraud"
	CategoryAccountAccess  CaseCategory = "Account Access"
	CategoryVerification   CaseCategory = "Verification"
	CategoryGeneralInquiry CaseCategory = "General Inquiry"
)

// MaxEscalationLevel caps the number of escalations per case.
const MaxEscalationLevel = 2

// KnownCategories lists the labels the classifier is asked to choose from.
var KnownCategories = []CaseCategory{
	CategoryFraud,
	CategoryAccountAccess,
	CategoryVerification,
	CategoryGeneralInquiry,
}

// Case is the triage record created from a submitted description.
type Case struct {
	ID              int64
	Description     string
	Email           string
	Priority        CasePriority
	Category        CaseCategory
	Status          CaseStatus
	EscalationLevel int
	CreatedAt       time.Time
	ResolvedAt      *time.Time
}

// Valid reports whether p is one of the accepted priorities.
func (p CasePriority) Valid() bool {
	switch p {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh:
		return true
	}
	return false
}

// Known reports whether c is one of the four classifier labels.
func (c CaseCategory) Known() bool {
	for _, known := range KnownCategories {
		if c == known {
			return true
		}
	}
	return false
}

// NormalizeCategory maps loose classifier output ("fraud.", " Account access ")
// onto the canonical label. Unrecognized labels come back trimmed but otherwise unchanged.
func NormalizeCategory(label string) CaseCategory {
	trimmed := strings.TrimSpace(label)
	candidate := strings.TrimRight(trimmed, ".!\"'`")
	candidate = strings.Trim(candidate, "\"'`")
	for _, known := range KnownCategories {
		if strings.EqualFold(candidate, string(known)) {
			return known
		}
	}
	return CaseCategory(trimmed)
}

// IsResolved reports whether the case currently sits in the Resolved state.
func (c *Case) IsResolved() bool {
	return c.Status == CaseStatusResolved
}

// CanEscalate reports whether another escalation is allowed.
func (c *Case) CanEscalate() bool {
	return c.EscalationLevel < MaxEscalationLevel
}
