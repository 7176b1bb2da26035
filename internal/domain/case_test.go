package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want CaseCategory
	}{
		{"Fraud", CategoryFraud},
		{"  Fraud\n", CategoryFraud},
		{"fraud.", CategoryFraud},
		{"ACCOUNT ACCESS", CategoryAccountAccess},
		{"\"Verification\"", CategoryVerification},
		{"General inquiry", CategoryGeneralInquiry},
		{"Billing", CaseCategory("Billing")},
		{"  Something else. ", CaseCategory("Something else.")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategory(tt.in))
		})
	}
}

func TestCasePriorityValid(t *testing.T) {
	for _, p := range []CasePriority{CasePriorityLow, CasePriorityMedium, CasePriorityHigh} {
		assert.True(t, p.Valid(), p)
	}
	for _, p := range []CasePriority{"", "low", "Urgent", "HIGH"} {
		assert.False(t, p.Valid(), p)
	}
}

func TestCaseEscalationCap(t *testing.T) {
	c := &Case{Status: CaseStatusPending}
	assert.True(t, c.CanEscalate())
	c.EscalationLevel = MaxEscalationLevel
	assert.False(t, c.CanEscalate())
	assert.False(t, c.IsResolved())
	c.Status = CaseStatusResolved
	assert.True(t, c.IsResolved())
}
