package dto

import (
	"time"

	"github.com/caseflow/triage-service/internal/domain"
)

// ClassifyCaseRequest payload for POST /classify-case.
type ClassifyCaseRequest struct {
	Description string `json:"description"`
	Email       string `json:"email"`
	Priority    string `json:"priority"`
}

// ClassifyCaseResponse is the intake result.
type ClassifyCaseResponse struct {
	Category        domain.CaseCategory `json:"category"`
	Status          domain.CaseStatus   `json:"status"`
	EscalationLevel int                 `json:"escalation_level"`
}

// CaseResponse is the full case record.
type CaseResponse struct {
	ID              int64               `json:"id"`
	Description     string              `json:"description"`
	Email           string              `json:"email"`
	Priority        domain.CasePriority `json:"priority"`
	Category        domain.CaseCategory `json:"category"`
	Status          domain.CaseStatus   `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	ResolvedAt      *time.Time          `json:"resolved_at"`
	EscalationLevel int                 `json:"escalation_level"`
}

// CaseStatsResponse for GET /cases/stats.
type CaseStatsResponse struct {
	TotalCases            int64            `json:"total_cases"`
	ResolvedCases         int64            `json:"resolved_cases"`
	PendingCases          int64            `json:"pending_cases"`
	CategoryBreakdown     map[string]int64 `json:"category_breakdown"`
	PriorityBreakdown     map[string]int64 `json:"priority_breakdown"`
	DailyBreakdown        map[string]int64 `json:"daily_breakdown"`
	AvgResolutionTimeDays float64          `json:"avg_resolution_time_days"`
}

// CaseInsightsResponse for GET /cases/insights.
type CaseInsightsResponse struct {
	AvgResolutionTimeDays float64 `json:"avg_resolution_time_days"`
	TopCategory           *string `json:"top_category"`
	TopCategoryCount      int64   `json:"top_category_count"`
}

// EscalateCaseResponse for PATCH /cases/:id/escalate.
type EscalateCaseResponse struct {
	Message         string `json:"message"`
	EscalationLevel int    `json:"escalation_level"`
}

// VerifyCaseResponse for POST /cases/:id/verify.
type VerifyCaseResponse struct {
	Message string            `json:"message"`
	Status  domain.CaseStatus `json:"status"`
}

// NewCaseResponse maps a domain case onto its wire form.
func NewCaseResponse(c *domain.Case) CaseResponse {
	return CaseResponse{
		ID:              c.ID,
		Description:     c.Description,
		Email:           c.Email,
		Priority:        c.Priority,
		Category:        c.Category,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
		ResolvedAt:      c.ResolvedAt,
		EscalationLevel: c.EscalationLevel,
	}
}

// NewCaseListResponse never returns nil so empty lists encode as [].
func NewCaseListResponse(cases []domain.Case) []CaseResponse {
	items := make([]CaseResponse, 0, len(cases))
	for i := range cases {
		items = append(items, NewCaseResponse(&cases[i]))
	}
	return items
}

// NewCaseStatsResponse maps aggregate counts.
func NewCaseStatsResponse(s *domain.CaseStats) CaseStatsResponse {
	return CaseStatsResponse{
		TotalCases:            s.TotalCases,
		ResolvedCases:         s.ResolvedCases,
		PendingCases:          s.PendingCases,
		CategoryBreakdown:     nonNil(s.CategoryBreakdown),
		PriorityBreakdown:     nonNil(s.PriorityBreakdown),
		DailyBreakdown:        nonNil(s.DailyBreakdown),
		AvgResolutionTimeDays: s.AvgResolutionTimeDays,
	}
}

// NewCaseInsightsResponse maps insights.
func NewCaseInsightsResponse(i *domain.CaseInsights) CaseInsightsResponse {
	return CaseInsightsResponse{
		AvgResolutionTimeDays: i.AvgResolutionTimeDays,
		TopCategory:           i.TopCategory,
		TopCategoryCount:      i.TopCategoryCount,
	}
}

func nonNil(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}
