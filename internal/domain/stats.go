package domain

// CaseStats aggregates counts over the whole case table.
type CaseStats struct {
	TotalCases            int64
	ResolvedCases         int64
	PendingCases          int64
	CategoryBreakdown     map[string]int64
	PriorityBreakdown     map[string]int64
	DailyBreakdown        map[string]int64
	AvgResolutionTimeDays float64
}

// CaseInsights summarizes resolution speed and the dominant category.
type CaseInsights struct {
	AvgResolutionTimeDays float64
	TopCategory           *string
	TopCategoryCount      int64
}

// NewCaseStats returns zeroed stats with non-nil histograms.
func NewCaseStats() *CaseStats {
	return &CaseStats{
		CategoryBreakdown: map[string]int64{},
		PriorityBreakdown: map[string]int64{},
		DailyBreakdown:    map[string]int64{},
	}
}
