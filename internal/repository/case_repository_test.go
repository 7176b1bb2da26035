package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caseflow/triage-service/internal/config"
	"github.com/caseflow/triage-service/internal/domain"
	"github.com/caseflow/triage-service/internal/persistence"
	"github.com/caseflow/triage-service/internal/repository"
)

func newSQLiteRepo(t *testing.T) repository.CaseRepository {
	t.Helper()
	store, err := persistence.NewSQLite(context.Background(),
		config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "cases.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return repository.NewSQLiteCaseRepository(store.DB)
}

// Postgres tests run only when TEST_POSTGRES_DSN points at a disposable database.
func newPostgresRepo(t *testing.T) repository.CaseRepository {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping postgres integration test")
	}
	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, RunMigrations: true}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pg.Close)
	_, err = pg.Pool.Exec(ctx, `TRUNCATE cases RESTART IDENTITY`)
	require.NoError(t, err)
	return repository.NewPostgresCaseRepository(pg.Pool)
}

func TestSQLiteCaseRepository(t *testing.T) {
	runCaseRepositorySuite(t, newSQLiteRepo)
}

func TestPostgresCaseRepository(t *testing.T) {
	runCaseRepositorySuite(t, newPostgresRepo)
}

func runCaseRepositorySuite(t *testing.T, newRepo func(t *testing.T) repository.CaseRepository) {
	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newCase("Unauthorized transaction", domain.CategoryFraud, domain.CasePriorityHigh, domain.CaseStatusPending)
		require.NoError(t, repo.Create(ctx, c))
		assert.NotZero(t, c.ID)
		assert.False(t, c.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, "Unauthorized transaction", got.Description)
		assert.Equal(t, "test@example.com", got.Email)
		assert.Equal(t, domain.CasePriorityHigh, got.Priority)
		assert.Equal(t, domain.CategoryFraud, got.Category)
		assert.Equal(t, domain.CaseStatusPending, got.Status)
		assert.Equal(t, 0, got.EscalationLevel)
		assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
		assert.Nil(t, got.ResolvedAt)
	})

	t.Run("ids are sequential", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := newCase("one", domain.CategoryVerification, domain.CasePriorityLow, domain.CaseStatusPending)
		second := newCase("two", domain.CategoryVerification, domain.CasePriorityLow, domain.CaseStatusPending)
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(context.Background(), 999999)
		assert.ErrorIs(t, err, repository.ErrCaseNotFound)
	})

	t.Run("update persists mutable fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newCase("Cannot log in", domain.CategoryAccountAccess, domain.CasePriorityMedium, domain.CaseStatusPending)
		require.NoError(t, repo.Create(ctx, c))

		resolvedAt := c.CreatedAt.Add(36 * time.Hour)
		c.Status = domain.CaseStatusResolved
		c.EscalationLevel = 1
		c.ResolvedAt = &resolvedAt
		require.NoError(t, repo.Update(ctx, c))

		got, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CaseStatusResolved, got.Status)
		assert.Equal(t, 1, got.EscalationLevel)
		require.NotNil(t, got.ResolvedAt)
		assert.True(t, resolvedAt.Equal(*got.ResolvedAt))
	})

	t.Run("update missing", func(t *testing.T) {
		repo := newRepo(t)
		c := &domain.Case{ID: 424242, Status: domain.CaseStatusResolved}
		assert.ErrorIs(t, repo.Update(context.Background(), c), repository.ErrCaseNotFound)
	})

	t.Run("list orders newest first and filters", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

		seed := []*domain.Case{
			newCase("a", domain.CategoryFraud, domain.CasePriorityHigh, domain.CaseStatusResolved),
			newCase("b", domain.CategoryAccountAccess, domain.CasePriorityHigh, domain.CaseStatusPending),
			newCase("c", domain.CategoryAccountAccess, domain.CasePriorityLow, domain.CaseStatusPending),
			newCase("d", domain.CategoryVerification, domain.CasePriorityHigh, domain.CaseStatusEscalated),
		}
		for i, c := range seed {
			c.CreatedAt = base.Add(time.Duration(i) * time.Hour)
			require.NoError(t, repo.Create(ctx, c))
		}

		all, err := repo.List(ctx, repository.CaseFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "c", "b", "a"}, descriptions(all))

		high, err := repo.List(ctx, repository.CaseFilter{Priority: domain.CasePriorityHigh})
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "b", "a"}, descriptions(high))

		pendingAccess, err := repo.List(ctx, repository.CaseFilter{
			Status:   domain.CaseStatusPending,
			Category: domain.CategoryAccountAccess,
			Priority: domain.CasePriorityLow,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, descriptions(pendingAccess))

		none, err := repo.List(ctx, repository.CaseFilter{Category: domain.CategoryGeneralInquiry})
		require.NoError(t, err)
		assert.Empty(t, none)
		assert.NotNil(t, none)
	})

	t.Run("stats on empty store", func(t *testing.T) {
		repo := newRepo(t)

		stats, err := repo.Stats(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.TotalCases)
		assert.Zero(t, stats.ResolvedCases)
		assert.Zero(t, stats.PendingCases)
		assert.Empty(t, stats.CategoryBreakdown)
		assert.Empty(t, stats.PriorityBreakdown)
		assert.Empty(t, stats.DailyBreakdown)
		assert.Zero(t, stats.AvgResolutionTimeDays)

		insights, err := repo.Insights(context.Background())
		require.NoError(t, err)
		assert.Nil(t, insights.TopCategory)
		assert.Zero(t, insights.TopCategoryCount)
		assert.Zero(t, insights.AvgResolutionTimeDays)
	})

	t.Run("stats and insights", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		day1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		day2 := time.Date(2025, 3, 2, 15, 30, 0, 0, time.UTC)

		fraud := newCase("fraud", domain.CategoryFraud, domain.CasePriorityHigh, domain.CaseStatusResolved)
		fraud.CreatedAt = day1
		fraud.ResolvedAt = timePtr(day1.Add(24 * time.Hour))

		inquiry := newCase("inquiry", domain.CategoryGeneralInquiry, domain.CasePriorityLow, domain.CaseStatusResolved)
		inquiry.CreatedAt = day1.Add(time.Hour)
		inquiry.ResolvedAt = timePtr(inquiry.CreatedAt.Add(72 * time.Hour))

		access1 := newCase("access 1", domain.CategoryAccountAccess, domain.CasePriorityHigh, domain.CaseStatusEscalated)
		access1.CreatedAt = day2
		access2 := newCase("access 2", domain.CategoryAccountAccess, domain.CasePriorityMedium, domain.CaseStatusVerificationRequested)
		access2.CreatedAt = day2.Add(time.Minute)

		for _, c := range []*domain.Case{fraud, inquiry, access1, access2} {
			require.NoError(t, repo.Create(ctx, c))
		}

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), stats.TotalCases)
		assert.Equal(t, int64(2), stats.ResolvedCases)
		assert.Equal(t, int64(2), stats.PendingCases)
		assert.Equal(t, map[string]int64{"Fraud": 1, "General Inquiry": 1, "Account Access": 2}, stats.CategoryBreakdown)
		assert.Equal(t, map[string]int64{"High": 2, "Low": 1, "Medium": 1}, stats.PriorityBreakdown)
		assert.Equal(t, map[string]int64{"2025-03-01": 2, "2025-03-02": 2}, stats.DailyBreakdown)
		assert.InDelta(t, 2.0, stats.AvgResolutionTimeDays, 1e-6)

		insights, err := repo.Insights(ctx)
		require.NoError(t, err)
		require.NotNil(t, insights.TopCategory)
		assert.Equal(t, "Account Access", *insights.TopCategory)
		assert.Equal(t, int64(2), insights.TopCategoryCount)
		assert.InDelta(t, 2.0, insights.AvgResolutionTimeDays, 1e-6)
	})

	t.Run("ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})
}

func newCase(description string, category domain.CaseCategory, priority domain.CasePriority, status domain.CaseStatus) *domain.Case {
	return &domain.Case{
		Description: description,
		Email:       "test@example.com",
		Priority:    priority,
		Category:    category,
		Status:      status,
	}
}

func descriptions(cases []domain.Case) []string {
	out := make([]string, 0, len(cases))
	for _, c := range cases {
		out = append(out, c.Description)
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	return &t
}
