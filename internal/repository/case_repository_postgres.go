package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseflow/triage-service/internal/domain"
)

type postgresCaseRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCaseRepository instantiates the pgx-backed repository.
func NewPostgresCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &postgresCaseRepository{pool: pool}
}

func (r *postgresCaseRepository) Create(ctx context.Context, c *domain.Case) error {
	stampCreatedAt(c)
	const query = `
        INSERT INTO cases (description, email, priority, category, status, escalation_level, created_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		c.Description,
		c.Email,
		string(c.Priority),
		string(c.Category),
		string(c.Status),
		c.EscalationLevel,
		c.CreatedAt,
		c.ResolvedAt,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *postgresCaseRepository) Update(ctx context.Context, c *domain.Case) error {
	const query = `UPDATE cases SET status=$1, escalation_level=$2, resolved_at=$3 WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, string(c.Status), c.EscalationLevel, c.ResolvedAt, c.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCaseNotFound
	}
	return nil
}

func (r *postgresCaseRepository) GetByID(ctx context.Context, id int64) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1`
	c, err := scanPostgresCase(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresCaseRepository) List(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	query, args := listCasesQuery(filter, dollarPlaceholder)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Case{}
	for rows.Next() {
		c, err := scanPostgresCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

const (
	postgresCountsQuery = `
        SELECT COUNT(*),
               COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status <> $1 THEN 1 ELSE 0 END), 0)
        FROM cases`
	postgresDailyQuery = `
        SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
        FROM cases GROUP BY day`
	postgresAvgResolutionQuery = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 86400.0), 0)::float8
        FROM cases WHERE resolved_at IS NOT NULL`
)

func (r *postgresCaseRepository) Stats(ctx context.Context) (*domain.CaseStats, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	stats := domain.NewCaseStats()
	if err := tx.QueryRow(ctx, postgresCountsQuery, string(domain.CaseStatusResolved)).
		Scan(&stats.TotalCases, &stats.ResolvedCases, &stats.PendingCases); err != nil {
		return nil, err
	}
	if err := postgresHistogram(ctx, tx, categoryHistogramQuery, stats.CategoryBreakdown); err != nil {
		return nil, err
	}
	if err := postgresHistogram(ctx, tx, priorityHistogramQuery, stats.PriorityBreakdown); err != nil {
		return nil, err
	}
	if err := postgresHistogram(ctx, tx, postgresDailyQuery, stats.DailyBreakdown); err != nil {
		return nil, err
	}
	if err := tx.QueryRow(ctx, postgresAvgResolutionQuery).Scan(&stats.AvgResolutionTimeDays); err != nil {
		return nil, err
	}
	return stats, tx.Commit(ctx)
}

func (r *postgresCaseRepository) Insights(ctx context.Context) (*domain.CaseInsights, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	insights := &domain.CaseInsights{}
	if err := tx.QueryRow(ctx, postgresAvgResolutionQuery).Scan(&insights.AvgResolutionTimeDays); err != nil {
		return nil, err
	}

	var category string
	var count int64
	err = tx.QueryRow(ctx, topCategoryQuery).Scan(&category, &count)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		insights.TopCategory = &category
		insights.TopCategoryCount = count
	}
	return insights, tx.Commit(ctx)
}

func (r *postgresCaseRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func postgresHistogram(ctx context.Context, tx pgx.Tx, query string, into map[string]int64) error {
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

func scanPostgresCase(row pgx.Row) (*domain.Case, error) {
	var c domain.Case
	var priority, category, status string
	if err := row.Scan(
		&c.ID,
		&c.Description,
		&c.Email,
		&priority,
		&category,
		&status,
		&c.EscalationLevel,
		&c.CreatedAt,
		&c.ResolvedAt,
	); err != nil {
		return nil, err
	}
	c.Priority = domain.CasePriority(priority)
	c.Category = domain.CaseCategory(category)
	c.Status = domain.CaseStatus(status)
	c.CreatedAt = c.CreatedAt.UTC()
	if c.ResolvedAt != nil {
		resolved := c.ResolvedAt.UTC()
		c.ResolvedAt = &resolved
	}
	return &c, nil
}
