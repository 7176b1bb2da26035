package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/caseflow/triage-service/internal/domain"
)

type sqliteCaseRepository struct {
	db *sql.DB
}

// NewSQLiteCaseRepository instantiates the database/sql repository for the embedded store.
func NewSQLiteCaseRepository(db *sql.DB) CaseRepository {
	return &sqliteCaseRepository{db: db}
}

func (r *sqliteCaseRepository) Create(ctx context.Context, c *domain.Case) error {
	stampCreatedAt(c)
	const query = `
        INSERT INTO cases (description, email, priority, category, status, escalation_level, created_at, resolved_at)
        VALUES (?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, query,
		c.Description,
		c.Email,
		string(c.Priority),
		string(c.Category),
		string(c.Status),
		c.EscalationLevel,
		c.CreatedAt.UTC(),
		nullTime(c.ResolvedAt),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *sqliteCaseRepository) Update(ctx context.Context, c *domain.Case) error {
	const query = `UPDATE cases SET status=?, escalation_level=?, resolved_at=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, query, string(c.Status), c.EscalationLevel, nullTime(c.ResolvedAt), c.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCaseNotFound
	}
	return nil
}

func (r *sqliteCaseRepository) GetByID(ctx context.Context, id int64) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=?`
	c, err := scanSQLiteCase(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *sqliteCaseRepository) List(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	query, args := listCasesQuery(filter, questionPlaceholder)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Case{}
	for rows.Next() {
		c, err := scanSQLiteCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

const (
	sqliteCountsQuery = `
        SELECT COUNT(*),
               COALESCE(SUM(CASE WHEN status = ?1 THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status <> ?1 THEN 1 ELSE 0 END), 0)
        FROM cases`
	sqliteDailyQuery = `
        SELECT date(created_at) AS day, COUNT(*)
        FROM cases GROUP BY day`
	sqliteAvgResolutionQuery = `
        SELECT COALESCE(AVG(julianday(resolved_at) - julianday(created_at)), 0.0)
        FROM cases WHERE resolved_at IS NOT NULL`
)

func (r *sqliteCaseRepository) Stats(ctx context.Context) (*domain.CaseStats, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	stats := domain.NewCaseStats()
	if err := tx.QueryRowContext(ctx, sqliteCountsQuery, string(domain.CaseStatusResolved)).
		Scan(&stats.TotalCases, &stats.ResolvedCases, &stats.PendingCases); err != nil {
		return nil, err
	}
	if err := sqliteHistogram(ctx, tx, categoryHistogramQuery, stats.CategoryBreakdown); err != nil {
		return nil, err
	}
	if err := sqliteHistogram(ctx, tx, priorityHistogramQuery, stats.PriorityBreakdown); err != nil {
		return nil, err
	}
	if err := sqliteHistogram(ctx, tx, sqliteDailyQuery, stats.DailyBreakdown); err != nil {
		return nil, err
	}
	if err := tx.QueryRowContext(ctx, sqliteAvgResolutionQuery).Scan(&stats.AvgResolutionTimeDays); err != nil {
		return nil, err
	}
	return stats, tx.Commit()
}

func (r *sqliteCaseRepository) Insights(ctx context.Context) (*domain.CaseInsights, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	insights := &domain.CaseInsights{}
	if err := tx.QueryRowContext(ctx, sqliteAvgResolutionQuery).Scan(&insights.AvgResolutionTimeDays); err != nil {
		return nil, err
	}

	var category string
	var count int64
	err = tx.QueryRowContext(ctx, topCategoryQuery).Scan(&category, &count)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		insights.TopCategory = &category
		insights.TopCategoryCount = count
	}
	return insights, tx.Commit()
}

func (r *sqliteCaseRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func sqliteHistogram(ctx context.Context, tx *sql.Tx, query string, into map[string]int64) error {
	rows, err := tx.QueryContext(ctx, query)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCase(row rowScanner) (*domain.Case, error) {
	var c domain.Case
	var priority, category, status string
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&c.ID,
		&c.Description,
		&c.Email,
		&priority,
		&category,
		&status,
		&c.EscalationLevel,
		&c.CreatedAt,
		&resolvedAt,
	); err != nil {
		return nil, err
	}
	c.Priority = domain.CasePriority(priority)
	c.Category = domain.CaseCategory(category)
	c.Status = domain.CaseStatus(status)
	c.CreatedAt = c.CreatedAt.UTC()
	if resolvedAt.Valid {
		resolved := resolvedAt.Time.UTC()
		c.ResolvedAt = &resolved
	}
	return &c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
