package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caseflow/triage-service/internal/domain"
)

// ErrCaseNotFound is returned when no case matches the requested id.
var ErrCaseNotFound = errors.New("case not found")

// CaseFilter narrows case listings. Empty fields are ignored; set fields are ANDed.
type CaseFilter struct {
	Status   domain.CaseStatus
	Priority domain.CasePriority
	Category domain.CaseCategory
}

// CaseRepository encapsulates case persistence.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	Update(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id int64) (*domain.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]domain.Case, error)
	Stats(ctx context.Context) (*domain.CaseStats, error)
	Insights(ctx context.Context) (*domain.CaseInsights, error)
	Ping(ctx context.Context) error
}

const caseColumns = `id, description, email, priority, category, status, escalation_level, created_at, resolved_at`

const (
	categoryHistogramQuery = `SELECT category, COUNT(*) FROM cases GROUP BY category`
	priorityHistogramQuery = `SELECT priority, COUNT(*) FROM cases GROUP BY priority`
	topCategoryQuery       = `SELECT category, COUNT(*) AS n FROM cases GROUP BY category ORDER BY n DESC, category ASC LIMIT 1`
)

// buildCaseWhere renders the WHERE clause for filter using the driver's placeholder style.
func buildCaseWhere(filter CaseFilter, placeholder func(n int) string) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=%s", placeholder(len(args))))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		clauses = append(clauses, fmt.Sprintf("priority=%s", placeholder(len(args))))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		clauses = append(clauses, fmt.Sprintf("category=%s", placeholder(len(args))))
	}
	return strings.Join(clauses, " AND "), args
}

func listCasesQuery(filter CaseFilter, placeholder func(n int) string) (string, []any) {
	where, args := buildCaseWhere(filter, placeholder)
	return fmt.Sprintf(`SELECT %s FROM cases WHERE %s ORDER BY created_at DESC, id DESC`, caseColumns, where), args
}

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// stampCreatedAt fills CreatedAt so both drivers persist the same instant the caller sees.
func stampCreatedAt(c *domain.Case) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
}
