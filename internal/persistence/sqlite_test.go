package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caseflow/triage-service/internal/config"
)

func TestNewSQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cases.db")

	store, err := NewSQLite(ctx, config.SQLiteConfig{Path: path}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(ctx))

	var name string
	err = store.DB.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='cases'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "cases", name)

	// Re-running the schema on an existing database is a no-op.
	require.NoError(t, RunSQLiteMigrations(ctx, store.DB, zap.NewNop()))
}

func TestNewSQLiteRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLite(context.Background(), config.SQLiteConfig{}, zap.NewNop())
	require.Error(t, err)
}

func TestNilHandles(t *testing.T) {
	var pg *Postgres
	var lite *SQLite

	assert.Error(t, pg.Ping(context.Background()))
	assert.Error(t, lite.Ping(context.Background()))
	assert.Nil(t, pg.PoolHandle())
	assert.NotPanics(t, func() {
		pg.Close()
		lite.Close()
	})
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "cases.db?_time_format=sqlite", sqliteDSN("cases.db"))
	assert.Equal(t, "file:cases.db?mode=rwc&_time_format=sqlite", sqliteDSN("file:cases.db?mode=rwc"))
}

func TestSQLiteTimestampsReadableByDateFunctions(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "cases.db")}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	resolved := created.Add(48 * time.Hour)
	_, err = store.DB.ExecContext(ctx, `
        INSERT INTO cases (description, email, priority, category, status, escalation_level, created_at, resolved_at)
        VALUES ('d', 'test@example.com', 'High', 'Fraud', 'Resolved', 0, ?, ?)`, created, resolved)
	require.NoError(t, err)

	var day sql.NullString
	var days sql.NullFloat64
	err = store.DB.QueryRowContext(ctx,
		`SELECT date(created_at), julianday(resolved_at) - julianday(created_at) FROM cases`).Scan(&day, &days)
	require.NoError(t, err)
	require.True(t, day.Valid)
	require.True(t, days.Valid)
	assert.Equal(t, "2025-03-01", day.String)
	assert.InDelta(t, 2.0, days.Float64, 1e-9)

	var back time.Time
	require.NoError(t, store.DB.QueryRowContext(ctx, `SELECT created_at FROM cases`).Scan(&back))
	assert.True(t, created.Equal(back))
}
