// Package storetest opens throwaway SQLite stores for package tests.
package storetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simon-dunk/Degree-Compass/internal/repository"
	"github.com/simon-dunk/Degree-Compass/migrations"
)

// Open returns a migrated SQLite database in t's temp dir and the settings
// the repositories should use with it. The database is closed on cleanup.
func Open(t testing.TB) (*sql.DB, repository.Settings) {
	t.Helper()

	settings := repository.Settings{
		Dialect:   repository.DialectSQLite,
		Tables:    repository.DefaultTables(),
		BatchSize: repository.DefaultBatchSize,
	}

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "degreeplan.db")
	db, err := repository.Open(ctx, settings.Dialect, dsn, repository.PoolSettings{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(ctx, db, settings.Dialect, settings.Tables))
	return db, settings
}
