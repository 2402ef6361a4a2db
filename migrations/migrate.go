package migrations

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/simon-dunk/Degree-Compass/internal/repository"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

const migrationsTable = "schema_migrations_degreeplan"

type templateData struct {
	Courses            string
	DegreeRequirements string
	Students           string
	IndexPrefix        string
}

// Up applies every embedded migration for dialect that has not been
// recorded yet. Table names come from tables and are rendered into each
// script before it runs.
func Up(ctx context.Context, db *sql.DB, dialect repository.Dialect, tables repository.Tables) error {
	if db == nil {
		return errors.New("db is required")
	}
	if err := tables.Validate(); err != nil {
		return err
	}

	if err := ensureMigrationsTable(ctx, db, dialect); err != nil {
		return err
	}

	dir := string(dialect)
	names, err := fs.Glob(files, path.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("list embedded migrations: %w", err)
	}
	sort.Strings(names)

	data := templateData{
		Courses:            tables.Courses,
		DegreeRequirements: tables.DegreeRequirements,
		Students:           tables.Students,
		IndexPrefix:        strings.ReplaceAll(tables.Courses, ".", "_"),
	}

	for _, name := range names {
		filename := path.Base(name)
		applied, err := isApplied(ctx, db, filename)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		script, err := render(name, data)
		if err != nil {
			return err
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", filename, err)
		}

		if _, err := tx.ExecContext(ctx, script); err != nil {
			_ = tx.Rollback()
			if !isIgnorableMigrationError(err) {
				return fmt.Errorf("apply migration %s: %w", filename, err)
			}
			if err := markApplied(ctx, db, filename); err != nil {
				return fmt.Errorf("record migration %s after ignored error: %w", filename, err)
			}
			continue
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO `+migrationsTable+` (filename) VALUES ($1)`,
			filename,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", filename, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", filename, err)
		}
	}

	return nil
}

// Applied lists the recorded migration filenames in order.
func Applied(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT filename FROM `+migrationsTable+` ORDER BY filename ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func render(name string, data templateData) (string, error) {
	raw, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", name, err)
	}
	tmpl, err := template.New(path.Base(name)).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse migration %s: %w", name, err)
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render migration %s: %w", name, err)
	}
	return out.String(), nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB, dialect repository.Dialect) error {
	query := `
CREATE TABLE IF NOT EXISTS ` + migrationsTable + ` (
	filename text PRIMARY KEY,
	applied_at timestamptz NOT NULL DEFAULT now()
)
`
	if dialect == repository.DialectSQLite {
		query = `
CREATE TABLE IF NOT EXISTS ` + migrationsTable + ` (
	filename TEXT PRIMARY KEY,
	applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`
	}
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure migration table %s: %w", migrationsTable, err)
	}
	return nil
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var count int
	if err := db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM `+migrationsTable+` WHERE filename = $1`,
		name,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return count > 0, nil
}

func markApplied(ctx context.Context, db *sql.DB, name string) error {
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO `+migrationsTable+` (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`,
		name,
	)
	return err
}

func isIgnorableMigrationError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case "42P07", // duplicate_table
		"42710", // duplicate_object
		"42P06", // duplicate_schema
		"42701": // duplicate_column
		return true
	default:
		return false
	}
}
