package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func ParseDialect(value string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", value)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectSQLite {
		return "sqlite"
	}
	return "pgx"
}

func (d Dialect) txOptions() *sql.TxOptions {
	if d == DialectSQLite {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}

type Tables struct {
	Courses            string
	DegreeRequirements string
	Students           string
}

func DefaultTables() Tables {
	return Tables{
		Courses:            "course_database",
		DegreeRequirements: "degree_requirements",
		Students:           "student_database",
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether name can be spliced into SQL as a table
// name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func (t Tables) Validate() error {
	for _, name := range []string{t.Courses, t.DegreeRequirements, t.Students} {
		if !ValidIdentifier(name) {
			return fmt.Errorf("invalid table name %q", name)
		}
	}
	return nil
}

const DefaultBatchSize = 100

type Settings struct {
	Dialect   Dialect
	Tables    Tables
	BatchSize int
}

func (s Settings) batchSize() int {
	if s.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return s.BatchSize
}

type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open opens and pings the database for dialect. SQLite is limited to one
// connection so writers never race on the file lock.
func Open(ctx context.Context, dialect Dialect, dsn string, pool PoolSettings) (*sql.DB, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	} else {
		if pool.MaxOpenConns > 0 {
			db.SetMaxOpenConns(pool.MaxOpenConns)
		}
		if pool.MaxIdleConns > 0 {
			db.SetMaxIdleConns(pool.MaxIdleConns)
		}
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

type Repositories struct {
	Courses  CourseRepository
	Rules    RuleRepository
	Students StudentRepository
}

func NewRepositories(execer Execer, settings Settings) Repositories {
	return Repositories{
		Courses:  NewCourseSQLRepository(execer, settings),
		Rules:    NewRuleSQLRepository(execer, settings),
		Students: NewStudentSQLRepository(execer, settings),
	}
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
