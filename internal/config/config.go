// Package config loads the service configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/simon-dunk/Degree-Compass/internal/repository"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Tables   TablesConfig   `yaml:"tables"`
	Logging  LoggingConfig  `yaml:"logging"`
	Planner  PlannerConfig  `yaml:"planner"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	BatchSize       int           `yaml:"batch_size"`
}

type TablesConfig struct {
	Courses            string `yaml:"courses"`
	DegreeRequirements string `yaml:"degree_requirements"`
	Students           string `yaml:"students"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PlannerConfig struct {
	DefaultSemesters int `yaml:"default_semesters"`
	MaxCredits       int `yaml:"max_credits"`
}

// Error reports a setting that could not be used.
type Error struct {
	Field string
	Value string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("config: invalid %s %q", e.Field, e.Value)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Default() *Config {
	tables := repository.DefaultTables()
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          string(repository.DialectSQLite),
			URL:             "degreeplan.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			BatchSize:       repository.DefaultBatchSize,
		},
		Tables: TablesConfig{
			Courses:            tables.Courses,
			DegreeRequirements: tables.DegreeRequirements,
			Students:           tables.Students,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Planner: PlannerConfig{
			DefaultSemesters: 8,
			MaxCredits:       15,
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	setString("DATABASE_DRIVER", &c.Database.Driver)
	setString("DATABASE_URL", &c.Database.URL)
	setString("HTTP_ADDR", &c.HTTP.Addr)
	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FORMAT", &c.Logging.Format)
	setString("TABLE_COURSES", &c.Tables.Courses)
	setString("TABLE_DEGREE_REQS", &c.Tables.DegreeRequirements)
	setString("TABLE_STUDENTS", &c.Tables.Students)

	ints := []struct {
		key string
		dst *int
	}{
		{"DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns},
		{"DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns},
		{"STORE_BATCH_SIZE", &c.Database.BatchSize},
		{"PLANNER_DEFAULT_SEMESTERS", &c.Planner.DefaultSemesters},
	}
	for _, item := range ints {
		value := os.Getenv(item.key)
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return &Error{Field: item.key, Value: value, Err: err}
		}
		*item.dst = parsed
	}

	if value := os.Getenv("DB_CONN_MAX_LIFETIME"); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return &Error{Field: "DB_CONN_MAX_LIFETIME", Value: value, Err: err}
		}
		c.Database.ConnMaxLifetime = parsed
	}
	return nil
}

func setString(key string, dst *string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func (c *Config) Validate() error {
	if _, err := repository.ParseDialect(c.Database.Driver); err != nil {
		return &Error{Field: "database.driver", Value: c.Database.Driver, Err: err}
	}
	if c.Database.URL == "" {
		return &Error{Field: "database.url", Value: c.Database.URL, Err: errors.New("must be set")}
	}
	if c.Database.BatchSize <= 0 {
		return &Error{Field: "database.batch_size", Value: strconv.Itoa(c.Database.BatchSize), Err: errors.New("must be positive")}
	}
	if c.Planner.DefaultSemesters <= 0 {
		return &Error{Field: "planner.default_semesters", Value: strconv.Itoa(c.Planner.DefaultSemesters), Err: errors.New("must be positive")}
	}
	if c.Planner.MaxCredits <= 0 {
		return &Error{Field: "planner.max_credits", Value: strconv.Itoa(c.Planner.MaxCredits), Err: errors.New("must be positive")}
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return &Error{Field: "logging.format", Value: c.Logging.Format, Err: errors.New("want json or console")}
	}
	if err := c.StoreTables().Validate(); err != nil {
		return &Error{Field: "tables", Value: fmt.Sprintf("%+v", c.Tables), Err: err}
	}
	return nil
}

func (c *Config) StoreTables() repository.Tables {
	return repository.Tables{
		Courses:            c.Tables.Courses,
		DegreeRequirements: c.Tables.DegreeRequirements,
		Students:           c.Tables.Students,
	}
}

// StoreSettings is what the repositories are constructed with.
func (c *Config) StoreSettings() (repository.Settings, error) {
	dialect, err := repository.ParseDialect(c.Database.Driver)
	if err != nil {
		return repository.Settings{}, &Error{Field: "database.driver", Value: c.Database.Driver, Err: err}
	}
	return repository.Settings{
		Dialect:   dialect,
		Tables:    c.StoreTables(),
		BatchSize: c.Database.BatchSize,
	}, nil
}

func (c *Config) PoolSettings() repository.PoolSettings {
	return repository.PoolSettings{
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}
