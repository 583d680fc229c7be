package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the optimization service.
// Configuration can come from a YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (database password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Run queue configuration
	Queue QueueConfig `yaml:"queue"`

	// Solver configuration
	Solver SolverConfig `yaml:"solver"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"scos"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"supply_chain"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// QueueConfig holds work queue settings for optimization runs.
type QueueConfig struct {
	// Workers is the number of runs that may execute concurrently.
	Workers int `yaml:"workers" env:"QUEUE_WORKERS" env-default:"2"`
	// MaxRetries is the number of times a run task is retried after a
	// transient failure before it is abandoned.
	MaxRetries int `yaml:"max_retries" env:"QUEUE_MAX_RETRIES" env-default:"3"`
}

// SolverConfig holds numerical settings for the LP solve.
type SolverConfig struct {
	// Tolerance is the simplex convergence tolerance.
	Tolerance float64 `yaml:"tolerance" env:"SOLVER_TOLERANCE" env-default:"1e-9"`
	// MaterialityThreshold is the minimum solved value for a variable to
	// be written as a result row. Values at or below it are treated as
	// numerical noise.
	MaterialityThreshold float64 `yaml:"materiality_threshold" env:"SOLVER_MATERIALITY_THRESHOLD" env-default:"0.1"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// Load reads configuration from config.yaml (if present) and the
// environment.
func Load(version string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	cfg.Version = version

	if cfg.Queue.Workers < 1 {
		return nil, fmt.Errorf("queue workers must be at least 1, got %d", cfg.Queue.Workers)
	}
	if cfg.Solver.MaterialityThreshold < 0 {
		return nil, fmt.Errorf("materiality threshold must not be negative, got %g", cfg.Solver.MaterialityThreshold)
	}

	return cfg, nil
}
