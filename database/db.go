package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite" // SQLite driver

	"transport-net/config"
)

// Dialect selects the SQL flavor spoken by a connection.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Connect opens the database selected by cfg.DBDriver and waits until it
// answers a ping.
func Connect(cfg *config.Config, logger *slog.Logger) (*sql.DB, Dialect, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	switch cfg.DBDriver {
	case config.DriverPostgres:
		connStr := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
		)
		db, err = sql.Open("postgres", connStr)
		dialect = Postgres
		if err == nil {
			// Configure connection pool
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)
		}
	case config.DriverSQLite:
		db, err = OpenSQLite(cfg.SQLitePath)
		dialect = SQLite
	default:
		return nil, "", fmt.Errorf("driver %q has no database connection", cfg.DBDriver)
	}
	if err != nil {
		return nil, "", fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection with retries
	attempts := cfg.DBMaxRetries
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		err = db.Ping()
		if err == nil {
			logger.Info("connected to database", "driver", cfg.DBDriver)
			return db, dialect, nil
		}
		logger.Warn("failed to connect to database", "attempt", i+1, "of", attempts, "error", err)
		if i+1 < attempts {
			time.Sleep(2 * time.Second)
		}
	}

	db.Close()
	return nil, "", fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
}

// OpenSQLite opens a SQLite database file with foreign keys enforced.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer
	return db, nil
}
