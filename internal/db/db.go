package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func Init(driver, connection string) (*sqlx.DB, error) {
	// SQLite: create data directory if needed
	if driver == "sqlite" {
		path, _, _ := strings.Cut(connection, "?")
		dir := filepath.Dir(path)
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		connection = withForeignKeys(connection)
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	// Connection pool configuration (good defaults for all drivers)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected", "driver", driver)

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Deleting a call relies on ON DELETE CASCADE for its comments and attachments
	if driver == "sqlite" {
		var enabled int
		err = db.Get(&enabled, `PRAGMA foreign_keys`)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to read foreign_keys pragma: %w", err)
		}
		if enabled != 1 {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite foreign keys are disabled")
		}
	}

	return db, nil
}

// withForeignKeys adds the foreign_keys pragma to a SQLite DSN unless the DSN
// already sets it. modernc applies _pragma parameters on every new connection.
func withForeignKeys(dsn string) string {
	_, query, _ := strings.Cut(dsn, "?")
	for _, param := range strings.Split(query, "&") {
		if strings.HasPrefix(strings.ToLower(param), "_pragma=foreign_keys") {
			return dsn
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Open connects and brings the schema up to date.
func Open(driver, connection string) (*sqlx.DB, error) {
	database, err := Init(driver, connection)
	if err != nil {
		return nil, err
	}

	err = RunMigrations(database.DB, driver)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	return database, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
