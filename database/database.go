// Package database opens the shared SQLite store used by the catalog, the
// sales ledger and the settings singleton.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/footwear-pos/domain/catalog"
	"github.com/example/footwear-pos/domain/ledger"
	"github.com/example/footwear-pos/domain/settings"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open creates the SQLite connection. The pool is capped at one connection:
// SQLite allows a single writer, and an in-memory database only lives as long
// as its connection.
func Open(path string, logMode bool) (*gorm.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	logLevel := logger.Silent
	if logMode {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if path != MemoryPath {
		_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
		_, _ = sqlDB.Exec("PRAGMA synchronous = NORMAL;")
	}

	return db, nil
}

// Migrate creates or updates the products, sales and settings tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&catalog.Product{}, &ledger.Sale{}, &settings.Settings{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// OpenMemory returns a migrated in-memory database, used by tests across
// packages.
func OpenMemory() (*gorm.DB, error) {
	db, err := Open(MemoryPath, false)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}
