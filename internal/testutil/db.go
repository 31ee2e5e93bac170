// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"task-manager/internal/repository"
)

// NewDB opens a migrated SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	// One connection keeps concurrent tests clear of SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}
