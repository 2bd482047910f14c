// Package storetest opens throwaway SQLite databases for package tests.
package storetest

import (
	"path/filepath"
	"testing"

	"attendance-monitor/internal/logger"
	"attendance-monitor/internal/store"
)

// Open returns a migrated SQLite database living in t.TempDir. It is closed
// when the test ends.
func Open(t testing.TB, models ...any) *store.DB {
	t.Helper()

	db, err := store.NewDB("sqlite", filepath.Join(t.TempDir(), "test.db"), logger.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if len(models) > 0 {
		if err := db.Migrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}
