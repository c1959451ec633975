// Package storetest provides a migrated in-memory database for tests.
package storetest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NEPJU/APIs/internal/store"
)

// New returns a fresh, migrated SQLite database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	// _time_format=sqlite stores timestamps in a form DATE() understands
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_time_format=sqlite"
	db, err := gorm.Open(sqlite.Open(dsn), store.GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises
	// access the way a single transaction would see it.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
