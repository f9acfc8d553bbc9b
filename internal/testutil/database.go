// Package testutil provides test helpers backed by the real client-local
// database.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/buildtrack/internal/service"
	"github.com/Veraticus/buildtrack/internal/storage"
)

// TestDB is a migrated in-memory database closed when the test ends.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	s, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return &TestDB{Storage: s, t: t}
}

// SetupConnectedDB creates a database that already remembers spreadsheetID.
func SetupConnectedDB(t *testing.T, spreadsheetID string) *TestDB {
	t.Helper()

	db := SetupTestDB(t)
	if err := db.Storage.IDStore().Save(context.Background(), spreadsheetID); err != nil {
		t.Fatalf("failed to save spreadsheet id: %v", err)
	}
	return db
}

// MustPending returns the queued ops for spreadsheetID or fails the test.
func (db *TestDB) MustPending(spreadsheetID string) []service.PendingOp {
	db.t.Helper()

	ops, err := db.Storage.Outbox().Pending(context.Background(), spreadsheetID)
	if err != nil {
		db.t.Fatalf("failed to read outbox: %v", err)
	}
	return ops
}

// MustSpreadsheetID returns the stored spreadsheet identifier or fails the test.
func (db *TestDB) MustSpreadsheetID() string {
	db.t.Helper()

	id, err := db.Storage.IDStore().Load(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load spreadsheet id: %v", err)
	}
	return id
}
