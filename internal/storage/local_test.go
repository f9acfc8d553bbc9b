package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/service"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

func TestIDStore(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	ids := store.IDStore()

	id, err := ids.Load(ctx)
	if err != nil || id != "" {
		t.Fatalf("Load() on empty store = %q, %v; want \"\", nil", id, err)
	}

	for _, want := range []string{"sheet-1", "sheet-2"} {
		if err := ids.Save(ctx, want); err != nil {
			t.Fatalf("Save(%q) error = %v", want, err)
		}
		got, err := ids.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != want {
			t.Errorf("Load() = %q, want %q", got, want)
		}
	}

	if err := ids.Save(ctx, ""); !errors.Is(err, ErrEmptyString) {
		t.Errorf("Save(\"\") error = %v, want %v", err, ErrEmptyString)
	}

	if err := ids.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, _ := ids.Load(ctx); got != "" {
		t.Errorf("Load() after Clear = %q, want \"\"", got)
	}
}

func TestOutboxLifecycle(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	outbox := store.Outbox()

	created := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
	first := &service.PendingOp{
		SpreadsheetID: "sheet-1",
		CreatedAt:     created,
		Ops: []service.RowOp{
			{Kind: sheets.OpAppend, Collection: sheets.Payments, RecordID: "pay1", Row: sheets.Row{"pay1", "2024-01-15"}},
			{Kind: sheets.OpUpdate, Collection: sheets.Bills, RecordID: "b1", Row: sheets.Row{"b1", "INV-1"}},
		},
	}
	second := &service.PendingOp{
		SpreadsheetID: "sheet-1",
		Ops:           []service.RowOp{{Kind: sheets.OpDelete, Collection: sheets.Projects, RecordID: "p1"}},
	}
	other := &service.PendingOp{
		SpreadsheetID: "sheet-2",
		Ops:           []service.RowOp{{Kind: sheets.OpDelete, Collection: sheets.Projects, RecordID: "p9"}},
	}
	for _, op := range []*service.PendingOp{first, second, other} {
		if err := outbox.Enqueue(ctx, op); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("Enqueue() ids = %d, %d; want increasing", first.ID, second.ID)
	}

	pending, err := outbox.Pending(ctx, "sheet-1")
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Pending() returned %d ops, want 2", len(pending))
	}
	if !reflect.DeepEqual(pending[0].Ops, first.Ops) {
		t.Errorf("Pending()[0].Ops = %+v, want %+v", pending[0].Ops, first.Ops)
	}
	if !pending[0].CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", pending[0].CreatedAt, created)
	}
	if pending[1].ID != second.ID {
		t.Errorf("Pending()[1].ID = %d, want %d", pending[1].ID, second.ID)
	}

	if err := outbox.MarkFailed(ctx, first.ID, errors.New("offline")); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
	if err := outbox.MarkFailed(ctx, 9999, errors.New("offline")); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("MarkFailed(unknown) error = %v, want %v", err, common.ErrNotFound)
	}

	pending, _ = outbox.Pending(ctx, "sheet-1")
	if pending[0].Attempts != 1 || pending[0].LastError != "offline" {
		t.Errorf("after MarkFailed attempts=%d last_error=%q", pending[0].Attempts, pending[0].LastError)
	}

	if err := outbox.Remove(ctx, first.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	pending, _ = outbox.Pending(ctx, "sheet-1")
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Errorf("after Remove pending = %+v", pending)
	}

	if err := outbox.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, id := range []string{"sheet-1", "sheet-2"} {
		if pending, _ := outbox.Pending(ctx, id); len(pending) != 0 {
			t.Errorf("Pending(%s) after Clear = %d ops", id, len(pending))
		}
	}
}

func TestOutboxRejectsInvalidOp(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.Outbox().Enqueue(context.Background(), &service.PendingOp{SpreadsheetID: "sheet-1"})
	if !errors.Is(err, ErrEmptySlice) {
		t.Errorf("Enqueue() error = %v, want %v", err, ErrEmptySlice)
	}
}

func TestSnapshotCache(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	cache := store.Snapshots()

	empty, err := cache.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("LoadSnapshot() on empty cache = %v", empty)
	}

	rows := map[sheets.Collection][]sheets.Row{
		sheets.Projects: {
			{"p1", "Villa", "Rao"},
			{"p2", "Clinic", "Iyer"},
		},
		sheets.Transactions: {
			{"t1", "2024-01-15", "deposit", "", "500", "bank"},
		},
	}
	if err := cache.SaveSnapshot(ctx, rows); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := cache.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("LoadSnapshot() = %v, want %v", got, rows)
	}

	replaced := map[sheets.Collection][]sheets.Row{
		sheets.Bills: {{"b1"}},
	}
	if err := cache.SaveSnapshot(ctx, replaced); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	got, _ = cache.LoadSnapshot(ctx)
	if !reflect.DeepEqual(got, replaced) {
		t.Errorf("LoadSnapshot() after replace = %v, want %v", got, replaced)
	}

	bad := map[sheets.Collection][]sheets.Row{"Invoices": {{"x"}}}
	if err := cache.SaveSnapshot(ctx, bad); !errors.Is(err, ErrUnknownSheet) {
		t.Errorf("SaveSnapshot(unknown) error = %v, want %v", err, ErrUnknownSheet)
	}
	got, _ = cache.LoadSnapshot(ctx)
	if !reflect.DeepEqual(got, replaced) {
		t.Errorf("failed save changed the cache: %v", got)
	}
}
