package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/service"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

// MemoryOutbox is a process-local service.Outbox.
type MemoryOutbox struct {
	ops    []service.PendingOp
	nextID int64
	mu     sync.Mutex
}

// NewMemoryOutbox returns an empty outbox.
func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{}
}

// Enqueue implements service.Outbox.
func (o *MemoryOutbox) Enqueue(_ context.Context, op *service.PendingOp) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	op.ID = o.nextID
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	stored := *op
	stored.Ops = slices.Clone(op.Ops)
	o.ops = append(o.ops, stored)
	return nil
}

// Pending implements service.Outbox.
func (o *MemoryOutbox) Pending(_ context.Context, spreadsheetID string) ([]service.PendingOp, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []service.PendingOp
	for _, op := range o.ops {
		if op.SpreadsheetID == spreadsheetID {
			out = append(out, op)
		}
	}
	return out, nil
}

// Remove implements service.Outbox.
func (o *MemoryOutbox) Remove(_ context.Context, id int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.ops = slices.DeleteFunc(o.ops, func(op service.PendingOp) bool { return op.ID == id })
	return nil
}

// MarkFailed implements service.Outbox.
func (o *MemoryOutbox) MarkFailed(_ context.Context, id int64, cause error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := range o.ops {
		if o.ops[i].ID == id {
			o.ops[i].Attempts++
			o.ops[i].LastError = cause.Error()
			return nil
		}
	}
	return fmt.Errorf("outbox op %d: %w", id, common.ErrNotFound)
}

// Clear implements service.Outbox.
func (o *MemoryOutbox) Clear(_ context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.ops = nil
	return nil
}

// MemoryIDStore is a process-local service.IDStore.
type MemoryIDStore struct {
	id string
	mu sync.Mutex
}

// NewMemoryIDStore returns a store holding spreadsheetID, which may be "".
func NewMemoryIDStore(spreadsheetID ...string) *MemoryIDStore {
	s := &MemoryIDStore{}
	if len(spreadsheetID) > 0 {
		s.id = spreadsheetID[0]
	}
	return s
}

// Load implements service.IDStore.
func (s *MemoryIDStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

// Save implements service.IDStore.
func (s *MemoryIDStore) Save(_ context.Context, spreadsheetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = spreadsheetID
	return nil
}

// Clear implements service.IDStore.
func (s *MemoryIDStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}

// enqueue queues the remote leg of a mutation that was just applied
// locally. Callers hold mu so the queue order matches the local order.
func (e *Engine) enqueue(ctx context.Context, ops []service.RowOp) error {
	op := &service.PendingOp{
		SpreadsheetID: e.spreadsheetID,
		Ops:           ops,
		CreatedAt:     time.Now(),
	}
	if err := e.outbox.Enqueue(ctx, op); err != nil {
		return fmt.Errorf("failed to queue remote change: %w", err)
	}
	e.pending++
	return nil
}

// flushLocked sends the queued legs of spreadsheetID in order. Callers hold
// remote.
func (e *Engine) flushLocked(ctx context.Context, spreadsheetID string, progress func(done, total int)) (int, error) {
	queued, err := e.outbox.Pending(ctx, spreadsheetID)
	if err != nil {
		return 0, fmt.Errorf("failed to load outbox: %w", err)
	}
	if len(queued) == 0 {
		return 0, nil
	}

	if err := e.ensureTracker(ctx, spreadsheetID); err != nil {
		return 0, err
	}

	e.syncing.Add(1)
	defer e.syncing.Add(-1)

	for i, op := range queued {
		staged := e.rows.clone()
		batch := staged.resolve(op.Ops)

		err := common.WithRetry(ctx, func() error {
			return e.send(ctx, spreadsheetID, batch)
		}, e.retry)
		if err != nil {
			if markErr := e.outbox.MarkFailed(ctx, op.ID, err); markErr != nil {
				e.logger.Error("Failed to record outbox failure", "op", op.ID, "error", markErr)
			}
			e.logger.Warn("Remote change failed",
				"spreadsheet_id", spreadsheetID,
				"op", op.ID,
				"queued", len(queued)-i,
				"error", err)
			e.notify(service.LevelError, "Sync failed", remoteMessage(err))

			first := op.Ops[0]
			return i, &common.SyncError{Collection: string(first.Collection), RecordID: first.RecordID, Err: err}
		}

		if err := e.outbox.Remove(ctx, op.ID); err != nil {
			return i, fmt.Errorf("failed to dequeue remote change: %w", err)
		}
		e.rows = staged

		e.mu.Lock()
		if e.pending > 0 {
			e.pending--
		}
		e.mu.Unlock()

		e.logger.Debug("Remote change applied", "op", op.ID, "rows", len(batch))
		if progress != nil {
			progress(i+1, len(queued))
		}
	}
	return len(queued), nil
}

// ensureTracker seeds the row tracker from the remote when it does not yet
// describe spreadsheetID. Callers hold remote.
func (e *Engine) ensureTracker(ctx context.Context, spreadsheetID string) error {
	if e.rows != nil && e.rows.spreadsheetID == spreadsheetID {
		return nil
	}
	snap, err := e.store.ReadAll(ctx, spreadsheetID)
	if err != nil {
		return &common.ConnectivityError{Op: "read", Err: err}
	}
	e.rows = seedTracker(spreadsheetID, snap)
	return nil
}

// send issues one resolved leg. A single op uses the matching primitive;
// several go out as one Apply.
func (e *Engine) send(ctx context.Context, spreadsheetID string, batch []sheets.Op) error {
	var err error
	switch {
	case len(batch) == 0:
		return nil
	case len(batch) > 1:
		err = e.store.Apply(ctx, spreadsheetID, batch)
	case batch[0].Kind == sheets.OpAppend:
		err = e.store.AppendRows(ctx, spreadsheetID, batch[0].Collection, []sheets.Row{batch[0].Row})
	case batch[0].Kind == sheets.OpUpdate:
		err = e.store.UpdateRow(ctx, spreadsheetID, batch[0].Collection, batch[0].RowIndex, batch[0].Row)
	default:
		err = e.store.DeleteRow(ctx, spreadsheetID, batch[0].Collection, batch[0].RowIndex)
	}

	if err != nil && !common.IsRetryable(err) {
		return &common.RetryableError{Err: err, Retryable: false}
	}
	return err
}
