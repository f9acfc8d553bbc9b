// Package engine implements the sync engine that keeps the local ledger and
// the remote spreadsheet in agreement.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/model"
	"github.com/Veraticus/buildtrack/internal/service"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

// Options wires an Engine. Store is required; the rest default to in-memory
// implementations and slog.Default(). A nil Cache keeps the ledger in memory
// only.
type Options struct {
	Store    sheets.Store
	IDs      service.IDStore
	Outbox   service.Outbox
	Cache    service.SnapshotCache
	Notifier service.Notifier
	Logger   *slog.Logger
	Retry    common.RetryOptions
}

// State is a point-in-time view of the engine's connection.
type State struct {
	SpreadsheetID string
	Pending       int
	Connected     bool
	Loading       bool
	Syncing       bool
	Initialized   bool
}

// Engine holds the authoritative in-memory ledger. Mutations apply locally
// first and then queue their remote leg in the outbox.
type Engine struct {
	store    sheets.Store
	ids      service.IDStore
	outbox   service.Outbox
	cache    service.SnapshotCache
	notifier service.Notifier
	logger   *slog.Logger

	ledger        *model.Ledger
	retry         common.RetryOptions
	spreadsheetID string
	pending       int
	connected     bool
	loading       bool
	initialized   bool
	mu            sync.RWMutex

	// remote serializes every remote leg and full read, and guards rows.
	remote sync.Mutex
	rows   *tracker

	reading atomic.Bool
	syncing atomic.Int32
}

// New creates an engine. Call Open to load the persisted connection.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: remote store is required", common.ErrMissingConfig)
	}
	logger := common.OrDefault(opts.Logger)
	if opts.IDs == nil {
		opts.IDs = NewMemoryIDStore()
	}
	if opts.Outbox == nil {
		opts.Outbox = NewMemoryOutbox()
	}
	if opts.Notifier == nil {
		opts.Notifier = &LogNotifier{Logger: logger}
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = common.DefaultRetryOptions()
	}
	if opts.Retry.Logger == nil {
		opts.Retry.Logger = logger
	}

	return &Engine{
		store:    opts.Store,
		ids:      opts.IDs,
		outbox:   opts.Outbox,
		cache:    opts.Cache,
		notifier: opts.Notifier,
		logger:   logger,
		retry:    opts.Retry,
		ledger:   &model.Ledger{},
	}, nil
}

// State returns the current connection state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return State{
		SpreadsheetID: e.spreadsheetID,
		Pending:       e.pending,
		Connected:     e.connected,
		Loading:       e.loading,
		Syncing:       e.syncing.Load() > 0,
		Initialized:   e.initialized,
	}
}

// Ledger returns a copy of the current snapshot.
func (e *Engine) Ledger() *model.Ledger {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.ledger.Clone()
}

// Open loads the persisted spreadsheet identifier and the cached ledger.
// With an identifier stored the engine connects and performs a full read;
// without one it settles disconnected with whatever was cached locally.
func (e *Engine) Open(ctx context.Context) error {
	id, err := e.ids.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load spreadsheet id: %w", err)
	}

	cached, err := e.loadCache(ctx)
	if err != nil {
		return err
	}

	if id == "" {
		e.mu.Lock()
		e.reset()
		e.ledger = cached
		e.initialized = true
		e.mu.Unlock()
		return nil
	}

	pending, err := e.outbox.Pending(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load outbox: %w", err)
	}

	e.mu.Lock()
	e.ledger = cached
	e.spreadsheetID = id
	e.connected = true
	e.pending = len(pending)
	e.mu.Unlock()

	e.logger.Info("Opened ledger", "spreadsheet_id", id, "pending", len(pending))
	return e.SyncFromSheets(ctx)
}

// Connect provisions a new spreadsheet, stores its identifier and
// reconciles the local ledger with it.
func (e *Engine) Connect(ctx context.Context) (string, error) {
	e.setLoading(true)
	defer e.setLoading(false)

	id, err := e.store.Provision(ctx)
	if err != nil {
		e.notify(service.LevelError, "Connection failed", err.Error())
		return "", &common.ConnectivityError{Op: "provision", Err: err}
	}

	if err := e.ids.Save(ctx, id); err != nil {
		return "", fmt.Errorf("failed to save spreadsheet id: %w", err)
	}

	e.remote.Lock()
	e.rows = newTracker(id)
	e.remote.Unlock()

	e.mu.Lock()
	e.spreadsheetID = id
	e.connected = true
	e.pending = 0
	e.mu.Unlock()

	e.logger.Info("Provisioned spreadsheet", "spreadsheet_id", id)
	e.notify(service.LevelSuccess, "Connected", "Spreadsheet created with all sheets and headers")

	return id, e.SyncFromSheets(ctx)
}

// ConnectExisting adopts an existing spreadsheet, ensures its schema and
// replaces the local ledger with its contents. On failure the engine is left
// disconnected.
func (e *Engine) ConnectExisting(ctx context.Context, spreadsheetID string) error {
	if spreadsheetID == "" {
		return fmt.Errorf("%w: spreadsheet id is empty", common.ErrInvalidConfig)
	}

	e.setLoading(true)
	defer e.setLoading(false)

	if err := e.ids.Save(ctx, spreadsheetID); err != nil {
		return fmt.Errorf("failed to save spreadsheet id: %w", err)
	}

	e.mu.Lock()
	e.spreadsheetID = spreadsheetID
	e.connected = true
	e.mu.Unlock()

	fail := func(err error) error {
		e.rollback(ctx, spreadsheetID)
		e.notify(service.LevelError, "Connection failed", err.Error())
		return err
	}

	if err := e.store.EnsureSchema(ctx, spreadsheetID); err != nil {
		return fail(&common.ConnectivityError{Op: "initialize", Err: err})
	}

	if !e.reading.CompareAndSwap(false, true) {
		return nil
	}
	defer e.reading.Store(false)

	if err := e.read(ctx, spreadsheetID); err != nil {
		return fail(err)
	}

	e.logger.Info("Connected to spreadsheet", "spreadsheet_id", spreadsheetID)
	e.notify(service.LevelSuccess, "Connected", "Loaded data from the spreadsheet")
	return nil
}

// Disconnect forgets the spreadsheet and its queued changes and empties the
// local ledger.
func (e *Engine) Disconnect(ctx context.Context) error {
	if err := e.ids.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear spreadsheet id: %w", err)
	}
	if err := e.outbox.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear outbox: %w", err)
	}

	e.remote.Lock()
	e.rows = nil
	e.remote.Unlock()

	e.mu.Lock()
	e.reset()
	e.initialized = true
	e.saveCache(ctx)
	e.mu.Unlock()

	e.notify(service.LevelInfo, "Disconnected", "Local data cleared")
	return nil
}

// SyncFromSheets pushes queued changes, then replaces the whole local ledger
// with the spreadsheet's contents. It does nothing when disconnected or when
// another full read is already running.
func (e *Engine) SyncFromSheets(ctx context.Context) error {
	id := e.currentID()
	if id == "" {
		return nil
	}

	if !e.reading.CompareAndSwap(false, true) {
		e.logger.Debug("Full read already in flight")
		return nil
	}
	defer e.reading.Store(false)

	if err := e.read(ctx, id); err != nil {
		e.notify(service.LevelError, "Sync failed", err.Error())
		return err
	}
	return nil
}

// Flush sends every queued remote leg, oldest first. It stops at the first
// failure and returns a *common.SyncError; the failed leg stays queued.
func (e *Engine) Flush(ctx context.Context) (int, error) {
	return e.FlushProgress(ctx, nil)
}

// FlushProgress is Flush with a callback invoked after each confirmed leg.
func (e *Engine) FlushProgress(ctx context.Context, progress func(done, total int)) (int, error) {
	id := e.currentID()
	if id == "" {
		return 0, common.ErrNotConnected
	}

	e.remote.Lock()
	defer e.remote.Unlock()

	return e.flushLocked(ctx, id, progress)
}

// read replaces the ledger with a full read of spreadsheetID. Callers hold
// the reading flag.
func (e *Engine) read(ctx context.Context, spreadsheetID string) error {
	e.syncing.Add(1)
	defer e.syncing.Add(-1)

	e.remote.Lock()
	defer e.remote.Unlock()

	if _, err := e.flushLocked(ctx, spreadsheetID, nil); err != nil {
		e.logger.Warn("Could not push queued changes before read", "error", err)
	}

	snap, err := e.store.ReadAll(ctx, spreadsheetID)
	if err != nil {
		return &common.ConnectivityError{Op: "read", Err: err}
	}
	rows := seedTracker(spreadsheetID, snap)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.spreadsheetID != spreadsheetID {
		return nil
	}

	// Legs still queued were applied locally; keep them visible over the
	// remote copy until they land.
	pending, err := e.outbox.Pending(ctx, spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to load outbox: %w", err)
	}
	overlay(snap, pending)

	e.ledger = sheets.DecodeLedger(snap)
	e.pending = len(pending)
	e.initialized = true
	e.rows = rows
	e.saveCache(ctx)

	e.logger.Debug("Read spreadsheet",
		"spreadsheet_id", spreadsheetID,
		"projects", len(e.ledger.Projects),
		"pending", len(pending))
	return nil
}

// rollback undoes a failed ConnectExisting.
func (e *Engine) rollback(ctx context.Context, spreadsheetID string) {
	if err := e.ids.Clear(ctx); err != nil {
		e.logger.Error("Failed to clear spreadsheet id", "error", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.spreadsheetID == spreadsheetID {
		e.spreadsheetID = ""
		e.connected = false
	}
}

// reset empties the ledger and connection. Callers hold mu.
func (e *Engine) reset() {
	e.ledger = &model.Ledger{}
	e.spreadsheetID = ""
	e.connected = false
	e.pending = 0
}

// loadCache returns the cached ledger, or an empty one without a cache.
func (e *Engine) loadCache(ctx context.Context) (*model.Ledger, error) {
	if e.cache == nil {
		return &model.Ledger{}, nil
	}
	rows, err := e.cache.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached ledger: %w", err)
	}
	return sheets.DecodeLedger(sheets.RowsToSnapshot(rows)), nil
}

// saveCache writes the current ledger to the cache. Callers hold mu, which
// keeps saves in mutation order.
func (e *Engine) saveCache(ctx context.Context) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SaveSnapshot(ctx, sheets.EncodeLedger(e.ledger)); err != nil {
		e.logger.Warn("Failed to cache ledger", "error", err)
	}
}

func (e *Engine) currentID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.spreadsheetID
}

func (e *Engine) setLoading(v bool) {
	e.mu.Lock()
	e.loading = v
	e.mu.Unlock()
}

func (e *Engine) notify(level service.Level, title, message string) {
	e.notifier.Notify(service.Notification{Level: level, Title: title, Message: message})
}

// remoteMessage prefers the upstream message of a remote failure.
func remoteMessage(err error) string {
	var re *sheets.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}
