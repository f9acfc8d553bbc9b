package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/buildtrack/internal/cli"
	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/config"
	"github.com/Veraticus/buildtrack/internal/engine"
	"github.com/Veraticus/buildtrack/internal/sheets"
	"github.com/Veraticus/buildtrack/internal/storage"
)

// app is one command's wiring: the local database, the remote store and
// the engine over both.
type app struct {
	engine  *engine.Engine
	storage *storage.SQLiteStorage
	logger  *slog.Logger
}

// newRemoteStore builds the store selected by remote.backend along with the
// retry policy for calls against it.
func newRemoteStore(ctx context.Context, logger *slog.Logger) (sheets.Store, common.RetryOptions, error) {
	retry := common.DefaultRetryOptions()

	remote, err := config.LoadRemoteConfig(viper.GetViper())
	if err != nil {
		return nil, retry, err
	}

	switch remote.Backend {
	case config.BackendGoogle:
		sheetsConfig, err := config.LoadSheetsConfig(viper.GetViper())
		if err != nil {
			return nil, retry, err
		}
		store, err := sheets.NewGoogleStore(ctx, *sheetsConfig, logger)
		return store, sheetsConfig.Retry(), err
	case config.BackendMemory:
		logger.Warn("Using in-memory remote store; nothing is persisted remotely")
		return sheets.NewMemoryStore(), retry, nil
	default:
		store, err := sheets.NewRPCClient(sheets.RPCConfig{
			Logger:   logger,
			Endpoint: remote.Endpoint,
			APIKey:   remote.APIKey,
			Timeout:  remote.Timeout,
		})
		return store, retry, err
	}
}

// openApp opens the local database and the engine. When the engine is
// connected Open also pulls the latest ledger; a failed pull leaves the
// cached ledger in place.
func openApp(ctx context.Context) (*app, error) {
	logger := slog.Default()

	dbPath := config.DatabasePath(viper.GetViper())
	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("Could not open the local database at "+dbPath, err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, common.NewUserError("Could not upgrade the local database", err)
	}

	store, retry, err := newRemoteStore(ctx, logger)
	if err != nil {
		_ = db.Close()
		return nil, common.NewUserError("Remote store is not configured; see remote.* and sheets.* settings", err)
	}

	if n := viper.GetInt("sync.retry_attempts"); n > 0 {
		retry.MaxAttempts = n
	}

	eng, err := engine.New(engine.Options{
		Store:    store,
		IDs:      db.IDStore(),
		Outbox:   db.Outbox(),
		Cache:    db.Snapshots(),
		Notifier: cli.NewNotifier(os.Stderr),
		Logger:   logger,
		Retry:    retry,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := eng.Open(ctx); err != nil {
		logger.Debug("Open finished with error", "error", err)
	}

	return &app{engine: eng, storage: db, logger: logger}, nil
}

func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		a.logger.Warn("Failed to close database", "error", err)
	}
}

// withApp runs fn with an opened app and closes it afterwards.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
