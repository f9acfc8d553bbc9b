package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	fast := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("flaky")
			}
			return nil
		}, fast)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts and keeps the cause", func(t *testing.T) {
		cause := errors.New("still down")
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return cause
		}, fast)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable error stops immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: errors.New("bad request"), Retryable: false}
		}, fast)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context aborts the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, func() error { return errors.New("down") },
			RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestErrorTaxonomy(t *testing.T) {
	validation := NewValidationError("project", "p1", ErrReferenced)
	var vErr *ValidationError
	require.ErrorAs(t, validation, &vErr)
	assert.Equal(t, "project", vErr.Entity)
	assert.ErrorIs(t, validation, ErrReferenced)
	assert.Equal(t, "project p1: referenced by dependent records", validation.Error())

	conn := &ConnectivityError{Op: "connect", Err: ErrUnreachable}
	assert.ErrorIs(t, conn, ErrUnreachable)
	assert.True(t, IsRetryable(conn))

	syncErr := &SyncError{Collection: "bills", RecordID: "b1", Err: errors.New("boom")}
	assert.Contains(t, syncErr.Error(), "bills b1")
	assert.False(t, IsRetryable(syncErr))

	userErr := NewUserError("Could not open the local database", ErrNotFound)
	assert.Equal(t, "Could not open the local database: not found", userErr.Error())
	assert.ErrorIs(t, userErr, ErrNotFound)
	assert.Equal(t, "Sheet not shared", NewUserError("Sheet not shared", nil).Error())
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger("debug", "json", &buf)
	require.NoError(t, err)
	logger.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = SetupLogger("loud", "json", &buf)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = SetupLogger("info", "xml", &buf)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.Equal(t, slog.Default(), OrDefault(nil))
}
