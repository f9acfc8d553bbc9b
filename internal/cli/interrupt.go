package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Interrupt tracks whether a command was stopped by SIGINT or SIGTERM.
type Interrupt struct {
	w      io.Writer
	cancel context.CancelFunc
	notice string
	once   sync.Once
	fired  atomic.Bool
}

// OnInterrupt returns a context canceled on the first SIGINT or SIGTERM.
// The signal prints a warning to w, followed by notice when it is set.
// Signals are no longer caught once the returned context is done.
func OnInterrupt(ctx context.Context, w io.Writer, notice string) (context.Context, *Interrupt) {
	ctx, cancel := context.WithCancel(ctx)
	in := newInterrupt(w, notice, cancel)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			in.fire()
		case <-ctx.Done():
		}
	}()

	return ctx, in
}

func newInterrupt(w io.Writer, notice string, cancel context.CancelFunc) *Interrupt {
	if w == nil {
		w = os.Stderr
	}
	return &Interrupt{w: w, notice: notice, cancel: cancel}
}

func (in *Interrupt) fire() {
	in.once.Do(func() {
		in.fired.Store(true)
		_, _ = io.WriteString(in.w, in.message())
		in.cancel()
	})
}

func (in *Interrupt) message() string {
	msg := "\n" + FormatWarning("Interrupted!") + "\n"
	if in.notice != "" {
		msg += FormatInfo(in.notice) + "\n"
	}
	return msg
}

// Interrupted reports whether a signal canceled the context.
func (in *Interrupt) Interrupted() bool {
	return in.fired.Load()
}
