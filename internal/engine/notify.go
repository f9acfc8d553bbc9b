package engine

import (
	"context"
	"log/slog"

	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/service"
)

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements service.Notifier.
func (n *LogNotifier) Notify(note service.Notification) {
	level := slog.LevelInfo
	if note.Level == service.LevelError {
		level = slog.LevelWarn
	}
	common.OrDefault(n.Logger).Log(context.Background(), level, note.Title,
		"level", string(note.Level),
		"message", note.Message)
}
