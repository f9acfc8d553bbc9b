package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Veraticus/buildtrack/internal/service"
)

// Notifier prints engine notifications as styled lines.
type Notifier struct {
	w  io.Writer
	mu sync.Mutex
}

// NewNotifier creates a notifier writing to w, or stderr when w is nil.
func NewNotifier(w io.Writer) *Notifier {
	if w == nil {
		w = os.Stderr
	}
	return &Notifier{w: w}
}

// Notify implements service.Notifier.
func (n *Notifier) Notify(note service.Notification) {
	text := note.Title
	if note.Message != "" {
		text += ": " + note.Message
	}

	var line string
	switch note.Level {
	case service.LevelSuccess:
		line = FormatSuccess(text)
	case service.LevelError:
		line = FormatError(text)
	default:
		line = FormatInfo(text)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.w, line)
}
