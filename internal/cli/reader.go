package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when ctx ends before a line arrives.
var ErrInputCancelled = errors.New("input canceled")

// Input reads answers from the terminal without blocking past ctx.
type Input struct {
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewInput wraps r, usually the command's stdin.
func NewInput(r io.Reader) *Input {
	return &Input{reader: bufio.NewReader(r)}
}

type lineResult struct {
	err  error
	line string
}

// Line returns the next line with surrounding space trimmed. A final line
// without a newline is returned as is; io.EOF comes only when no text is
// left. A read still waiting when ctx ends completes in the background and
// its line is lost.
func (in *Input) Line(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrInputCancelled
	}

	ch := make(chan lineResult, 1)
	go func() {
		in.mu.Lock()
		defer in.mu.Unlock()

		raw, err := in.reader.ReadString('\n')
		line := strings.TrimSpace(raw)
		if errors.Is(err, io.EOF) && raw != "" {
			err = nil
		}
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-ch:
		return res.line, res.err
	}
}

// Confirm asks a yes/no question on w. Anything but y or yes, including the
// end of input, is a no.
func (in *Input) Confirm(ctx context.Context, w io.Writer, question string) (bool, error) {
	if _, err := io.WriteString(w, FormatPrompt(question+" [y/N]")); err != nil {
		return false, err
	}

	answer, err := in.Line(ctx)
	switch {
	case errors.Is(err, io.EOF):
		return false, nil
	case err != nil:
		return false, err
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
