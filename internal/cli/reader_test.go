package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single line", input: "PRJ-7\n", want: []string{"PRJ-7"}},
		{name: "trims space", input: "  Rao Constructions \n", want: []string{"Rao Constructions"}},
		{name: "empty line", input: "\n", want: []string{""}},
		{name: "several lines", input: "cash\nbank\nupi\n", want: []string{"cash", "bank", "upi"}},
		{name: "last line without newline", input: "bank\nupi", want: []string{"bank", "upi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInput(strings.NewReader(tt.input))
			for _, want := range tt.want {
				got, err := in.Line(context.Background())
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}

			_, err := in.Line(context.Background())
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestInputLineCancellation(t *testing.T) {
	t.Run("already canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewInput(strings.NewReader("y\n")).Line(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("canceled while waiting", func(t *testing.T) {
		pr, pw := io.Pipe()
		t.Cleanup(func() {
			_ = pw.Close()
			_ = pr.Close()
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := NewInput(pr).Line(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})
}

func TestInputConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "y", input: "y\n", want: true},
		{name: "yes in capitals", input: "YES\n", want: true},
		{name: "yes without newline", input: "yes", want: true},
		{name: "no", input: "n\n"},
		{name: "empty answer", input: "\n"},
		{name: "end of input", input: ""},
		{name: "anything else", input: "maybe\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			got, err := NewInput(strings.NewReader(tt.input)).Confirm(context.Background(), &out, "Drop 3 queued changes?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Drop 3 queued changes? [y/N]")
		})
	}
}
