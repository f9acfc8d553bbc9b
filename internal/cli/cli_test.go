package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/buildtrack/internal/service"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "₹0"},
		{in: "999", want: "₹999"},
		{in: "12500", want: "₹12,500"},
		{in: "12500.6", want: "₹12,501"},
		{in: "-1200", want: "-₹1,200"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "15", want: "15"},
		{in: "2500.5", want: "2,500.5"},
		{in: "0.125", want: "0.125"},
		{in: "-0.5", want: "-0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatPercentAndDate(t *testing.T) {
	assert.Equal(t, "33.3%", FormatPercent(decimal.RequireFromString("33.333")))
	assert.Equal(t, "04 Mar 2024", FormatDate(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "-", FormatDate(time.Time{}))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Project", "Pending"}, [][]string{
		{"Villa", "₹600"},
		{"Clinic", "₹0"},
	})
	for _, want := range []string{"Project", "Pending", "Villa", "₹600", "Clinic"} {
		assert.Contains(t, out, want)
	}
}

func TestNotifier(t *testing.T) {
	tests := []struct {
		note service.Notification
		want string
	}{
		{note: service.Notification{Level: service.LevelSuccess, Title: "Connected"}, want: SuccessIcon + " Connected"},
		{note: service.Notification{Level: service.LevelError, Title: "Sync failed", Message: "quota exceeded"}, want: ErrorIcon + " Sync failed: quota exceeded"},
		{note: service.Notification{Level: service.LevelInfo, Title: "Disconnected"}, want: InfoIcon + " Disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.note.Title, func(t *testing.T) {
			var buf bytes.Buffer
			NewNotifier(&buf).Notify(tt.note)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}
