package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/buildtrack/internal/cli"
	"github.com/Veraticus/buildtrack/internal/model"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

var errInvalidInput = errors.New("invalid input")

// parseAmount reads a non-negative amount. Grouping commas and a leading
// rupee sign are accepted.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", "₹", "", " ", "").Replace(s)
	if clean == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", errInvalidInput, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount %q is negative", errInvalidInput, s)
	}
	return d, nil
}

// parseDate reads a YYYY-MM-DD date; "" and "today" mean now.
func parseDate(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t := sheets.ParseDay(s)
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w: date %q, want YYYY-MM-DD", errInvalidInput, s)
	}
	return t, nil
}

// parseMode reads a payment mode flag, rejecting unknown values.
func parseMode(s string, fallback model.PaymentMode) (model.PaymentMode, error) {
	if s == "" {
		return fallback, nil
	}
	switch m := model.PaymentMode(strings.ToLower(s)); m {
	case model.ModeCash, model.ModeBank, model.ModeUPI:
		return m, nil
	}
	return "", fmt.Errorf("%w: payment mode %q, want cash, bank or upi", errInvalidInput, s)
}

type flagReader struct {
	cmd *cobra.Command
	now time.Time
	err error
}

func readFlags(cmd *cobra.Command) *flagReader {
	return &flagReader{cmd: cmd, now: time.Now()}
}

func (f *flagReader) str(name string) string {
	v, err := f.cmd.Flags().GetString(name)
	if err != nil && f.err == nil {
		f.err = err
	}
	return v
}

func (f *flagReader) amount(name string) decimal.Decimal {
	d, err := parseAmount(f.str(name))
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("--%s: %w", name, err)
	}
	return d
}

func (f *flagReader) date(name string) time.Time {
	t, err := parseDate(f.str(name), f.now)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("--%s: %w", name, err)
	}
	return t
}

func (f *flagReader) mode(name string, fallback model.PaymentMode) model.PaymentMode {
	m, err := parseMode(f.str(name), fallback)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("--%s: %w", name, err)
	}
	return m
}

func printTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, cli.SubtleStyle.Render("Nothing to show."))
		return err
	}
	_, err := fmt.Fprintln(w, cli.RenderTable(headers, rows))
	return err
}

func printCreated(w io.Writer, what, id string) error {
	_, err := fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Added %s %s", what, id)))
	return err
}

func money(d decimal.Decimal) string { return cli.FormatMoney(d) }
