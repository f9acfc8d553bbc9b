package cli

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var indianEnglish = language.MustParse("en-IN")

// FormatMoney renders an amount in rupees rounded to whole units with
// Indian digit grouping, e.g. ₹12,00,000.
func FormatMoney(d decimal.Decimal) string {
	p := message.NewPrinter(indianEnglish)
	n := d.Round(0).IntPart()
	if n < 0 {
		return p.Sprintf("-₹%d", -n)
	}
	return p.Sprintf("₹%d", n)
}

// FormatNumber renders a quantity with Indian digit grouping and at most
// three decimals.
func FormatNumber(d decimal.Decimal) string {
	p := message.NewPrinter(indianEnglish)
	whole := d.Truncate(0)
	frac := d.Sub(whole).Abs().Round(3)
	s := p.Sprintf("%d", whole.IntPart())
	if d.IsNegative() && whole.IsZero() {
		s = "-" + s
	}
	if !frac.IsZero() {
		s += frac.String()[1:]
	}
	return s
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// FormatDate renders a date as 02 Jan 2006, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}
