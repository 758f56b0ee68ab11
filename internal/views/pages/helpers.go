package pages

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.BrazilianPortuguese)

// DefaultDash returns an em dash when the provided value is empty or whitespace.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

// ParseUint converts a form value into an unsigned identifier, returning zero
// for anything unparsable.
func ParseUint(value string) uint {
	parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

// FormatMoney renders a monetary value in Brazilian real notation.
func FormatMoney(value decimal.Decimal) string {
	amount, _ := value.Round(2).Float64()
	return moneyPrinter.Sprintf("R$ %.2f", amount)
}

// FormatQuantity renders a stock quantity with its unit of measure.
func FormatQuantity(value decimal.Decimal, unit string) string {
	text := value.Round(3).String()
	if strings.TrimSpace(unit) == "" {
		return text
	}
	return text + " " + unit
}

// FormatReportDate renders the supplied time using a production-friendly layout.
func FormatReportDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("02 Jan 2006")
}
