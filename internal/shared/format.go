package shared

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Dash stands in for a missing value.
const Dash = "—"

// OrDash returns s, or Dash when s is blank.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dash
	}
	return s
}

// FormatMoney renders an amount with thousands separators and two decimals,
// prefixed by the currency code when one is given.
func FormatMoney(amount float64, currency string) string {
	text := printer.Sprintf("%.2f", amount)
	if currency = strings.ToUpper(strings.TrimSpace(currency)); currency != "" {
		return currency + " " + text
	}
	return text
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatDate renders a calendar date, or Dash for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return Dash
	}
	return t.Format("02 Jan 2006")
}

// FormatDateTime renders a timestamp to the minute, or Dash for the zero time.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return Dash
	}
	return t.Format("02 Jan 2006 15:04")
}
