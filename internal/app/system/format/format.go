// Package format renders backend values for display.
package format

import (
	"strings"

	"github.com/dalemusser/enrolldesk/internal/domain/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotAvailable is shown for missing values.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.AmericanEnglish)

// Number renders f with grouping and at most three fraction digits
// (1234.5 -> "1,234.5").
func Number(f float64) string {
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
}

// Money renders an amount with a leading dollar sign. Numeric amounts are
// grouped; preformatted text is shown as sent, prefixed with "$" unless it
// already carries one. Missing amounts render as "$0".
func Money(a models.Amount) string {
	if a.IsNumber {
		return "$" + Number(a.Value)
	}
	t := strings.TrimSpace(a.Text)
	switch {
	case t == "":
		return "$0"
	case strings.HasPrefix(t, "$"):
		return t
	}
	return "$" + t
}

// Date renders a timestamp as month/day/year, or N/A.
func Date(ts models.Timestamp) string {
	if !ts.Valid {
		return NotAvailable
	}
	return ts.Time.Format("1/2/2006")
}

// Text returns s, or N/A when s is blank.
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// Count renders an integer counter with grouping.
func Count(n int64) string {
	return printer.Sprint(number.Decimal(n))
}

// Title upper-cases the first letter of a status for display
// ("pending" -> "Pending").
func Title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
