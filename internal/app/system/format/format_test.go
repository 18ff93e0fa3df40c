package format

import (
	"testing"
	"time"

	"github.com/dalemusser/enrolldesk/internal/domain/models"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		name string
		in   models.Amount
		want string
	}{
		{"number", models.Amount{Value: 100, IsNumber: true}, "$100"},
		{"grouped", models.Amount{Value: 1234.5, IsNumber: true}, "$1,234.5"},
		{"zero number", models.Amount{IsNumber: true}, "$0"},
		{"text with dollar", models.Amount{Text: "$1,200"}, "$1,200"},
		{"text without dollar", models.Amount{Text: "99.99"}, "$99.99"},
		{"missing", models.Amount{}, "$0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Money(tt.in); got != tt.want {
				t.Errorf("Money(%+v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	ts := models.Timestamp{Time: time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC), Valid: true}
	if got := Date(ts); got != "3/7/2024" {
		t.Errorf("Date = %q", got)
	}
	if got := Date(models.Timestamp{}); got != NotAvailable {
		t.Errorf("Date(zero) = %q", got)
	}
}

func TestText(t *testing.T) {
	if Text("  ") != NotAvailable || Text("Go") != "Go" {
		t.Error("Text fallback wrong")
	}
}

func TestCount(t *testing.T) {
	if got := Count(12345); got != "12,345" {
		t.Errorf("Count = %q", got)
	}
	if got := Count(0); got != "0" {
		t.Errorf("Count(0) = %q", got)
	}
}

func TestTitle(t *testing.T) {
	if Title("pending") != "Pending" || Title("") != "" {
		t.Error("Title wrong")
	}
}
