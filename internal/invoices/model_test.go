package invoices

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeVendor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Amazon Web Services, Inc.", "amazonwebservicesinc"},
		{"AWS Inc", "awsinc"},
		{"netflix", "netflix"},
		{"Smith & Sons LLC", "smithsonsllc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeVendor(tt.in); got != tt.want {
			t.Errorf("NormalizeVendor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewParsedInvoiceValidation(t *testing.T) {
	amount := decimal.RequireFromString("100.00")

	if _, err := NewParsedInvoice("Acme", "", nil, nil, decimal.Zero, "USD", 0.5, MethodPattern, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}
	if _, err := NewParsedInvoice("Acme", "", nil, nil, decimal.RequireFromString("-5"), "USD", 0.5, MethodPattern, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount error = %v, want ErrInvalidAmount", err)
	}
	if _, err := NewParsedInvoice("Acme", "", nil, nil, amount, "USD", 1.5, MethodPattern, ""); !errors.Is(err, ErrInvalidConfidence) {
		t.Errorf("confidence error = %v, want ErrInvalidConfidence", err)
	}

	inv, err := NewParsedInvoice("  ", "INV-1", nil, nil, amount, "", 0.6, MethodPattern, "raw")
	if err != nil {
		t.Fatalf("NewParsedInvoice: %v", err)
	}
	if inv.VendorName != "Unknown Vendor" {
		t.Errorf("vendor = %q, want Unknown Vendor default", inv.VendorName)
	}
	if inv.VendorKey != "unknownvendor" {
		t.Errorf("vendor key = %q, want unknownvendor", inv.VendorKey)
	}
	if inv.Currency != "USD" {
		t.Errorf("currency = %q, want USD default", inv.Currency)
	}
}

func TestTruncateRawText(t *testing.T) {
	long := strings.Repeat("x", rawTextLimit+100)
	if got := TruncateRawText(long); len(got) != rawTextLimit {
		t.Fatalf("truncated length = %d, want %d", len(got), rawTextLimit)
	}
	if got := TruncateRawText("short"); got != "short" {
		t.Fatalf("short text modified: %q", got)
	}
}

func TestDegradedInvoice(t *testing.T) {
	inv := Degraded("unreadable document")
	if !inv.Amount.IsZero() || inv.ConfidenceScore != 0 {
		t.Errorf("degraded amount %s confidence %v, want zero both", inv.Amount, inv.ConfidenceScore)
	}
	if inv.ExtractionMethod != MethodFallback {
		t.Errorf("method = %q, want %q", inv.ExtractionMethod, MethodFallback)
	}
	if inv.RawText != "unreadable document" {
		t.Errorf("raw text = %q", inv.RawText)
	}
}
