package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"billguard-backend/internal/extract"
	"billguard-backend/internal/invoices"
)

type stubClient struct {
	raw json.RawMessage
	err error
}

func (c stubClient) Complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	return c.raw, c.err
}

func TestModelExtractFullPayload(t *testing.T) {
	client := stubClient{raw: json.RawMessage(`{
		"vendor_name": "Zoom",
		"invoice_number": "INV-1",
		"invoice_date": "2024-01-15",
		"due_date": "2024-02-15",
		"total_amount": 149.99,
		"currency": "USD",
		"description": "Monthly subscription",
		"is_invoice": true
	}`)}
	res := NewModelStrategy(client, zerolog.Nop()).Extract(context.Background(), "some text", extract.SourceText)
	if !res.Success {
		t.Fatalf("Extract failed: %s", res.Error)
	}
	inv := res.Invoice

	if inv.VendorName != "Zoom" || inv.VendorKey != "zoom" {
		t.Errorf("vendor = %q/%q, want Zoom/zoom", inv.VendorName, inv.VendorKey)
	}
	if !inv.Amount.Equal(decimal.RequireFromString("149.99")) {
		t.Errorf("amount = %s, want 149.99", inv.Amount)
	}
	wantDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if inv.InvoiceDate == nil || !inv.InvoiceDate.Equal(wantDate) {
		t.Errorf("invoice date = %v, want %s", inv.InvoiceDate, wantDate)
	}
	if inv.ConfidenceScore != 1.0 {
		t.Errorf("confidence = %v, want 1.0", inv.ConfidenceScore)
	}
	if inv.ExtractionMethod != invoices.MethodModel {
		t.Errorf("method = %q, want %q", inv.ExtractionMethod, invoices.MethodModel)
	}
}

func TestModelExtractNotAnInvoiceFlattensConfidence(t *testing.T) {
	client := stubClient{raw: json.RawMessage(`{
		"vendor_name": "Acme",
		"invoice_number": "Q-99",
		"invoice_date": "2024-01-15",
		"total_amount": 500,
		"is_invoice": false
	}`)}
	res := NewModelStrategy(client, zerolog.Nop()).Extract(context.Background(), "quote text", extract.SourceText)
	if !res.Success {
		t.Fatalf("Extract failed: %s", res.Error)
	}
	if res.Invoice.ConfidenceScore != 0.3 {
		t.Fatalf("confidence = %v, want 0.3", res.Invoice.ConfidenceScore)
	}
}

func TestModelExtractClientErrorDegrades(t *testing.T) {
	client := stubClient{err: errors.New("upstream unavailable")}
	res := NewModelStrategy(client, zerolog.Nop()).Extract(context.Background(), "raw document text", extract.SourceHTML)
	if !res.Success {
		t.Fatalf("degraded extraction should still report success, got error %s", res.Error)
	}
	inv := res.Invoice
	if inv.ExtractionMethod != invoices.MethodFallback {
		t.Errorf("method = %q, want %q", inv.ExtractionMethod, invoices.MethodFallback)
	}
	if !inv.Amount.IsZero() || inv.ConfidenceScore != 0 {
		t.Errorf("degraded invoice has amount %s confidence %v, want zero both", inv.Amount, inv.ConfidenceScore)
	}
	if inv.VendorName != "Unknown Vendor" {
		t.Errorf("vendor = %q, want Unknown Vendor", inv.VendorName)
	}
	if inv.RawText != "raw document text" {
		t.Errorf("raw text = %q, want the source text retained", inv.RawText)
	}
}

func TestModelExtractMalformedPayloadDegrades(t *testing.T) {
	client := stubClient{raw: json.RawMessage(`["not", "an", "object"]`)}
	res := NewModelStrategy(client, zerolog.Nop()).Extract(context.Background(), "text", extract.SourceText)
	if !res.Success {
		t.Fatalf("degraded extraction should still report success, got error %s", res.Error)
	}
	if res.Invoice.ExtractionMethod != invoices.MethodFallback {
		t.Fatalf("method = %q, want %q", res.Invoice.ExtractionMethod, invoices.MethodFallback)
	}
}

func TestModelExtractCoercesStringAmount(t *testing.T) {
	client := stubClient{raw: json.RawMessage(`{
		"vendor_name": "Stripe",
		"total_amount": "$1,249.00",
		"is_invoice": true
	}`)}
	res := NewModelStrategy(client, zerolog.Nop()).Extract(context.Background(), "text", extract.SourceText)
	if !res.Success {
		t.Fatalf("Extract failed: %s", res.Error)
	}
	if !res.Invoice.Amount.Equal(decimal.RequireFromString("1249.00")) {
		t.Fatalf("amount = %s, want 1249.00", res.Invoice.Amount)
	}
}

func TestModelExtractInvalidFieldsTreatedAbsent(t *testing.T) {
	client := stubClient{raw: json.RawMessage(`{
		"vendor_name": "Stripe",
		"invoice_number": "INV-7",
		"invoice_date": "01/15/2024",
		"total_amount": "not a number",
		"is_invoice": true
	}`)}
	res := NewModelStrategy(client, zerolog.Nop()).Extract(context.Background(), "text", extract.SourceText)
	if !res.Success {
		t.Fatalf("Extract failed: %s", res.Error)
	}
	inv := res.Invoice
	if !inv.Amount.IsZero() {
		t.Errorf("amount = %s, want zero for malformed value", inv.Amount)
	}
	if inv.InvoiceDate != nil {
		t.Errorf("invoice date = %v, want nil for non-ISO value", inv.InvoiceDate)
	}
	// vendor 0.3 + number 0.2 + date string present 0.2, amount absent.
	if inv.ConfidenceScore != 0.7 {
		t.Errorf("confidence = %v, want 0.7", inv.ConfidenceScore)
	}
}

func TestExtractorDefaultsToPatternStrategy(t *testing.T) {
	// A configured client is ignored unless model extraction is enabled.
	client := stubClient{err: errors.New("must not be called")}
	e := New(Config{UseModel: false}, client, zerolog.Nop())

	res := e.FromText(context.Background(), sampleInvoiceText, extract.SourceText)
	if !res.Success {
		t.Fatalf("FromText failed: %s", res.Error)
	}
	if res.Invoice.ExtractionMethod != invoices.MethodPattern {
		t.Fatalf("method = %q, want %q", res.Invoice.ExtractionMethod, invoices.MethodPattern)
	}
}

func TestExtractorFromHTML(t *testing.T) {
	e := New(Config{}, nil, zerolog.Nop())
	html := `<html><body><h1>Acme Corp</h1><p>Invoice Number: INV-9</p><p>Total: $75.00</p></body></html>`

	res := e.FromHTML(context.Background(), html)
	if !res.Success {
		t.Fatalf("FromHTML failed: %s", res.Error)
	}
	if res.SourceType != extract.SourceHTML {
		t.Errorf("source type = %q, want %q", res.SourceType, extract.SourceHTML)
	}
	if res.Invoice.VendorName != "Acme Corp" {
		t.Errorf("vendor = %q, want Acme Corp", res.Invoice.VendorName)
	}
	if !res.Invoice.Amount.Equal(decimal.RequireFromString("75.00")) {
		t.Errorf("amount = %s, want 75.00", res.Invoice.Amount)
	}
}

func TestExtractorFromPDFUnreadableDocumentFails(t *testing.T) {
	e := New(Config{}, nil, zerolog.Nop())

	res := e.FromPDF(context.Background(), []byte("definitely not a pdf"))
	if res.Success {
		t.Fatalf("FromPDF succeeded on garbage input")
	}
	if res.Error == "" {
		t.Errorf("failure result carries no error message")
	}
	if res.Invoice != nil {
		t.Errorf("failure result carries an invoice")
	}
	if res.SourceType != extract.SourcePDF {
		t.Errorf("source type = %q, want %q", res.SourceType, extract.SourcePDF)
	}
}

func TestBuildExtractionPromptTruncatesLongDocuments(t *testing.T) {
	long := make([]byte, promptExcerptChars+500)
	for i := range long {
		long[i] = 'a'
	}
	prompt := buildExtractionPrompt(string(long))
	if len(prompt) > promptExcerptChars+2000 {
		t.Fatalf("prompt length %d, excerpt was not truncated", len(prompt))
	}
}
