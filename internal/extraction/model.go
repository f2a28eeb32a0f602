package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"billguard-backend/internal/extract"
	"billguard-backend/internal/invoices"
	"billguard-backend/internal/llm"
)

// promptExcerptChars bounds the document excerpt sent to the collaborator.
const promptExcerptChars = 4000

// ModelStrategy extracts invoice fields by asking a text-completion
// collaborator for a constrained JSON object. Collaborator failures degrade
// to a zero-confidence fallback invoice; they are never surfaced as errors.
type ModelStrategy struct {
	client llm.Client
	log    zerolog.Logger
}

// NewModelStrategy constructs a ModelStrategy.
func NewModelStrategy(client llm.Client, log zerolog.Logger) *ModelStrategy {
	return &ModelStrategy{client: client, log: log}
}

type modelPayload struct {
	VendorName    string `json:"vendor_name"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	DueDate       string `json:"due_date"`
	TotalAmount   any    `json:"total_amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
	IsInvoice     bool   `json:"is_invoice"`
}

// Extract queries the collaborator and maps its JSON answer onto a
// ParsedInvoice.
func (s *ModelStrategy) Extract(ctx context.Context, text string, src extract.SourceType) Result {
	raw, err := s.client.Complete(ctx, buildExtractionPrompt(text))
	if err != nil {
		s.log.Warn().Err(err).Msg("model extraction failed, degrading to fallback invoice")
		return degradedResult(text, src)
	}

	var payload modelPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.log.Warn().Err(err).Msg("model returned malformed payload, degrading to fallback invoice")
		return degradedResult(text, src)
	}

	amount, amountOK := s.coerceAmount(payload.TotalAmount)
	invoiceDate := s.coerceDate(payload.InvoiceDate)
	dueDate := s.coerceDate(payload.DueDate)

	vendor := strings.TrimSpace(payload.VendorName)
	if vendor == "" {
		vendor = "Unknown Vendor"
	}
	currency := strings.TrimSpace(payload.Currency)
	if currency == "" {
		currency = "USD"
	}

	confidence := modelConfidence(payload, amountOK)

	inv := invoices.ParsedInvoice{
		VendorName:       vendor,
		VendorKey:        invoices.NormalizeVendor(vendor),
		InvoiceNumber:    strings.TrimSpace(payload.InvoiceNumber),
		InvoiceDate:      invoiceDate,
		DueDate:          dueDate,
		Amount:           amount,
		Currency:         currency,
		ConfidenceScore:  confidence,
		ExtractionMethod: invoices.MethodModel,
		RawText:          invoices.TruncateRawText(text),
	}
	return Result{Success: true, Invoice: &inv, SourceType: src}
}

// modelConfidence weighs fields 0.3/0.3/0.2/0.2 and flattens to 0.3 when the
// collaborator judged the document a quote or estimate rather than a
// completed transaction.
func modelConfidence(payload modelPayload, amountOK bool) float64 {
	if !payload.IsInvoice {
		return 0.3
	}
	score := 0.0
	if strings.TrimSpace(payload.VendorName) != "" {
		score += 0.3
	}
	if amountOK {
		score += 0.3
	}
	if strings.TrimSpace(payload.InvoiceNumber) != "" {
		score += 0.2
	}
	if strings.TrimSpace(payload.InvoiceDate) != "" {
		score += 0.2
	}
	return math.Round(score*100) / 100
}

// coerceAmount accepts the number or numeric-string forms models emit; any
// malformed or non-positive value is treated as absent.
func (s *ModelStrategy) coerceAmount(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		d := decimal.NewFromFloat(v)
		if d.IsPositive() {
			return d, true
		}
		return decimal.Zero, false
	case string:
		cleaned := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(v))
		d, err := decimal.NewFromString(cleaned)
		if err != nil || !d.IsPositive() {
			s.log.Warn().Str("total_amount", v).Msg("invalid amount from model")
			return decimal.Zero, false
		}
		return d, true
	default:
		s.log.Warn().Interface("total_amount", raw).Msg("invalid amount from model")
		return decimal.Zero, false
	}
}

func (s *ModelStrategy) coerceDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		s.log.Warn().Str("date", raw).Msg("invalid date from model")
		return nil
	}
	return &parsed
}

func degradedResult(text string, src extract.SourceType) Result {
	inv := invoices.Degraded(text)
	return Result{Success: true, Invoice: &inv, SourceType: src}
}

func buildExtractionPrompt(text string) string {
	excerpt := text
	if len(excerpt) > promptExcerptChars {
		excerpt = excerpt[:promptExcerptChars] + "\n... [truncated]"
	}
	return fmt.Sprintf(`Extract the following information from this invoice/receipt/billing document:

INVOICE TEXT:
%s

Extract and return a JSON object with these fields:
{
  "vendor_name": "Company name that issued the invoice (e.g., 'Amazon Web Services', 'Stripe', 'Zoom')",
  "invoice_number": "Invoice or order number (e.g., 'INV-12345', 'AWS-001')",
  "invoice_date": "Invoice date in YYYY-MM-DD format (e.g., '2024-01-15')",
  "due_date": "Due date in YYYY-MM-DD format (e.g., '2024-02-15')",
  "total_amount": "Total amount as a number (e.g., 2499.00, 149.99)",
  "currency": "Currency code (e.g., 'USD', 'EUR')",
  "description": "Brief description of what was purchased (e.g., 'Monthly subscription', 'AWS services')",
  "is_invoice": true/false (true if this is clearly an invoice/receipt for PAYMENT, false if it's a quote/estimate/proposal)
}

Important:
- If a field cannot be found, use null
- For amounts, extract the TOTAL or final amount due (not line items)
- For vendor_name, use the company that SENT the invoice (not the recipient)
- For dates, parse natural language dates like "January 15, 2024" to "2024-01-15"
- Return valid JSON only, no extra text
- Set "is_invoice" to FALSE if the document is a quote, quotation, estimate,
  proposal, or pro forma invoice, or shows prices with no completed payment
- Set "is_invoice" to TRUE only for an invoice or receipt documenting a
  completed transaction`, excerpt)
}
