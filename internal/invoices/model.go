package invoices

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExtractionMethod identifies which strategy produced a parsed invoice.
type ExtractionMethod string

const (
	MethodPattern  ExtractionMethod = "pattern"
	MethodModel    ExtractionMethod = "model_assisted"
	MethodFallback ExtractionMethod = "fallback"
)

// rawTextLimit bounds the retained source text per record.
const rawTextLimit = 5000

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidConfidence = errors.New("confidence score must be in [0, 1]")
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// NormalizeVendor reduces a vendor name to the grouping key used by all
// detection: lowercase, alphanumeric characters only.
func NormalizeVendor(name string) string {
	return strings.ToLower(nonAlnum.ReplaceAllString(name, ""))
}

// LineItem is a single line on an invoice. Quantity, unit price and amount
// are optional because most extracted documents only yield a grand total.
type LineItem struct {
	Description string
	Quantity    *float64
	UnitPrice   *decimal.Decimal
	Amount      *decimal.Decimal
}

// ParsedInvoice is the structured output of field extraction. It is ephemeral
// until persisted as an Invoice.
type ParsedInvoice struct {
	VendorName       string
	VendorKey        string
	InvoiceNumber    string
	InvoiceDate      *time.Time
	DueDate          *time.Time
	Amount           decimal.Decimal
	Currency         string
	LineItems        []LineItem
	ConfidenceScore  float64
	ExtractionMethod ExtractionMethod
	RawText          string
}

// NewParsedInvoice validates and constructs a ParsedInvoice. Zero or negative
// amounts are rejected; the vendor key is derived from the vendor name and the
// raw text is truncated for audit storage.
func NewParsedInvoice(
	vendorName string,
	invoiceNumber string,
	invoiceDate, dueDate *time.Time,
	amount decimal.Decimal,
	currency string,
	confidence float64,
	method ExtractionMethod,
	rawText string,
) (ParsedInvoice, error) {
	if !amount.IsPositive() {
		return ParsedInvoice{}, ErrInvalidAmount
	}
	if confidence < 0 || confidence > 1 {
		return ParsedInvoice{}, ErrInvalidConfidence
	}
	if strings.TrimSpace(vendorName) == "" {
		vendorName = "Unknown Vendor"
	}
	if currency == "" {
		currency = "USD"
	}
	return ParsedInvoice{
		VendorName:       vendorName,
		VendorKey:        NormalizeVendor(vendorName),
		InvoiceNumber:    invoiceNumber,
		InvoiceDate:      invoiceDate,
		DueDate:          dueDate,
		Amount:           amount,
		Currency:         currency,
		ConfidenceScore:  confidence,
		ExtractionMethod: method,
		RawText:          TruncateRawText(rawText),
	}, nil
}

// Degraded returns the zero-confidence invoice used when the model-assisted
// collaborator fails terminally. It deliberately bypasses the positive-amount
// invariant: the record marks that a document was seen but not understood.
func Degraded(rawText string) ParsedInvoice {
	return ParsedInvoice{
		VendorName:       "Unknown Vendor",
		VendorKey:        NormalizeVendor("Unknown Vendor"),
		Amount:           decimal.Zero,
		Currency:         "USD",
		ConfidenceScore:  0,
		ExtractionMethod: MethodFallback,
		RawText:          TruncateRawText(rawText),
	}
}

// TruncateRawText bounds retained source text.
func TruncateRawText(text string) string {
	if len(text) > rawTextLimit {
		return text[:rawTextLimit]
	}
	return text
}

// Invoice is the persisted record: a ParsedInvoice plus ownership and
// provenance. Created once per extracted document; never mutated.
type Invoice struct {
	ID               string
	TenantID         string
	UserID           string
	ScanJobID        string
	SourceID         string // message or attachment id, unique per tenant
	VendorName       string
	VendorKey        string
	InvoiceNumber    string
	InvoiceDate      *time.Time
	DueDate          *time.Time
	Amount           decimal.Decimal
	Currency         string
	ConfidenceScore  float64
	ExtractionMethod ExtractionMethod
	RawText          string
	CreatedAt        time.Time
}
