package extraction

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"billguard-backend/internal/extract"
	"billguard-backend/internal/invoices"
)

// Window sizes for field scanning. Headers carry the vendor; identifiers and
// dates cluster near the top of billing documents.
const (
	vendorScanChars = 500
	fieldScanChars  = 1000
)

var (
	vendorFromPattern   = regexp.MustCompile(`(?im)^(?:invoice\s+)?from[:\s]+([A-Za-z][A-Za-z0-9&,.' ]{2,60}?)\s*$`)
	vendorSuffixPattern = regexp.MustCompile(`([A-Z][A-Za-z0-9&,.' ]{2,60}?)\s*(?:Inc\.?|LLC|Ltd\.?|Corp\.?|Corporation)`)
	senderEmailPattern  = regexp.MustCompile(`(?i)from[:\s<]+([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})`)

	labeledAmountPattern = regexp.MustCompile(`(?i)(?:total|amount|due|balance)[\s:]*\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`)
	dollarAmountPattern  = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	usdAmountPattern     = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*\.\d{2})\s*USD`)

	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)invoice\s+number\s*:?\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`),
		regexp.MustCompile(`(?i)invoice\s*#\s*:?\s*([A-Za-z0-9][A-Za-z0-9-]{2,})`),
		regexp.MustCompile(`#\s*([A-Z0-9][A-Z0-9-]{4,})`),
	}

	invoiceDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)invoice\s+date\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)date\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})`),
		regexp.MustCompile(`(?i)([A-Za-z]+\s+\d{1,2},\s+\d{4})`),
	}

	dueDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)due\s+date\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)payment\s+due\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)due\s*(?:date)?\s*:?\s*([A-Za-z]+\s+\d{1,2},\s+\d{4})`),
	}
)

// firstLineStopWords disqualify a document's opening line from being read as
// a vendor name.
var firstLineStopWords = []string{
	"invoice", "receipt", "statement", "bill", "total", "amount",
	"date", "order", "payment", "tax",
}

// PatternStrategy is the deterministic, dependency-free extraction strategy.
// It is always available and doubles as the fallback for the model-assisted
// strategy.
type PatternStrategy struct{}

// NewPatternStrategy constructs a PatternStrategy.
func NewPatternStrategy() *PatternStrategy {
	return &PatternStrategy{}
}

// Extract parses invoice fields out of text with label-anchored patterns.
func (s *PatternStrategy) Extract(ctx context.Context, text string, src extract.SourceType) Result {
	if err := ctx.Err(); err != nil {
		return Result{Success: false, Error: err.Error(), SourceType: src}
	}

	vendor := extractVendor(text)
	amount, amountFound := extractAmount(text)
	number := extractInvoiceNumber(text)
	invoiceDate := extractDate(text, invoiceDatePatterns)
	dueDate := extractDate(text, dueDatePatterns)

	confidence := patternConfidence(vendor, amountFound, number, invoiceDate)

	if !amountFound {
		return Result{
			Success:    false,
			Error:      "no positive amount found",
			SourceType: src,
		}
	}

	inv, err := invoices.NewParsedInvoice(
		vendor, number, invoiceDate, dueDate, amount, "USD",
		confidence, invoices.MethodPattern, text,
	)
	if err != nil {
		return Result{Success: false, Error: err.Error(), SourceType: src}
	}
	return Result{Success: true, Invoice: &inv, SourceType: src}
}

// patternConfidence scores 0.3 per extracted field, capped at 1.0.
func patternConfidence(vendor string, amountFound bool, number string, invoiceDate *time.Time) float64 {
	score := 0.0
	if vendor != "" {
		score += 0.3
	}
	if amountFound {
		score += 0.3
	}
	if number != "" {
		score += 0.3
	}
	if invoiceDate != nil {
		score += 0.3
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func extractVendor(text string) string {
	head := clip(text, vendorScanChars)

	if v := vendorFromFirstLine(text); v != "" {
		return v
	}
	if m := vendorFromPattern.FindStringSubmatch(head); m != nil {
		if v := cleanVendor(m[1]); len(v) > 3 {
			return v
		}
	}
	if m := vendorSuffixPattern.FindStringSubmatch(head); m != nil {
		if v := cleanVendor(m[1]); len(v) > 3 {
			return v
		}
	}
	if m := senderEmailPattern.FindStringSubmatch(text); m != nil {
		domain := strings.SplitN(strings.SplitN(m[1], "@", 2)[1], ".", 2)[0]
		if domain != "" {
			return strings.ToUpper(domain[:1]) + domain[1:]
		}
	}
	return ""
}

// vendorFromFirstLine reads the first non-empty line as the vendor when it
// looks like a company header rather than a document label.
func vendorFromFirstLine(text string) string {
	for _, line := range strings.Split(clip(text, vendorScanChars), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) < 3 || len(line) > 60 {
			return ""
		}
		if strings.ContainsAny(line, "@$") || !strings.ContainsFunc(line, isLetter) {
			return ""
		}
		lower := strings.ToLower(line)
		for _, word := range firstLineStopWords {
			if strings.Contains(lower, word) {
				return ""
			}
		}
		return cleanVendor(line)
	}
	return ""
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func cleanVendor(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, ",.")
	return strings.Join(strings.Fields(v), " ")
}

// extractAmount collects every monetary match, discards non-positive values,
// and returns the maximum: the grand total is typically the largest number on
// the document.
func extractAmount(text string) (decimal.Decimal, bool) {
	var (
		best  decimal.Decimal
		found bool
	)
	for _, pattern := range []*regexp.Regexp{labeledAmountPattern, dollarAmountPattern, usdAmountPattern} {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(m[1], ",", "")
			amount, err := decimal.NewFromString(raw)
			if err != nil || !amount.IsPositive() {
				continue
			}
			if !found || amount.GreaterThan(best) {
				best = amount
				found = true
			}
		}
	}
	return best, found
}

func extractInvoiceNumber(text string) string {
	head := clip(text, fieldScanChars)
	for _, pattern := range invoiceNumberPatterns {
		if m := pattern.FindStringSubmatch(head); m != nil {
			token := strings.TrimSpace(m[1])
			// Pure label words slip through the case-insensitive classes.
			if strings.EqualFold(token, "number") || strings.EqualFold(token, "date") {
				continue
			}
			return token
		}
	}
	return ""
}

func extractDate(text string, patterns []*regexp.Regexp) *time.Time {
	head := clip(text, fieldScanChars)
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(head); m != nil {
			parsed, err := dateparse.ParseAny(m[1])
			if err != nil {
				continue
			}
			d := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

func clip(text string, n int) string {
	if len(text) > n {
		return text[:n]
	}
	return text
}
