package inbox

import "strings"

// invoiceKeywords mark a message as billing related.
var invoiceKeywords = []string{
	"invoice", "receipt", "payment", "billing", "order", "purchase",
	"subscription", "charge", "total", "amount due", "paid",
}

// quoteKeywords mark a message as a quote or estimate, which is never
// ingested. The deny list always wins over the allow list.
var quoteKeywords = []string{
	"quote", "quotation", "estimate", "proposal", "pro forma", "proforma",
}

// IsInvoiceRelated is the binary relevance classifier applied before a
// message enters the extraction pipeline. PDF attachments are a strong
// positive signal; quote/estimate keywords force rejection.
func IsInvoiceRelated(msg Message) bool {
	subject := strings.ToLower(msg.Subject)
	if containsAny(subject, quoteKeywords) {
		return false
	}
	if containsAny(subject, invoiceKeywords) {
		return true
	}

	body := strings.ToLower(msg.Body)
	if body == "" {
		body = strings.ToLower(msg.BodyHTML)
	}
	if containsAny(body, quoteKeywords) {
		return false
	}
	if containsAny(body, invoiceKeywords) {
		return true
	}

	for _, att := range msg.Attachments {
		filename := strings.ToLower(att.Filename)
		if containsAny(filename, quoteKeywords) {
			return false
		}
		if att.IsPDF() || strings.Contains(filename, "invoice") {
			return true
		}
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
