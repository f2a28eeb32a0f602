package analysis

import "billguard-backend/internal/invoices"

// cadencePattern is a recurring-billing interval with a tolerance band.
type cadencePattern struct {
	days      float64
	tolerance float64
}

// Known subscription cadences. A same-amount invoice set whose average
// interval lands inside one of these bands is legitimate recurring billing
// and must not be flagged as a probable duplicate.
var cadencePatterns = []cadencePattern{
	{7, 2},    // weekly
	{14, 3},   // bi-weekly
	{30, 5},   // monthly
	{90, 7},   // quarterly
	{365, 14}, // annual
}

// recognizedCadence reports whether a same-amount invoice set matches a known
// billing cadence. Fewer than three dated members is insufficient evidence
// and never classifies as a subscription.
func recognizedCadence(invs []invoices.Invoice) bool {
	avg, intervals := averageInterval(invs)
	if intervals < 2 {
		return false
	}
	for _, p := range cadencePatterns {
		diff := avg - p.days
		if diff < 0 {
			diff = -diff
		}
		if diff <= p.tolerance {
			return true
		}
	}
	return false
}

// averageInterval returns the mean day-gap across chronologically sorted
// dated invoices and the number of gaps measured.
func averageInterval(invs []invoices.Invoice) (float64, int) {
	var dated []invoices.Invoice
	for _, inv := range invs {
		if inv.InvoiceDate != nil {
			dated = append(dated, inv)
		}
	}
	if len(dated) < 3 {
		return 0, 0
	}
	dated = sortChronological(dated)

	total := 0.0
	count := 0
	for i := 1; i < len(dated); i++ {
		gap := dated[i].InvoiceDate.Sub(*dated[i-1].InvoiceDate).Hours() / 24
		total += gap
		count++
	}
	return total / float64(count), count
}

// frequencyLabel buckets an average interval into a billing frequency.
func frequencyLabel(avgDays float64) string {
	switch {
	case avgDays < 10:
		return "weekly"
	case avgDays < 35:
		return "monthly"
	case avgDays < 100:
		return "quarterly"
	case avgDays < 400:
		return "annual"
	default:
		return "irregular"
	}
}
