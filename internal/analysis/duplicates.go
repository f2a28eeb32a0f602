package analysis

import (
	"github.com/shopspring/decimal"

	"billguard-backend/internal/findings"
	"billguard-backend/internal/invoices"
)

// exactDuplicates finds groups within one vendor that share an invoice number
// and an identical amount. All-but-one of each group is counted as pure
// waste.
func (d *Detector) exactDuplicates(group []invoices.Invoice) []findings.DuplicateFinding {
	byNumber := make(map[string][]invoices.Invoice)
	for _, inv := range group {
		if inv.InvoiceNumber == "" {
			continue
		}
		byNumber[inv.InvoiceNumber] = append(byNumber[inv.InvoiceNumber], inv)
	}

	var out []findings.DuplicateFinding
	for _, number := range sortedKeys(byNumber) {
		dupes := byNumber[number]
		if len(dupes) < 2 || !sameAmount(dupes) {
			continue
		}
		dupes = sortChronological(dupes)
		amount := dupes[0].Amount
		waste := amount.Mul(decimal.NewFromInt(int64(len(dupes) - 1)))
		f := findings.NewDuplicateFinding(
			findings.DuplicateExact,
			dupes[0].VendorName, dupes[0].VendorKey,
			waste, 0.98,
			invoiceIDs(dupes),
			len(dupes), dateRangeDays(dupes),
			map[string]any{
				"invoice_number": number,
				"charge_amount":  amount.InexactFloat64(),
				"charged_times":  len(dupes),
				"dates":          invoiceDates(dupes),
			},
		)
		out = append(out, f)
	}
	return out
}

// probableDuplicates flags same-amount charges clustered inside a short
// window. These are review flags, never guaranteed waste: their attributed
// amount is always zero and the speculative figure lives in the details.
func (d *Detector) probableDuplicates(group []invoices.Invoice) []findings.DuplicateFinding {
	byAmount := make(map[string][]invoices.Invoice)
	for _, inv := range sortChronological(group) {
		if !inv.Amount.IsPositive() {
			continue
		}
		key := inv.Amount.String()
		byAmount[key] = append(byAmount[key], inv)
	}

	var out []findings.DuplicateFinding
	for _, key := range sortedKeys(byAmount) {
		sameCharge := byAmount[key]
		if len(sameCharge) < 2 {
			continue
		}
		// A full same-amount group matching a known billing cadence is
		// legitimate recurring billing, not duplication.
		if recognizedCadence(sameCharge) {
			continue
		}
		for _, cluster := range temporalClusters(sameCharge, d.cfg.ProbableWindowDays) {
			if sharesOneInvoiceNumber(cluster) {
				continue // already caught as exact
			}
			amount := cluster[0].Amount
			potential := amount.Mul(decimal.NewFromInt(int64(len(cluster) - 1)))
			span := dateRangeDays(cluster)
			f := findings.NewDuplicateFinding(
				findings.DuplicateProbable,
				cluster[0].VendorName, cluster[0].VendorKey,
				decimal.Zero, 0.50,
				invoiceIDs(cluster),
				len(cluster), span,
				map[string]any{
					"charge_amount":   amount.InexactFloat64(),
					"charged_times":   len(cluster),
					"date_range_days": span,
					"dates":           invoiceDates(cluster),
					"requires_review": true,
					"potential_waste": potential.InexactFloat64(),
				},
			)
			f.PotentialWaste = potential
			out = append(out, f)
		}
	}
	return out
}

// temporalClusters splits chronologically sorted invoices into maximal runs
// where consecutive dates are at most windowDays apart. Undated invoices
// break runs; clusters of one are dropped.
func temporalClusters(sorted []invoices.Invoice, windowDays int) [][]invoices.Invoice {
	if len(sorted) == 0 {
		return nil
	}

	var clusters [][]invoices.Invoice
	current := []invoices.Invoice{sorted[0]}

	flush := func() {
		if len(current) > 1 {
			clusters = append(clusters, current)
		}
	}

	for _, inv := range sorted[1:] {
		prev := current[len(current)-1]
		if inv.InvoiceDate == nil || prev.InvoiceDate == nil {
			flush()
			current = []invoices.Invoice{inv}
			continue
		}
		gap := int(inv.InvoiceDate.Sub(*prev.InvoiceDate).Hours() / 24)
		if gap <= windowDays {
			current = append(current, inv)
		} else {
			flush()
			current = []invoices.Invoice{inv}
		}
	}
	flush()
	return clusters
}

func sameAmount(invs []invoices.Invoice) bool {
	for _, inv := range invs[1:] {
		if !inv.Amount.Equal(invs[0].Amount) {
			return false
		}
	}
	return true
}

func sharesOneInvoiceNumber(invs []invoices.Invoice) bool {
	first := invs[0].InvoiceNumber
	if first == "" {
		return false
	}
	for _, inv := range invs[1:] {
		if inv.InvoiceNumber != first {
			return false
		}
	}
	return true
}
