package analysis

import (
	"billguard-backend/internal/findings"
	"billguard-backend/internal/invoices"
)

// SprawlRecurring is the category for repeat-billing candidates. Finer
// categories (duplicate accounts, unused seats, overlapping services) need
// account-level data this core does not receive.
const SprawlRecurring = "recurring_charge"

// sprawlCandidates flags a vendor's modal amount as a subscription-review
// candidate when it recurs at least three times. Candidates carry a
// frequency label but never an attributed waste amount; the orchestrator
// does not persist them.
func (d *Detector) sprawlCandidates(group []invoices.Invoice) []findings.UnusedSubscriptionFinding {
	if len(group) < 3 {
		return nil
	}

	byAmount := make(map[string][]invoices.Invoice)
	for _, inv := range group {
		if !inv.Amount.IsPositive() {
			continue
		}
		byAmount[inv.Amount.String()] = append(byAmount[inv.Amount.String()], inv)
	}

	var modal []invoices.Invoice
	for _, key := range sortedKeys(byAmount) {
		if len(byAmount[key]) > len(modal) {
			modal = byAmount[key]
		}
	}
	if len(modal) < 3 {
		return nil
	}

	avg, intervals := averageInterval(modal)
	if intervals < 2 {
		return nil
	}

	modal = sortChronological(modal)
	return []findings.UnusedSubscriptionFinding{
		findings.NewUnusedSubscriptionFinding(
			modal[0].VendorName, modal[0].VendorKey,
			SprawlRecurring,
			modal[0].Amount,
			frequencyLabel(avg),
			invoiceIDs(modal),
		),
	}
}
