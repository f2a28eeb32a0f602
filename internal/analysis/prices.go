package analysis

import (
	"github.com/shopspring/decimal"

	"billguard-backend/internal/findings"
	"billguard-backend/internal/invoices"
)

var hundred = decimal.NewFromInt(100)

// priceIncreases compares every consecutive pair in a vendor's chronological
// history and flags increases at or above the configured threshold. All
// qualifying pairs are reported, not just the endpoints.
func (d *Detector) priceIncreases(group []invoices.Invoice) []findings.PriceIncreaseFinding {
	sorted := sortChronological(group)

	var out []findings.PriceIncreaseFinding
	for i := 0; i < len(sorted)-1; i++ {
		oldInv, newInv := sorted[i], sorted[i+1]
		if !oldInv.Amount.IsPositive() || !newInv.Amount.GreaterThan(oldInv.Amount) {
			continue
		}
		pct := newInv.Amount.Sub(oldInv.Amount).
			Div(oldInv.Amount).
			Mul(hundred).
			InexactFloat64()
		if pct < d.cfg.PriceThresholdPct {
			continue
		}
		out = append(out, findings.NewPriceIncreaseFinding(
			oldInv.VendorName, oldInv.VendorKey,
			oldInv.Amount, newInv.Amount,
			pct,
			oldInv.InvoiceDate, newInv.InvoiceDate,
			[]string{oldInv.ID, newInv.ID},
		))
	}
	return out
}
