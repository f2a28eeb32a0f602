package findings

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a finding.
type Type string

const (
	TypeDuplicate          Type = "duplicate"
	TypePriceIncrease      Type = "price_increase"
	TypeUnusedSubscription Type = "unused_subscription"
)

// DuplicateType grades how certain a duplicate finding is.
type DuplicateType string

const (
	DuplicateExact    DuplicateType = "exact"
	DuplicateProbable DuplicateType = "probable"
	DuplicatePossible DuplicateType = "possible"
)

// Finding is a detected anomaly. Amount is the financial impact attributed to
// the finding; for review-only findings it is zero and any speculative figure
// lives in Details. The first invoice id is the primary one and forms the
// rerun-dedup key together with the type.
type Finding struct {
	ID              string
	TenantID        string
	Type            Type
	Title           string
	Description     string
	Amount          decimal.Decimal
	ConfidenceScore float64
	InvoiceIDs      []string
	Details         map[string]any
	CreatedAt       time.Time
}

// DedupeKey identifies a finding across analysis reruns.
func (f Finding) DedupeKey() string {
	primary := ""
	if len(f.InvoiceIDs) > 0 {
		primary = f.InvoiceIDs[0]
	}
	return string(f.Type) + ":" + primary
}

// DuplicateFinding is a duplicate-charge finding.
type DuplicateFinding struct {
	Finding
	DuplicateType DuplicateType
	VendorKey     string
	InvoiceCount  int
	DateRangeDays int
	// PotentialWaste is the speculative impact of a probable cluster. It is
	// reported separately and never folded into Amount.
	PotentialWaste decimal.Decimal
}

// NewDuplicateFinding builds a duplicate finding with its generated title and
// description. vendorName is the display name, vendorKey the grouping key.
func NewDuplicateFinding(
	dupType DuplicateType,
	vendorName, vendorKey string,
	amount decimal.Decimal,
	confidence float64,
	invoiceIDs []string,
	count, dateRangeDays int,
	details map[string]any,
) DuplicateFinding {
	f := DuplicateFinding{
		Finding: Finding{
			Type:            TypeDuplicate,
			Title:           fmt.Sprintf("Duplicate charge from %s", vendorName),
			Amount:          amount,
			ConfidenceScore: confidence,
			InvoiceIDs:      invoiceIDs,
			Details:         details,
		},
		DuplicateType: dupType,
		VendorKey:     vendorKey,
		InvoiceCount:  count,
		DateRangeDays: dateRangeDays,
	}
	switch dupType {
	case DuplicateExact:
		f.Description = fmt.Sprintf("Same invoice charged %d times (exact match)", count)
	case DuplicateProbable:
		f.Description = fmt.Sprintf(
			"Likely duplicate - same amount charged %d times within %d days", count, dateRangeDays)
	default:
		f.Description = fmt.Sprintf("Possible duplicate - similar charges from %s", vendorName)
	}
	if f.Details == nil {
		f.Details = map[string]any{}
	}
	f.Details["duplicate_type"] = string(dupType)
	f.Details["vendor_key"] = vendorKey
	return f
}

// PriceIncreaseFinding is a consecutive-invoice price jump for one vendor.
type PriceIncreaseFinding struct {
	Finding
	VendorKey          string
	OldAmount          decimal.Decimal
	NewAmount          decimal.Decimal
	IncreasePercentage float64
	OldDate            *time.Time
	NewDate            *time.Time
}

// NewPriceIncreaseFinding builds a price-increase finding. Amount is the
// delta between the new and old charge.
func NewPriceIncreaseFinding(
	vendorName, vendorKey string,
	oldAmount, newAmount decimal.Decimal,
	increasePct float64,
	oldDate, newDate *time.Time,
	invoiceIDs []string,
) PriceIncreaseFinding {
	delta := newAmount.Sub(oldAmount)
	f := PriceIncreaseFinding{
		Finding: Finding{
			Type:            TypePriceIncrease,
			Title:           fmt.Sprintf("Price increase from %s", vendorName),
			Description: fmt.Sprintf("Price increased from $%s to $%s (%.1f%% increase)",
				oldAmount.StringFixed(2), newAmount.StringFixed(2), increasePct),
			Amount:          delta,
			ConfidenceScore: 0.90,
			InvoiceIDs:      invoiceIDs,
			Details: map[string]any{
				"vendor_key":          vendorKey,
				"old_amount":          oldAmount.InexactFloat64(),
				"new_amount":          newAmount.InexactFloat64(),
				"increase_amount":     delta.InexactFloat64(),
				"increase_percentage": increasePct,
			},
		},
		VendorKey:          vendorKey,
		OldAmount:          oldAmount,
		NewAmount:          newAmount,
		IncreasePercentage: increasePct,
		OldDate:            oldDate,
		NewDate:            newDate,
	}
	return f
}

// UnusedSubscriptionFinding flags a recurring-billing pattern as a sprawl
// review candidate. Attributing dollar waste needs account-level data this
// core does not have, so Amount is always zero.
type UnusedSubscriptionFinding struct {
	Finding
	VendorKey       string
	SprawlCategory  string
	RecurringAmount decimal.Decimal
	Frequency       string
}

// NewUnusedSubscriptionFinding builds a subscription-sprawl candidate.
func NewUnusedSubscriptionFinding(
	vendorName, vendorKey, category string,
	recurringAmount decimal.Decimal,
	frequency string,
	invoiceIDs []string,
) UnusedSubscriptionFinding {
	return UnusedSubscriptionFinding{
		Finding: Finding{
			Type:  TypeUnusedSubscription,
			Title: fmt.Sprintf("Recurring subscription: %s", vendorName),
			Description: fmt.Sprintf("%s is billed %s at $%s - review whether it is still needed",
				vendorName, frequency, recurringAmount.StringFixed(2)),
			Amount:          decimal.Zero,
			ConfidenceScore: 0.40,
			InvoiceIDs:      invoiceIDs,
			Details: map[string]any{
				"vendor_key":       vendorKey,
				"sprawl_category":  category,
				"recurring_amount": recurringAmount.InexactFloat64(),
				"frequency":        frequency,
			},
		},
		VendorKey:       vendorKey,
		SprawlCategory:  category,
		RecurringAmount: recurringAmount,
		Frequency:       frequency,
	}
}
