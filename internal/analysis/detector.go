// Package analysis detects billing anomalies over a tenant's persisted
// invoices: duplicate charges, price increases, and subscription sprawl.
// Detection is a pure function of its input; all grouping uses the
// normalized vendor key.
package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"billguard-backend/internal/findings"
	"billguard-backend/internal/invoices"
)

// Defaults for detection thresholds.
const (
	DefaultPriceThresholdPct  = 20.0
	DefaultProbableWindowDays = 2
)

// Config tunes the detector.
type Config struct {
	// PriceThresholdPct is the minimum consecutive-invoice increase, in
	// percent, that gets flagged. The comparison is a strict >=.
	PriceThresholdPct float64
	// ProbableWindowDays is the temporal-cluster window for probable
	// duplicates. It is deliberately short so recurring billing is not
	// mistaken for duplication.
	ProbableWindowDays int
}

// Detector runs the anomaly detection pass.
type Detector struct {
	cfg Config
}

// NewDetector constructs a Detector, filling zero config values with
// defaults.
func NewDetector(cfg Config) *Detector {
	if cfg.PriceThresholdPct <= 0 {
		cfg.PriceThresholdPct = DefaultPriceThresholdPct
	}
	if cfg.ProbableWindowDays <= 0 {
		cfg.ProbableWindowDays = DefaultProbableWindowDays
	}
	return &Detector{cfg: cfg}
}

// Report is the outcome of one analysis pass. Sprawl entries are review
// candidates only; the orchestrator does not persist them.
type Report struct {
	Duplicates     []findings.DuplicateFinding
	PriceIncreases []findings.PriceIncreaseFinding
	Sprawl         []findings.UnusedSubscriptionFinding
}

// GuaranteedWaste is the financial impact safe to report as certain: exact
// duplicates plus price-increase deltas. Probable duplicates and sprawl
// candidates never contribute here.
func (r Report) GuaranteedWaste() decimal.Decimal {
	total := decimal.Zero
	for _, d := range r.Duplicates {
		if d.DuplicateType == findings.DuplicateExact {
			total = total.Add(d.Amount)
		}
	}
	for _, p := range r.PriceIncreases {
		total = total.Add(p.Amount)
	}
	return total
}

// PotentialWaste sums the speculative impact of probable-duplicate clusters,
// reported separately and requiring human confirmation.
func (r Report) PotentialWaste() decimal.Decimal {
	total := decimal.Zero
	for _, d := range r.Duplicates {
		if d.DuplicateType == findings.DuplicateProbable {
			total = total.Add(d.PotentialWaste)
		}
	}
	return total
}

// Analyze runs all detection passes over a tenant's invoice set.
func (d *Detector) Analyze(invs []invoices.Invoice) Report {
	byVendor := groupByVendor(invs)
	report := Report{}
	for _, key := range sortedKeys(byVendor) {
		group := byVendor[key]
		report.Duplicates = append(report.Duplicates, d.exactDuplicates(group)...)
		report.Duplicates = append(report.Duplicates, d.probableDuplicates(group)...)
		report.PriceIncreases = append(report.PriceIncreases, d.priceIncreases(group)...)
		report.Sprawl = append(report.Sprawl, d.sprawlCandidates(group)...)
	}
	return report
}

func groupByVendor(invs []invoices.Invoice) map[string][]invoices.Invoice {
	grouped := make(map[string][]invoices.Invoice)
	for _, inv := range invs {
		key := inv.VendorKey
		if key == "" {
			key = "unknown"
		}
		grouped[key] = append(grouped[key], inv)
	}
	return grouped
}

func sortedKeys(m map[string][]invoices.Invoice) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortChronological orders invoices by invoice date, undated first, with
// creation time as the tiebreaker.
func sortChronological(invs []invoices.Invoice) []invoices.Invoice {
	out := make([]invoices.Invoice, len(invs))
	copy(out, invs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].InvoiceDate, out[j].InvoiceDate
		switch {
		case a == nil && b == nil:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case a == nil:
			return true
		case b == nil:
			return false
		case a.Equal(*b):
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		default:
			return a.Before(*b)
		}
	})
	return out
}

func invoiceIDs(invs []invoices.Invoice) []string {
	ids := make([]string, 0, len(invs))
	for _, inv := range invs {
		ids = append(ids, inv.ID)
	}
	return ids
}

func invoiceDates(invs []invoices.Invoice) []string {
	dates := make([]string, 0, len(invs))
	for _, inv := range invs {
		if inv.InvoiceDate != nil {
			dates = append(dates, inv.InvoiceDate.Format("2006-01-02"))
		}
	}
	return dates
}

// dateRangeDays is the span in days between the earliest and latest dated
// invoices; zero when fewer than two carry dates.
func dateRangeDays(invs []invoices.Invoice) int {
	var hasAny bool
	var min, max int64
	for _, inv := range invs {
		if inv.InvoiceDate == nil {
			continue
		}
		u := inv.InvoiceDate.Unix()
		if !hasAny {
			min, max = u, u
			hasAny = true
			continue
		}
		if u < min {
			min = u
		}
		if u > max {
			max = u
		}
	}
	if !hasAny {
		return 0
	}
	return int((max - min) / 86400)
}
