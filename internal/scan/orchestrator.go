// Package scan sequences a single scan job: inbox search, per-document
// extraction and persistence, then the tenant-wide analysis pass.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"billguard-backend/internal/analysis"
	"billguard-backend/internal/extract"
	"billguard-backend/internal/extraction"
	"billguard-backend/internal/findings"
	"billguard-backend/internal/inbox"
	"billguard-backend/internal/invoices"
	"billguard-backend/internal/scanjobs"
)

// Orchestrator drives one scan job end to end. It is safe to run
// orchestrators for different jobs concurrently; each operates only on its
// own tenant's records. A single job is processed sequentially.
type Orchestrator struct {
	jobs      scanjobs.Repo
	invoices  invoices.Repo
	findings  findings.Repo
	inboxes   inbox.Factory
	extractor *extraction.Extractor
	detector  *analysis.Detector
	log       zerolog.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(
	jobs scanjobs.Repo,
	invoiceRepo invoices.Repo,
	findingRepo findings.Repo,
	inboxes inbox.Factory,
	extractor *extraction.Extractor,
	detector *analysis.Detector,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		jobs:      jobs,
		invoices:  invoiceRepo,
		findings:  findingRepo,
		inboxes:   inboxes,
		extractor: extractor,
		detector:  detector,
		log:       log,
	}
}

// Run executes the job. Per-document failures are logged and skipped;
// failures outside the document loop mark the job failed with the error
// message recorded verbatim. A job that is not in the queued state is left
// untouched.
func (o *Orchestrator) Run(ctx context.Context, jobID string) error {
	job, err := o.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load scan job %s: %w", jobID, err)
	}

	claimed, err := o.jobs.MarkProcessing(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("mark job %s processing: %w", job.ID, err)
	}
	if !claimed {
		o.log.Info().Str("job_id", job.ID).Str("status", string(job.Status)).
			Msg("scan job not queued, skipping")
		return nil
	}

	log := o.log.With().Str("job_id", job.ID).Str("tenant_id", job.TenantID).Logger()
	log.Info().Time("start_date", job.StartDate).Time("end_date", job.EndDate).
		Msg("scan job started")

	if err := o.runScan(ctx, job, log); err != nil {
		log.Error().Err(err).Msg("scan job failed")
		if ferr := o.jobs.MarkFailed(ctx, job.ID, err.Error()); ferr != nil {
			log.Error().Err(ferr).Msg("record job failure")
		}
		return err
	}
	return nil
}

func (o *Orchestrator) runScan(ctx context.Context, job scanjobs.ScanJob, log zerolog.Logger) error {
	client, err := o.inboxes.ForUser(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("resolve inbox credentials: %w", err)
	}

	refs, err := client.Search(ctx, job.StartDate, job.EndDate)
	if err != nil {
		return fmt.Errorf("search inbox: %w", err)
	}
	log.Info().Int("candidates", len(refs)).Msg("inbox search complete")

	if err := o.jobs.SetTotal(ctx, job.ID, len(refs)); err != nil {
		log.Warn().Err(err).Msg("record document total")
	}

	// Progress is written at a bounded interval, not per document, to limit
	// write amplification.
	interval := len(refs) / 10
	if interval < 1 {
		interval = 1
	}

	processed, found := 0, 0
	for _, ref := range refs {
		found += o.processDocument(ctx, client, job, ref, log)
		processed++
		if processed%interval == 0 {
			if err := o.jobs.UpdateProgress(ctx, job.ID, processed, found); err != nil {
				log.Warn().Err(err).Msg("record progress")
			}
		}
	}

	if err := o.analyze(ctx, job, log); err != nil {
		return err
	}

	if err := o.jobs.MarkCompleted(ctx, job.ID, processed, found); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	log.Info().Int("processed", processed).Int("invoices_found", found).
		Msg("scan job completed")
	return nil
}

// processDocument handles one candidate document and returns how many new
// invoices it produced. Every failure inside it is contained: logged,
// skipped, never fatal to the scan.
func (o *Orchestrator) processDocument(
	ctx context.Context,
	client inbox.Client,
	job scanjobs.ScanJob,
	ref inbox.DocumentRef,
	log zerolog.Logger,
) int {
	msg, err := client.Fetch(ctx, ref)
	if err != nil {
		log.Warn().Err(err).Str("message_id", ref.ID).Msg("fetch document")
		return 0
	}
	if !inbox.IsInvoiceRelated(msg) {
		return 0
	}

	found := 0
	extracted := false
	for _, att := range msg.Attachments {
		if !att.IsPDF() {
			continue
		}
		data, err := client.FetchAttachment(ctx, msg.ID, att.ID)
		if err != nil {
			log.Warn().Err(err).Str("message_id", msg.ID).Str("attachment", att.Filename).
				Msg("fetch attachment")
			continue
		}
		res := o.extractor.FromPDF(ctx, data)
		if !res.Success {
			log.Warn().Str("message_id", msg.ID).Str("attachment", att.Filename).
				Str("error", res.Error).Msg("extraction failed")
			continue
		}
		extracted = true
		if o.persist(ctx, job, *res.Invoice, msg.ID+":"+att.ID, log) {
			found++
		}
	}

	// Messages without a usable PDF still carry HTML receipts or plain-text
	// bodies worth parsing.
	if !extracted {
		var res extraction.Result
		switch {
		case msg.BodyHTML != "":
			res = o.extractor.FromHTML(ctx, msg.BodyHTML)
		case msg.Body != "":
			res = o.extractor.FromText(ctx, msg.Body, extract.SourceText)
		default:
			return found
		}
		if !res.Success {
			log.Warn().Str("message_id", msg.ID).Str("error", res.Error).
				Msg("body extraction failed")
			return found
		}
		if o.persist(ctx, job, *res.Invoice, msg.ID, log) {
			found++
		}
	}
	return found
}

// persist stores an extracted invoice idempotently keyed by (tenant, source
// id) and reports whether a new record landed.
func (o *Orchestrator) persist(
	ctx context.Context,
	job scanjobs.ScanJob,
	parsed invoices.ParsedInvoice,
	sourceID string,
	log zerolog.Logger,
) bool {
	inv := invoices.Invoice{
		ID:               uuid.NewString(),
		TenantID:         job.TenantID,
		UserID:           job.UserID,
		ScanJobID:        job.ID,
		SourceID:         sourceID,
		VendorName:       parsed.VendorName,
		VendorKey:        parsed.VendorKey,
		InvoiceNumber:    parsed.InvoiceNumber,
		InvoiceDate:      parsed.InvoiceDate,
		DueDate:          parsed.DueDate,
		Amount:           parsed.Amount,
		Currency:         parsed.Currency,
		ConfidenceScore:  parsed.ConfidenceScore,
		ExtractionMethod: parsed.ExtractionMethod,
		RawText:          parsed.RawText,
		CreatedAt:        time.Now().UTC(),
	}
	inserted, err := o.invoices.Insert(ctx, inv)
	if err != nil {
		log.Warn().Err(err).Str("source_id", sourceID).Msg("persist invoice")
		return false
	}
	if inserted {
		log.Info().Str("vendor", inv.VendorName).Str("amount", inv.Amount.String()).
			Msg("invoice saved")
	}
	return inserted
}

// analyze runs the detector over the tenant's full invoice set and inserts
// findings whose (type, primary invoice) key is not already present, so
// repeated scans never duplicate findings.
func (o *Orchestrator) analyze(ctx context.Context, job scanjobs.ScanJob, log zerolog.Logger) error {
	all, err := o.invoices.ListByTenant(ctx, job.TenantID)
	if err != nil {
		return fmt.Errorf("load tenant invoices: %w", err)
	}

	report := o.detector.Analyze(all)
	log.Info().
		Int("duplicates", len(report.Duplicates)).
		Int("price_increases", len(report.PriceIncreases)).
		Int("sprawl_candidates", len(report.Sprawl)).
		Str("guaranteed_waste", report.GuaranteedWaste().StringFixed(2)).
		Str("potential_waste", report.PotentialWaste().StringFixed(2)).
		Msg("analysis complete")

	existing, err := o.findings.ListByTenant(ctx, job.TenantID)
	if err != nil {
		return fmt.Errorf("load existing findings: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, f := range existing {
		seen[f.DedupeKey()] = true
	}

	now := time.Now().UTC()
	var fresh []findings.Finding
	add := func(f findings.Finding) {
		if seen[f.DedupeKey()] {
			return
		}
		seen[f.DedupeKey()] = true
		f.ID = uuid.NewString()
		f.TenantID = job.TenantID
		f.CreatedAt = now
		fresh = append(fresh, f)
	}
	for _, d := range report.Duplicates {
		add(d.Finding)
	}
	for _, p := range report.PriceIncreases {
		add(p.Finding)
	}
	// Sprawl candidates are surfaced in logs only: attributing waste needs
	// account-level data this core does not receive.

	if len(fresh) == 0 {
		return nil
	}
	if err := o.findings.Insert(ctx, fresh); err != nil {
		return fmt.Errorf("persist findings: %w", err)
	}
	log.Info().Int("new_findings", len(fresh)).Msg("findings saved")
	return nil
}
