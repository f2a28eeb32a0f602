// Package extraction turns flat document text into structured invoice
// candidates via interchangeable strategies.
package extraction

import (
	"context"

	"github.com/rs/zerolog"

	"billguard-backend/internal/extract"
	"billguard-backend/internal/invoices"
	"billguard-backend/internal/llm"
)

// Result is the outcome of one extraction attempt. Internal failures never
// escape as errors; they surface as Success=false with Error populated, or as
// a degraded low-confidence invoice.
type Result struct {
	Success    bool
	Invoice    *invoices.ParsedInvoice
	Error      string
	SourceType extract.SourceType
}

// Strategy extracts a structured invoice candidate from text.
type Strategy interface {
	Extract(ctx context.Context, text string, src extract.SourceType) Result
}

// Config selects the extraction strategy. It is an explicit value passed in
// at construction so tests can exercise both strategies deterministically.
type Config struct {
	UseModel bool
}

// Extractor is the extraction front-end: it runs the configured strategy and
// falls back to the pattern strategy when the configured one fails.
type Extractor struct {
	strategy Strategy
	pattern  *PatternStrategy
	log      zerolog.Logger
}

// New constructs an Extractor. The pattern strategy is always available; the
// model-assisted strategy is used only when configured and a client exists.
func New(cfg Config, client llm.Client, log zerolog.Logger) *Extractor {
	pattern := NewPatternStrategy()
	e := &Extractor{
		strategy: pattern,
		pattern:  pattern,
		log:      log,
	}
	if cfg.UseModel && client != nil {
		e.strategy = NewModelStrategy(client, log)
	}
	return e
}

// FromText extracts from an already-flat text blob.
func (e *Extractor) FromText(ctx context.Context, text string, src extract.SourceType) Result {
	res := e.strategy.Extract(ctx, text, src)
	if !res.Success && e.strategy != Strategy(e.pattern) {
		e.log.Warn().Str("source_type", string(src)).Str("error", res.Error).
			Msg("configured strategy failed, retrying with pattern strategy")
		res = e.pattern.Extract(ctx, text, src)
	}
	return res
}

// FromPDF extracts document text from PDF bytes and parses it.
func (e *Extractor) FromPDF(ctx context.Context, data []byte) Result {
	text, err := extract.PDF(data)
	if err != nil {
		return Result{Success: false, Error: err.Error(), SourceType: extract.SourcePDF}
	}
	return e.FromText(ctx, text, extract.SourcePDF)
}

// FromHTML reduces an HTML body to text and parses it.
func (e *Extractor) FromHTML(ctx context.Context, html string) Result {
	return e.FromText(ctx, extract.HTML(html), extract.SourceHTML)
}
