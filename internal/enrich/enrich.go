package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FranksOps/yelpleads/internal/lead"
	"github.com/FranksOps/yelpleads/internal/metrics"
	"github.com/FranksOps/yelpleads/internal/summarize"
)

// ErrorPrefix marks a summary that holds a summarization failure instead of text.
const ErrorPrefix = "LLM error: "

// Enricher scores raw directory entries and attaches an online presence summary.
type Enricher struct {
	summarizer summarize.Summarizer
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// New creates an Enricher. metrics may be nil.
func New(s summarize.Summarizer, m *metrics.Recorder, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{summarizer: s, metrics: m, logger: logger}
}

// Prompt builds the research question sent for a single business.
func Prompt(name, city string) string {
	return fmt.Sprintf(
		"Research the business '%s' in '%s'. "+
			"Does it have a Google Business Profile? "+
			"Summarize its online presence in 1-2 sentences. "+
			"Return a short, structured answer.",
		name, city,
	)
}

// IsErrorSummary reports whether summary carries a summarization failure.
func IsErrorSummary(summary string) bool {
	return strings.HasPrefix(summary, ErrorPrefix)
}

// Enrich converts raw into a Lead. It makes exactly one summarizer call.
// A failed call is recorded in the summary text and never changes the score.
func (e *Enricher) Enrich(ctx context.Context, raw lead.RawBusiness, city string) lead.Lead {
	// The search API only exposes the Yelp profile link, so it doubles as the website.
	website := raw.URL

	l := lead.Lead{
		Name:         raw.Name,
		Phone:        raw.Phone,
		Website:      website,
		DirectoryURL: lead.Value(raw.URL),
		Score:        lead.Score(website != nil, raw.Phone != nil),
	}

	res := e.summarizer.Summarize(ctx, Prompt(raw.Name, city))
	e.metrics.RecordSummary(res.OK())
	if res.OK() {
		l.OnlinePresence = res.Text
	} else {
		e.logger.Warn("summary failed", "business", raw.Name, "err", res.Err)
		l.OnlinePresence = ErrorPrefix + res.Err.Error()
	}

	e.metrics.RecordLead(l.Score)
	return l
}

// EnrichAll enriches raws in order. Every record is enriched even when some
// summaries fail. Once ctx is done the remaining records are skipped and the
// leads built so far are returned.
func (e *Enricher) EnrichAll(ctx context.Context, raws []lead.RawBusiness, city string) lead.Collection {
	out := make(lead.Collection, 0, len(raws))
	for i, raw := range raws {
		if ctx.Err() != nil {
			e.logger.Warn("enrichment interrupted", "done", len(out), "of", len(raws))
			break
		}
		e.logger.Debug("enriching", "index", i+1, "of", len(raws), "business", raw.Name)
		out = append(out, e.Enrich(ctx, raw, city))
	}
	return out
}
