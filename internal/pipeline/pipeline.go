package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/yelpleads/internal/export"
	"github.com/FranksOps/yelpleads/internal/lead"
	"github.com/FranksOps/yelpleads/internal/report"
)

// Fetcher collects raw directory entries for a search.
type Fetcher interface {
	FetchLeads(ctx context.Context, city, category string, pages int) ([]lead.RawBusiness, error)
}

// Enricher scores and summarizes raw entries, preserving their order.
type Enricher interface {
	EnrichAll(ctx context.Context, raws []lead.RawBusiness, city string) lead.Collection
}

// Request is one lead-generation run.
type Request struct {
	City     string
	Category string
	Pages    int
	// Output is the export destination; empty selects export.DefaultDestination.
	Output string
}

// Pipeline orchestrates the stages of a run: fetch every page, enrich each
// business in order, then export the sorted leads.
type Pipeline struct {
	Fetcher  Fetcher
	Enricher Enricher
	Logger   *slog.Logger

	// NewRunID and Now are replaced in tests.
	NewRunID func() string
	Now      func() time.Time
}

// Run executes the pipeline. A fetch failure aborts the run before anything
// is enriched or exported.
func (p *Pipeline) Run(ctx context.Context, req Request) (report.Summary, error) {
	if p.Fetcher == nil {
		return report.Summary{}, errors.New("pipeline: fetcher is nil")
	}
	if p.Enricher == nil {
		return report.Summary{}, errors.New("pipeline: enricher is nil")
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	newID := p.NewRunID
	if newID == nil {
		newID = uuid.NewString
	}

	run := report.Run{ID: newID(), City: req.City, Category: req.Category, Pages: req.Pages}
	logger = logger.With("run_id", run.ID)
	start := now()

	logger.Info("fetching businesses", "city", req.City, "category", req.Category, "pages", req.Pages)
	raws, err := p.Fetcher.FetchLeads(ctx, req.City, req.Category, req.Pages)
	if err != nil {
		return report.Summary{}, fmt.Errorf("pipeline: fetch: %w", err)
	}
	logger.Info("fetched businesses", "count", len(raws))

	leads := p.Enricher.EnrichAll(ctx, raws, req.City)
	// An interrupted run must not replace an earlier export with a partial one.
	if err := ctx.Err(); err != nil {
		return report.Summary{}, fmt.Errorf("pipeline: enrich: %w", err)
	}

	outcome, err := export.Export(ctx, leads, req.Output, export.Options{RunID: run.ID, Now: now})
	if err != nil {
		return report.Summary{}, fmt.Errorf("pipeline: %w", err)
	}
	if outcome.Saved {
		logger.Info("leads exported", "rows", outcome.Rows, "destination", outcome.Destination, "format", outcome.Format)
	}

	return report.GenerateSummary(run, leads, outcome, start, now()), nil
}
