package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/FranksOps/yelpleads/internal/lead"
	"github.com/FranksOps/yelpleads/internal/metrics"
	"github.com/FranksOps/yelpleads/internal/yelp"
	"github.com/FranksOps/yelpleads/pkg/ratelimit"
)

// Searcher is the business directory the Fetcher pages through.
type Searcher interface {
	Search(ctx context.Context, p yelp.SearchParams) (*yelp.SearchResponse, error)
}

// FetchConfig configures paged fetching.
type FetchConfig struct {
	// Delay is applied after every page that returned businesses.
	// Nil selects ratelimit.Fixed(ratelimit.DefaultPageDelay).
	Delay    ratelimit.Policy
	PageSize int
	Metrics  *metrics.Recorder
}

// Fetcher turns a city/category query into a flat list of directory entries.
type Fetcher struct {
	config   FetchConfig
	searcher Searcher
	logger   *slog.Logger
}

// NewFetcher initializes a new Fetcher with the given configuration.
func NewFetcher(searcher Searcher, cfg FetchConfig, logger *slog.Logger) *Fetcher {
	if cfg.Delay == nil {
		cfg.Delay = ratelimit.Fixed(ratelimit.DefaultPageDelay)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = yelp.PageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		config:   cfg,
		searcher: searcher,
		logger:   logger,
	}
}

// FetchLeads issues exactly pages queries sorted by rating and returns every
// business in page order. The first search failure aborts the fetch and is
// returned; results from earlier pages are discarded with it.
func (f *Fetcher) FetchLeads(ctx context.Context, city, category string, pages int) ([]lead.RawBusiness, error) {
	if pages < 1 {
		return nil, fmt.Errorf("scraper: page count must be at least 1, got %d", pages)
	}

	var all []lead.RawBusiness
	for page := 0; page < pages; page++ {
		params := yelp.SearchParams{
			Term:     category,
			Location: city,
			Offset:   page * f.config.PageSize,
			Limit:    f.config.PageSize,
			SortBy:   yelp.SortByRating,
		}

		f.logger.Debug("searching", "page", page+1, "offset", params.Offset, "term", category, "location", city)

		start := time.Now()
		resp, err := f.searcher.Search(ctx, params)
		var found int
		if resp != nil {
			found = len(resp.Businesses)
		}
		f.config.Metrics.RecordSearch(time.Since(start), found, err)
		if err != nil {
			return nil, fmt.Errorf("scraper: page %d: %w", page+1, err)
		}

		if found == 0 {
			f.logger.Info(fmt.Sprintf("No results found on page %d.", page+1), "page", page+1)
			continue
		}

		all = append(all, lo.Map(resp.Businesses, func(b yelp.Business, _ int) lead.RawBusiness {
			return toRaw(b)
		})...)
		f.logger.Info("fetched page", "page", page+1, "businesses", found, "total", len(all))

		if err := f.config.Delay.Wait(ctx, page); err != nil {
			return nil, fmt.Errorf("scraper: page delay interrupted: %w", err)
		}
	}

	return all, nil
}

func toRaw(b yelp.Business) lead.RawBusiness {
	return lead.RawBusiness{
		Name:  b.Name,
		URL:   lead.Optional(b.URL),
		Phone: lead.Optional(b.Phone),
	}
}
