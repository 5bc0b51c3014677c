package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FranksOps/yelpleads/internal/enrich"
	"github.com/FranksOps/yelpleads/internal/scraper"
	"github.com/FranksOps/yelpleads/internal/summarize"
	"github.com/FranksOps/yelpleads/internal/yelp"
	"github.com/FranksOps/yelpleads/pkg/ratelimit"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type pagedSearcher struct {
	pages [][]yelp.Business
	err   error
	calls int
}

func (s *pagedSearcher) Search(ctx context.Context, p yelp.SearchParams) (*yelp.SearchResponse, error) {
	idx := s.calls
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if idx >= len(s.pages) {
		return &yelp.SearchResponse{}, nil
	}
	return &yelp.SearchResponse{Total: len(s.pages[idx]), Businesses: s.pages[idx]}, nil
}

type cannedSummarizer struct {
	fail  map[string]bool
	calls int
}

func (s *cannedSummarizer) Summarize(ctx context.Context, prompt string) summarize.Result {
	s.calls++
	for name := range s.fail {
		if enrich.Prompt(name, "Toronto") == prompt {
			return summarize.Failure(errors.New("rate limited"))
		}
	}
	return summarize.Success("Has a listing.")
}

// cancellingSummarizer cancels the run on its first call, as an interrupt
// arriving mid-enrichment would.
type cancellingSummarizer struct {
	cancel context.CancelFunc
	calls  int
}

func (s *cancellingSummarizer) Summarize(ctx context.Context, prompt string) summarize.Result {
	s.calls++
	s.cancel()
	return summarize.Failure(ctx.Err())
}

func newPipeline(s scraper.Searcher, sum summarize.Summarizer) *Pipeline {
	return &Pipeline{
		Fetcher:  scraper.NewFetcher(s, scraper.FetchConfig{Delay: ratelimit.None()}, quietLogger),
		Enricher: enrich.New(sum, nil, quietLogger),
		Logger:   quietLogger,
		NewRunID: func() string { return "run-test" },
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestPipeline_Run(t *testing.T) {
	out := filepath.Join(t.TempDir(), "yelp_leads.csv")
	s := &pagedSearcher{pages: [][]yelp.Business{{
		{Name: "Brush Bros", URL: "https://www.yelp.com/biz/brush-bros", Phone: "+14165550100"},
		{Name: "Quiet Paint"},
	}}}
	sum := &cannedSummarizer{}

	summary, err := newPipeline(s, sum).Run(context.Background(), Request{
		City: "Toronto", Category: "painters", Pages: 1, Output: out,
	})
	require.NoError(t, err)
	require.Equal(t, 1, s.calls)
	require.Equal(t, 2, sum.calls)

	require.Equal(t, "run-test", summary.Run.ID)
	require.Equal(t, 2, summary.TotalLeads)
	require.True(t, summary.Outcome.Saved)
	require.Equal(t, 2, summary.Outcome.Rows)

	records := readCSV(t, out)
	require.Len(t, records, 3)
	require.Equal(t, []string{"Name", "Phone", "Website", "Yelp URL", "Score", "Online Presence"}, records[0])
	require.Equal(t, []string{"Quiet Paint", "", "", "", "6", "Has a listing."}, records[1])
	require.Equal(t, "Brush Bros", records[2][0])
	require.Equal(t, "1", records[2][4])
}

func TestPipeline_Run_NoBusinesses(t *testing.T) {
	out := filepath.Join(t.TempDir(), "yelp_leads.csv")
	s := &pagedSearcher{}

	summary, err := newPipeline(s, &cannedSummarizer{}).Run(context.Background(), Request{
		City: "Toronto", Category: "painters", Pages: 2, Output: out,
	})
	require.NoError(t, err)
	require.Equal(t, 2, s.calls)
	require.False(t, summary.Outcome.Saved)
	require.Equal(t, "No leads found. CSV not saved.", summary.Message())

	_, err = os.Stat(out)
	require.True(t, os.IsNotExist(err))
}

func TestPipeline_Run_SummaryFailureIsNotFatal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "yelp_leads.csv")
	s := &pagedSearcher{pages: [][]yelp.Business{{
		{Name: "Flaky Co", Phone: "+1"},
		{Name: "Fine Co"},
	}}}

	summary, err := newPipeline(s, &cannedSummarizer{fail: map[string]bool{"Flaky Co": true}}).Run(
		context.Background(), Request{City: "Toronto", Category: "painters", Pages: 1, Output: out},
	)
	require.NoError(t, err)
	require.Equal(t, 1, summary.SummaryErrors)

	records := readCSV(t, out)
	require.Len(t, records, 3)
	require.Equal(t, "Fine Co", records[1][0])
	require.Equal(t, "Flaky Co", records[2][0])
	require.Equal(t, "4", records[2][4])
	require.Equal(t, "LLM error: rate limited", records[2][5])
}

func TestPipeline_Run_FetchErrorSkipsExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "yelp_leads.csv")
	boom := &yelp.APIError{StatusCode: 401, Code: "TOKEN_INVALID", Description: "Invalid access token"}
	sum := &cannedSummarizer{}

	_, err := newPipeline(&pagedSearcher{err: boom}, sum).Run(context.Background(), Request{
		City: "Toronto", Category: "painters", Pages: 3, Output: out,
	})
	require.Error(t, err)
	require.True(t, yelp.IsAuthError(err))
	require.Zero(t, sum.calls)

	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr))
}

func TestPipeline_Run_MissingComponents(t *testing.T) {
	_, err := (&Pipeline{}).Run(context.Background(), Request{Pages: 1})
	require.Error(t, err)
}

func TestPipeline_Run_InterruptKeepsPreviousExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "yelp_leads.csv")
	require.NoError(t, os.WriteFile(out, []byte("previous run\n"), 0644))

	s := &pagedSearcher{pages: [][]yelp.Business{{
		{Name: "Brush Bros"},
		{Name: "Quiet Paint"},
		{Name: "Fine Co"},
	}}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sum := &cancellingSummarizer{cancel: cancel}

	_, err := newPipeline(s, sum).Run(ctx, Request{
		City: "Toronto", Category: "painters", Pages: 1, Output: out,
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, sum.calls)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "previous run\n", string(data))
}
