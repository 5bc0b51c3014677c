package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FranksOps/yelpleads/internal/config"
	"github.com/FranksOps/yelpleads/internal/enrich"
	"github.com/FranksOps/yelpleads/internal/fingerprint"
	"github.com/FranksOps/yelpleads/internal/metrics"
	"github.com/FranksOps/yelpleads/internal/pipeline"
	"github.com/FranksOps/yelpleads/internal/prompt"
	"github.com/FranksOps/yelpleads/internal/report"
	"github.com/FranksOps/yelpleads/internal/scraper"
	"github.com/FranksOps/yelpleads/internal/summarize"
	"github.com/FranksOps/yelpleads/internal/yelp"
	"github.com/FranksOps/yelpleads/pkg/httpclient"
	"github.com/FranksOps/yelpleads/pkg/logx"
	"github.com/FranksOps/yelpleads/pkg/proxy"
	"github.com/FranksOps/yelpleads/pkg/ratelimit"
	"github.com/FranksOps/yelpleads/pkg/useragent"
)

type options struct {
	configFile string
	city       string
	category   string
	pages      string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "yelpleads",
		Short: "Collect Yelp businesses, score them as leads and export the list",
		Long: `yelpleads searches the Yelp business directory for a category in a city,
scores every business by missing phone and website, asks an LLM to summarize
its online presence and writes the leads sorted by score.

Credentials are read from the environment or a .env file:
  YELP_CLIENT_ID, YELP_API_KEY  (required)
  OPENAI_API_KEY                (summaries fail in-band without it)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(opts.configFile)
			if err != nil {
				return err
			}
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("bind flags: %w", err)
			}
			return run(cmd.Context(), v, opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "optional config file (yaml, json or toml)")
	f.StringVar(&opts.city, "city", "", "city to search, prompted when empty")
	f.StringVar(&opts.category, "category", "", "business category to search, prompted when empty")
	f.StringVar(&opts.pages, "pages", "", "number of result pages (50 businesses each), prompted when empty")

	f.StringP("output", "o", "", "destination: .csv, .json/.jsonl/.ndjson, .db/.sqlite or a postgres:// DSN")
	f.Duration("page-delay", 0, "pause after each non-empty page")
	f.Float64("page-jitter", 0, "random fraction (0-1) added to or removed from the page delay")
	f.String("model", "", "chat completion model")
	f.Int("max-tokens", 0, "completion token limit per summary")
	f.Float32("temperature", 0, "completion temperature")
	f.Duration("timeout", 0, "HTTP timeout for each API call")
	f.String("yelp-base-url", "", "Yelp API base URL")
	f.String("openai-base-url", "", "OpenAI-compatible API base URL")
	f.String("tls-profile", "", "TLS fingerprint for Yelp requests: go, chrome, firefox, safari, random")
	f.StringSlice("proxy", nil, "HTTP proxy for API calls, repeatable; requests rotate across them")
	f.String("proxy-file", "", "file with one proxy URL per line")
	f.String("log-level", "", "debug, info, warn or error")
	f.String("metrics-file", "", "write Prometheus metrics in text format to this file after the run")
	f.String("report", "", "run summary format: text, json, html or none")

	return cmd
}

func run(ctx context.Context, v *viper.Viper, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	// Credentials are checked before any prompt or network call.
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	s := cfg.Settings

	level, err := logx.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	logger := logx.New(stderr, level)
	slog.SetDefault(logger)

	req, err := collectRequest(prompt.New(stdin, stdout), opts, stdout)
	if err != nil {
		return err
	}
	req.Output = s.Output

	proxies, err := proxy.NewPool(s.Proxies...)
	if err != nil {
		return err
	}
	if s.ProxyFile != "" {
		if err := proxies.LoadFile(s.ProxyFile); err != nil {
			return err
		}
	}
	if proxies.Len() > 0 {
		logger.Debug("routing API calls through proxies", "count", proxies.Len())
	}

	profile, err := fingerprint.ParseProfile(s.TLSProfile)
	if err != nil {
		return err
	}
	transport, err := fingerprint.Transport(profile, fingerprint.Options{Proxy: proxies.ProxyFunc()})
	if err != nil {
		return err
	}

	searcher, err := yelp.New(yelp.Config{
		BaseURL:   s.YelpBaseURL,
		APIKey:    cfg.Credentials.YelpAPIKey,
		Transport: transport,
		HTTP: httpclient.Config{
			Timeout:   s.Timeout,
			UserAgent: useragent.For(string(profile)),
		},
	})
	if err != nil {
		return err
	}

	llmTransport, err := fingerprint.Transport(fingerprint.ProfileGo, fingerprint.Options{Proxy: proxies.ProxyFunc()})
	if err != nil {
		return err
	}

	if cfg.Credentials.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; summaries will record LLM errors")
	}
	summarizer := summarize.NewOpenAI(summarize.Config{
		APIKey:      cfg.Credentials.OpenAIAPIKey,
		BaseURL:     s.OpenAIBaseURL,
		Model:       s.Model,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		Timeout:     s.Timeout,
		Transport:   llmTransport,
	})

	rec := metrics.New()
	p := &pipeline.Pipeline{
		Fetcher: scraper.NewFetcher(searcher, scraper.FetchConfig{
			Delay:   ratelimit.Jittered(s.PageDelay, s.PageJitter),
			Metrics: rec,
		}, logger),
		Enricher: enrich.New(summarizer, rec, logger),
		Logger:   logger,
	}

	summary, err := p.Run(ctx, req)
	if s.MetricsFile != "" {
		if werr := rec.WriteTextfile(s.MetricsFile); werr != nil {
			logger.Warn("metrics not written", "path", s.MetricsFile, logx.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\n%s\n", summary.Message())
	if s.ReportFormat != "none" {
		fmt.Fprintln(stdout)
		if err := report.Write(stdout, s.ReportFormat, summary); err != nil {
			return err
		}
	}
	return nil
}

// collectRequest fills city, category and page count from flags, prompting
// for whatever is missing.
func collectRequest(p *prompt.Prompter, opts options, stdout io.Writer) (pipeline.Request, error) {
	city, err := p.AskIfEmpty(opts.city, prompt.City)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("read city: %w", err)
	}
	category, err := p.AskIfEmpty(opts.category, prompt.Category)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("read category: %w", err)
	}
	pagesInput, err := p.AskIfEmpty(opts.pages, prompt.Pages)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("read page count: %w", err)
	}

	pages, ok := config.ParsePages(pagesInput)
	if !ok {
		fmt.Fprintln(stdout, "Invalid input for number of pages. Defaulting to 1.")
	}

	return pipeline.Request{City: city, Category: category, Pages: pages}, nil
}
