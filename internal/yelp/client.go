package yelp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/FranksOps/yelpleads/pkg/httpclient"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultBaseURL is the Yelp Fusion API root.
	DefaultBaseURL = "https://api.yelp.com"

	// PageSize is the number of businesses Yelp returns per search page.
	PageSize = 50

	SortByRating = "rating"

	searchPath = "/v3/businesses/search"

	// maxErrorBody caps how much of an error response is read for diagnostics.
	maxErrorBody = 64 << 10
)

// SearchParams is a single paged query.
type SearchParams struct {
	Term     string
	Location string
	Offset   int
	Limit    int
	SortBy   string
}

// Business is the subset of a Yelp business entry this tool consumes.
type Business struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	Phone        string  `json:"phone"`
	DisplayPhone string  `json:"display_phone"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
	IsClosed     bool    `json:"is_closed"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Total      int        `json:"total"`
	Businesses []Business `json:"businesses"`
}

// APIError is returned when Yelp answers with a non-2xx status.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	switch {
	case e.Code == "" && e.Description == "":
		return fmt.Sprintf("yelp: status %d", e.StatusCode)
	case e.Code == "":
		return fmt.Sprintf("yelp: status %d: %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("yelp: status %d: %s: %s", e.StatusCode, e.Code, e.Description)
}

// IsAuthError reports whether err is a Yelp authentication failure.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// Config defines the setup for the search client.
type Config struct {
	BaseURL string
	APIKey  string
	// Transport overrides the round tripper, e.g. a fingerprinted transport.
	Transport http.RoundTripper
	HTTP      httpclient.Config
}

// Client queries the Yelp Fusion business search endpoint.
type Client struct {
	baseURL *url.URL
	http    *httpclient.Client
}

// New creates a search client. APIKey is required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("yelp: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("yelp: invalid base url: %w", err)
	}

	hc := cfg.HTTP
	hc.BearerToken = cfg.APIKey
	if cfg.Transport != nil {
		hc.Transport = cfg.Transport
	}

	client, err := httpclient.New(hc)
	if err != nil {
		return nil, fmt.Errorf("yelp: %w", err)
	}

	return &Client{baseURL: base, http: client}, nil
}

// Search fetches a single page of businesses.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	if p.Limit <= 0 {
		p.Limit = PageSize
	}

	q := url.Values{}
	q.Set("term", p.Term)
	q.Set("location", p.Location)
	q.Set("offset", strconv.Itoa(p.Offset))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}

	u := *c.baseURL
	u.Path += searchPath
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("yelp: build request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("yelp: search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("yelp: decode search response: %w", err)
	}
	return &out, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var envelope struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		apiErr.Description = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Code = envelope.Error.Code
	apiErr.Description = envelope.Error.Description
	return apiErr
}
