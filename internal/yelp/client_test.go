package yelp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	rq := require.New(t)

	var gotQuery map[string]string
	var gotAuth, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total": 2,
			"businesses": [
				{"id": "a1", "name": "Brush Bros", "url": "https://www.yelp.com/biz/brush-bros", "phone": "+14165550100", "rating": 4.5, "review_count": 12},
				{"id": "b2", "name": "Quiet Paint", "url": "", "phone": ""}
			]
		}`))
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL, APIKey: "k3y"})
	rq.NoError(err)

	resp, err := c.Search(context.Background(), SearchParams{
		Term:     "painters",
		Location: "Toronto",
		Offset:   50,
		SortBy:   SortByRating,
	})
	rq.NoError(err)

	rq.Equal("Bearer k3y", gotAuth)
	rq.Equal("/v3/businesses/search", gotPath)
	rq.Equal("painters", gotQuery["term"])
	rq.Equal("Toronto", gotQuery["location"])
	rq.Equal("50", gotQuery["offset"])
	rq.Equal("50", gotQuery["limit"])
	rq.Equal("rating", gotQuery["sort_by"])

	rq.Equal(2, resp.Total)
	rq.Len(resp.Businesses, 2)
	rq.Equal("Brush Bros", resp.Businesses[0].Name)
	rq.Equal("+14165550100", resp.Businesses[0].Phone)
	rq.Equal(4.5, resp.Businesses[0].Rating)
	rq.Empty(resp.Businesses[1].URL)
}

func TestClient_SearchAPIError(t *testing.T) {
	rq := require.New(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"code": "TOKEN_INVALID", "description": "Invalid access token or authorization header."}}`))
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL, APIKey: "bad"})
	rq.NoError(err)

	_, err = c.Search(context.Background(), SearchParams{Term: "painters", Location: "Toronto"})
	rq.Error(err)

	var apiErr *APIError
	rq.True(errors.As(err, &apiErr))
	rq.Equal(http.StatusUnauthorized, apiErr.StatusCode)
	rq.Equal("TOKEN_INVALID", apiErr.Code)
	rq.True(IsAuthError(err))
	rq.Contains(err.Error(), "TOKEN_INVALID")
}

func TestClient_SearchPlainTextError(t *testing.T) {
	rq := require.New(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL, APIKey: "k"})
	rq.NoError(err)

	_, err = c.Search(context.Background(), SearchParams{})
	var apiErr *APIError
	rq.True(errors.As(err, &apiErr))
	rq.Equal(http.StatusBadGateway, apiErr.StatusCode)
	rq.Equal("upstream unavailable", apiErr.Description)
	rq.False(IsAuthError(err))
}

func TestClient_SearchMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"businesses": [`))
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL, APIKey: "k"})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), SearchParams{})
	require.ErrorContains(t, err, "decode search response")
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
