// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/learnbuddy/internal/httputil"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// wikipediaAPIBase is the MediaWiki action API. Declared as a var so tests
// can substitute an httptest server.
var wikipediaAPIBase = "https://en.wikipedia.org/w/api.php"

// wikipediaPageBase prefixes canonical article URLs.
const wikipediaPageBase = "https://en.wikipedia.org/wiki/"

// maxExtractChars bounds a stored plain-text extract.
const maxExtractChars = 6000

// WikipediaSearch returns the top search hit for a free-text query.
type WikipediaSearch struct {
	fetch httputil.Fetcher
	limit int
}

// NewWikipediaSearch creates the search source. limit is the srlimit sent
// to the API; only the first hit is used.
func NewWikipediaSearch(client *http.Client, cfg types.HTTPConfig, limit int) *WikipediaSearch {
	if limit <= 0 {
		limit = types.DefaultMaxResults
	}
	return &WikipediaSearch{fetch: fetcher(client, cfg, wikipediaTimeout), limit: limit}
}

// Name returns the source identifier.
func (s *WikipediaSearch) Name() string { return "wikipedia" }

// Fetch searches Wikipedia and normalizes the top hit.
func (s *WikipediaSearch) Fetch(ctx context.Context, query string) (*types.WikipediaSummary, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {fmt.Sprintf("%d", s.limit)},
		"format":   {"json"},
	}

	var resp wikiSearchResponse
	if err := s.fetch.GetJSON(ctx, wikipediaAPIBase+"?"+params.Encode(), &resp); err != nil {
		return nil, classify(s.Name(), err)
	}
	if len(resp.Query.Search) == 0 {
		return nil, emptyResult(s.Name(), "no search hits")
	}

	top := resp.Query.Search[0]
	if top.Title == "" {
		return nil, &FetchError{Source: s.Name(), Kind: KindMalformed, Err: fmt.Errorf("search hit without title")}
	}
	return &types.WikipediaSummary{
		Title:   top.Title,
		Snippet: stripMarkup(top.Snippet),
		URL:     articleURL(top.Title),
	}, nil
}

// articleURL builds the canonical article URL for a title.
func articleURL(title string) string {
	return wikipediaPageBase + strings.ReplaceAll(title, " ", "_")
}

// WikipediaExtract returns the plain-text extract of an article by title.
type WikipediaExtract struct {
	fetch httputil.Fetcher
}

// NewWikipediaExtract creates the extract source.
func NewWikipediaExtract(client *http.Client, cfg types.HTTPConfig) *WikipediaExtract {
	return &WikipediaExtract{fetch: fetcher(client, cfg, wikipediaTimeout)}
}

// Name returns the source identifier.
func (s *WikipediaExtract) Name() string { return "wikipedia_extract" }

// Fetch takes an article title (not a free query) and returns its extract,
// truncated to maxExtractChars.
func (s *WikipediaExtract) Fetch(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
		"format":      {"json"},
	}

	var resp wikiExtractResponse
	if err := s.fetch.GetJSON(ctx, wikipediaAPIBase+"?"+params.Encode(), &resp); err != nil {
		return "", classify(s.Name(), err)
	}

	for id, page := range resp.Query.Pages {
		if id == "-1" || page.Missing != nil {
			continue
		}
		text := strings.TrimSpace(page.Extract)
		if text == "" {
			continue
		}
		return truncate(text, maxExtractChars), nil
	}
	return "", emptyResult(s.Name(), fmt.Sprintf("no page matched %q", title))
}

// MediaWiki API JSON structures.
type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			PageID  int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}
