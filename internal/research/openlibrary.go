// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/learnbuddy/internal/httputil"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// openLibraryAPIBase is the catalog search endpoint. Declared as a var so
// tests can substitute an httptest server.
var openLibraryAPIBase = "https://openlibrary.org/search.json"

const (
	maxBooks        = 5
	maxBookAuthors  = 3
	maxBookSubjects = 5
)

// OpenLibrary searches the Open Library catalog.
type OpenLibrary struct {
	fetch httputil.Fetcher
}

// NewOpenLibrary creates the book-catalog source.
func NewOpenLibrary(client *http.Client, cfg types.HTTPConfig) *OpenLibrary {
	return &OpenLibrary{fetch: fetcher(client, cfg, openLibraryTimeout)}
}

// Name returns the source identifier.
func (s *OpenLibrary) Name() string { return "books" }

// Fetch returns up to five books.
func (s *OpenLibrary) Fetch(ctx context.Context, query string) ([]types.BookRecord, error) {
	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(maxBooks)},
	}

	var resp openLibraryResponse
	if err := s.fetch.GetJSON(ctx, openLibraryAPIBase+"?"+params.Encode(), &resp); err != nil {
		return nil, classify(s.Name(), err)
	}

	var books []types.BookRecord
	for _, doc := range resp.Docs {
		if len(books) == maxBooks {
			break
		}
		title := strings.TrimSpace(doc.Title)
		if title == "" {
			continue
		}
		books = append(books, types.BookRecord{
			Title:    title,
			Authors:  head(doc.AuthorName, maxBookAuthors),
			Year:     doc.FirstPublishYear,
			Subjects: head(doc.Subject, maxBookSubjects),
		})
	}
	if len(books) == 0 {
		return nil, emptyResult(s.Name(), "no books matched")
	}
	return books, nil
}

// head returns a copy of the first n elements of s, or nil when s is empty.
func head(s []string, n int) []string {
	if len(s) == 0 {
		return nil
	}
	if len(s) > n {
		s = s[:n]
	}
	return append([]string(nil), s...)
}

// Open Library search JSON structures.
type openLibraryResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		Subject          []string `json:"subject"`
	} `json:"docs"`
}
