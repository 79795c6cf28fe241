// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/learnbuddy/internal/httputil"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// newsFeedBase is the headline search feed. Declared as a var so tests can
// substitute an httptest server.
var newsFeedBase = "https://news.google.com/rss/search"

const (
	maxHeadlines      = 6
	maxSummaryChars   = 300
	newsFeedLanguage  = "en-US"
	newsFeedCountry   = "US"
	newsFeedEditionID = "US:en"
)

// ErrNoFeedParser is returned when the news source has no parser.
var ErrNoFeedParser = errors.New("feed parsing not available")

// FeedItem is one entry of a parsed RSS or Atom feed.
type FeedItem struct {
	Title     string
	Link      string
	Published string
	Summary   string
	Source    string
}

// FeedParser turns a raw feed document into items.
type FeedParser interface {
	Parse(data []byte) ([]FeedItem, error)
}

// XMLFeedParser parses RSS 2.0 and Atom documents with encoding/xml.
type XMLFeedParser struct{}

// Parse detects the document type from its root element.
func (XMLFeedParser) Parse(data []byte) ([]FeedItem, error) {
	root, err := rootElement(data)
	if err != nil {
		return nil, err
	}

	switch root {
	case "rss":
		var doc rssDocument
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing RSS: %w", err)
		}
		items := make([]FeedItem, 0, len(doc.Channel.Items))
		for _, it := range doc.Channel.Items {
			items = append(items, FeedItem{
				Title:     strings.TrimSpace(it.Title),
				Link:      strings.TrimSpace(it.Link),
				Published: strings.TrimSpace(it.PubDate),
				Summary:   it.Description,
				Source:    strings.TrimSpace(it.Source),
			})
		}
		return items, nil
	case "feed":
		var doc atomDocument
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing Atom: %w", err)
		}
		items := make([]FeedItem, 0, len(doc.Entries))
		for _, e := range doc.Entries {
			published := e.Published
			if published == "" {
				published = e.Updated
			}
			summary := e.Summary
			if summary == "" {
				summary = e.Content
			}
			items = append(items, FeedItem{
				Title:     strings.TrimSpace(e.Title),
				Link:      atomLink(e.Links),
				Published: strings.TrimSpace(published),
				Summary:   summary,
				Source:    strings.TrimSpace(e.Source.Title),
			})
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unrecognized feed root element <%s>", root)
	}
}

// rootElement returns the local name of the first element in data.
func rootElement(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("reading feed: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}

// atomLink prefers the rel="alternate" link, then the first link.
func atomLink(links []atomLinkElem) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

// News fetches recent headlines for a query from a news search feed.
type News struct {
	fetch  httputil.Fetcher
	parser FeedParser
}

// NewNews creates the headline source. A nil parser makes every Fetch fail
// with KindUnavailable without contacting the feed.
func NewNews(client *http.Client, cfg types.HTTPConfig, parser FeedParser) *News {
	return &News{fetch: fetcher(client, cfg, newsTimeout), parser: parser}
}

// Name returns the source identifier.
func (s *News) Name() string { return "news" }

// Fetch returns at most six headlines with markup stripped from summaries.
func (s *News) Fetch(ctx context.Context, query string) ([]types.NewsHeadline, error) {
	if s.parser == nil {
		return nil, &FetchError{Source: s.Name(), Kind: KindUnavailable, Err: ErrNoFeedParser}
	}

	params := url.Values{
		"q":    {query},
		"hl":   {newsFeedLanguage},
		"gl":   {newsFeedCountry},
		"ceid": {newsFeedEditionID},
	}
	body, err := s.fetch.GetBody(ctx, newsFeedBase+"?"+params.Encode())
	if err != nil {
		return nil, classify(s.Name(), err)
	}

	items, err := s.parser.Parse(body)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Kind: KindMalformed, Err: err}
	}

	var headlines []types.NewsHeadline
	for _, it := range items {
		if len(headlines) == maxHeadlines {
			break
		}
		if it.Title == "" {
			continue
		}
		headlines = append(headlines, types.NewsHeadline{
			Title:     it.Title,
			URL:       it.Link,
			Published: it.Published,
			Summary:   truncate(stripMarkup(it.Summary), maxSummaryChars),
			Source:    it.Source,
		})
	}
	if len(headlines) == 0 {
		return nil, emptyResult(s.Name(), "feed has no entries")
	}
	return headlines, nil
}

// RSS and Atom XML structures.
type rssDocument struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
			Source      string `xml:"source"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDocument struct {
	Entries []struct {
		Title     string         `xml:"title"`
		Links     []atomLinkElem `xml:"link"`
		Published string         `xml:"published"`
		Updated   string         `xml:"updated"`
		Summary   string         `xml:"summary"`
		Content   string         `xml:"content"`
		Source    struct {
			Title string `xml:"title"`
		} `xml:"source"`
	} `xml:"entry"`
}

type atomLinkElem struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}
