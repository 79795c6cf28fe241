// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the learnbuddy research
// pipeline: normalized per-source results, the aggregate record handed to
// the formatter, chat messages, and stage configuration.
package types

import "time"

// IntentFlags is the keyword classification of a single user query. It
// decides whether research runs at all and which sources are consulted.
type IntentFlags struct {
	NeedsLookup bool `json:"needs_lookup" yaml:"needs_lookup"`
	IsMusic     bool `json:"is_music" yaml:"is_music"`
	IsNews      bool `json:"is_news" yaml:"is_news"`
	IsBook      bool `json:"is_book" yaml:"is_book"`
}

// WikipediaSummary is the top Wikipedia search hit for a query.
type WikipediaSummary struct {
	Title   string `json:"title" yaml:"title"`
	Snippet string `json:"snippet" yaml:"snippet"`
	URL     string `json:"url" yaml:"url"`
}

// LabeledValue is one label/value pair of an ordered fact list.
type LabeledValue struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// InstantAnswer is the normalized DuckDuckGo instant-answer payload. Every
// field is optional; Infobox keeps provider order.
type InstantAnswer struct {
	Answer         string         `json:"answer,omitempty" yaml:"answer,omitempty"`
	Abstract       string         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	AbstractSource string         `json:"abstract_source,omitempty" yaml:"abstract_source,omitempty"`
	Definition     string         `json:"definition,omitempty" yaml:"definition,omitempty"`
	Infobox        []LabeledValue `json:"infobox,omitempty" yaml:"infobox,omitempty"`
	RelatedTopics  []string       `json:"related_topics,omitempty" yaml:"related_topics,omitempty"`
}

// LifeSpan holds the optional begin and end dates of an artist.
type LifeSpan struct {
	Begin string `json:"begin,omitempty" yaml:"begin,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// Album is a release group of an artist.
type Album struct {
	Title string `json:"title" yaml:"title"`
	Date  string `json:"date,omitempty" yaml:"date,omitempty"`
}

// ArtistProfile is the MusicBrainz view of the first matching artist.
// Tags are unique and keep first-seen order.
type ArtistProfile struct {
	Name           string   `json:"name" yaml:"name"`
	Type           string   `json:"type,omitempty" yaml:"type,omitempty"`
	Country        string   `json:"country,omitempty" yaml:"country,omitempty"`
	Disambiguation string   `json:"disambiguation,omitempty" yaml:"disambiguation,omitempty"`
	Tags           []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	LifeSpan       LifeSpan `json:"life_span" yaml:"life_span"`
	Albums         []Album  `json:"albums,omitempty" yaml:"albums,omitempty"`
	Recordings     []string `json:"recordings,omitempty" yaml:"recordings,omitempty"`
}

// EntityFacts is the Wikidata view of the top matching entity. Facts are
// ordered by the fixed property table, with multiple values joined.
type EntityFacts struct {
	Label       string         `json:"label" yaml:"label"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Facts       []LabeledValue `json:"facts,omitempty" yaml:"facts,omitempty"`
}

// NewsHeadline is one entry of a news feed.
type NewsHeadline struct {
	Title     string `json:"title" yaml:"title"`
	URL       string `json:"url" yaml:"url"`
	Published string `json:"published,omitempty" yaml:"published,omitempty"`
	Summary   string `json:"summary" yaml:"summary"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
}

// CommunityPost is one community-discussion search hit. Body is empty when
// the post was removed or deleted.
type CommunityPost struct {
	Title     string `json:"title" yaml:"title"`
	Subreddit string `json:"subreddit" yaml:"subreddit"`
	Body      string `json:"body" yaml:"body"`
	Score     int    `json:"score" yaml:"score"`
	URL       string `json:"url" yaml:"url"`
}

// BookRecord is one library-catalog search hit. Year is zero when unknown.
type BookRecord struct {
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year     int      `json:"year,omitempty" yaml:"year,omitempty"`
	Subjects []string `json:"subjects,omitempty" yaml:"subjects,omitempty"`
}

// SourceFailure records why a source contributed nothing to an aggregate.
type SourceFailure struct {
	Source string `json:"source" yaml:"source"`
	Kind   string `json:"kind" yaml:"kind"`
	Error  string `json:"error" yaml:"error"`
}

// AggregateResult is the composite research record for one query. It is
// built once by the aggregator and never mutated afterwards. Failures is
// diagnostic only and is not cached or serialized, so a result served from
// the cache has nil Failures while every content field matches the run
// that filled it.
type AggregateResult struct {
	Query       string            `json:"query" yaml:"query"`
	Knowledge   *WikipediaSummary `json:"knowledge,omitempty" yaml:"knowledge,omitempty"`
	FullExtract string            `json:"full_extract,omitempty" yaml:"full_extract,omitempty"`
	DDG         *InstantAnswer    `json:"ddg,omitempty" yaml:"ddg,omitempty"`
	MusicBrainz *ArtistProfile    `json:"musicbrainz,omitempty" yaml:"musicbrainz,omitempty"`
	Wikidata    *EntityFacts      `json:"wikidata,omitempty" yaml:"wikidata,omitempty"`
	News        []NewsHeadline    `json:"news,omitempty" yaml:"news,omitempty"`
	Reddit      []CommunityPost   `json:"reddit,omitempty" yaml:"reddit,omitempty"`
	Books       []BookRecord      `json:"books,omitempty" yaml:"books,omitempty"`
	Timestamp   time.Time         `json:"timestamp" yaml:"timestamp"`

	Failures []SourceFailure `json:"-" yaml:"-"`
}

// IsEmpty reports whether no source contributed any content.
func (r AggregateResult) IsEmpty() bool {
	return r.Knowledge == nil && r.FullExtract == "" && r.DDG == nil &&
		r.MusicBrainz == nil && r.Wikidata == nil &&
		len(r.News) == 0 && len(r.Reddit) == 0 && len(r.Books) == 0
}

// SourceCount returns the number of content fields that are populated.
func (r AggregateResult) SourceCount() int {
	n := 0
	for _, present := range []bool{
		r.Knowledge != nil, r.FullExtract != "", r.DDG != nil,
		r.MusicBrainz != nil, r.Wikidata != nil,
		len(r.News) > 0, len(r.Reddit) > 0, len(r.Books) > 0,
	} {
		if present {
			n++
		}
	}
	return n
}
