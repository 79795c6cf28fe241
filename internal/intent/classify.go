// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent decides, from the text of a user message alone, whether
// outside research is worth running and which kinds of sources apply.
package intent

import (
	"strings"
	"unicode"

	"github.com/pdiddy/learnbuddy/pkg/types"
)

// lookupTerms mark a message as informational. Matching is a
// case-insensitive substring test.
var lookupTerms = []string{
	// time-sensitive
	"now", "today", "current", "latest", "recent", "happening",
	"news", "breaking", "this week", "this month", "this year",
	"update on", "situation", "event", "incident", "crisis", "disaster",
	"election", "weather", "stock", "crypto", "vaccine",
	// biographical and definitional questions
	"who is", "who was", "who are", "who's", "what is", "what's", "what are",
	"when did", "when was", "where is", "tell me about", "history of", "biography",
	// roles and kinds of things people look up
	"singer", "rapper", "band", "musician", "album", "song",
	"actor", "actress", "politician", "president", "prime minister",
	"author", "writer", "novel", "book", "athlete", "player", "team",
	"company", "ceo", "scientist", "discography",
}

var musicTerms = []string{
	"music", "song", "album", "singer", "rapper", "band", "musician",
	"discography", "lyrics", "concert", "tour", "record label", "track",
	"hip hop", "hip-hop", "rock", "jazz", "pop star", "guitarist", "drummer",
}

var newsTerms = []string{
	"news", "breaking", "headline", "latest", "today", "this week",
	"election", "announced", "update on", "crisis", "happening",
}

var bookTerms = []string{
	"book", "novel", "author of", "written by", "isbn", "literature",
	"reading list", "paperback", "hardcover", "publisher", "bestseller",
}

// timeTokens are whole-word year and month references treated as recent.
// May is left out: as a word it is more often a verb.
var timeTokens = map[string]bool{
	"2023": true, "2024": true, "2025": true, "2026": true,
	"january": true, "february": true, "march": true, "april": true,
	"june": true, "july": true, "august": true, "september": true,
	"october": true, "november": true, "december": true,
}

// yearTokens is the subset of timeTokens that also signals news.
var yearTokens = map[string]bool{"2023": true, "2024": true, "2025": true, "2026": true}

// Classify returns the intent flags for message.
func Classify(message string) types.IntentFlags {
	lower := strings.ToLower(message)

	hasYear, hasTime := false, false
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if timeTokens[word] {
			hasTime = true
		}
		if yearTokens[word] {
			hasYear = true
		}
	}

	return types.IntentFlags{
		NeedsLookup: containsAny(lower, lookupTerms) || hasTime,
		IsMusic:     containsAny(lower, musicTerms),
		IsNews:      containsAny(lower, newsTerms) || hasYear,
		IsBook:      containsAny(lower, bookTerms),
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
