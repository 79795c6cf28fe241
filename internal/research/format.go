// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"strings"

	"github.com/pdiddy/learnbuddy/pkg/types"
)

const (
	contextHeader = "=== CURRENT INFORMATION (Web Search Results) ==="
	contextFooter = "=== Use this current information to answer the user's question ==="
)

// Display caps. Stored values may be longer; these bound what reaches the
// prompt.
const (
	maxContextChars   = 16000
	maxInfoboxShown   = 10
	maxNewsShown      = 5
	maxPostsShown     = 3
	maxPostBodyShown  = 200
	maxExtractShown   = 3000
	maxAbstractShown  = 1000
	maxLineShown      = 300
	maxFactValueShown = 150
	maxTitleShown     = 150
	maxTagsShown      = 10
)

// Format renders an aggregate as the context block prepended to a prompt.
// Sections appear in a fixed order and only when their field has content.
// An empty aggregate renders as "".
func Format(res types.AggregateResult) string {
	var sections []string
	for _, s := range []string{
		formatWikidata(res.Wikidata),
		formatInstantAnswer(res.DDG),
		formatArtist(res.MusicBrainz),
		formatBackground(res.Knowledge, res.FullExtract),
		formatNews(res.News),
		formatBooks(res.Books),
		formatPosts(res.Reddit),
	} {
		if s != "" {
			sections = append(sections, s)
		}
	}
	if len(sections) == 0 {
		return ""
	}

	body := clip(strings.Join(sections, "\n"), maxContextChars)
	return "\n" + contextHeader + "\n\n" + body + "\n" + contextFooter + "\n"
}

func formatWikidata(f *types.EntityFacts) string {
	if f == nil || (f.Label == "" && len(f.Facts) == 0) {
		return ""
	}
	var b strings.Builder
	b.WriteString("Quick Facts (Wikidata):")
	if f.Label != "" {
		b.WriteString(" " + clip(f.Label, maxTitleShown))
	}
	if f.Description != "" {
		b.WriteString(" - " + clip(f.Description, maxLineShown))
	}
	b.WriteByte('\n')
	for _, kv := range f.Facts {
		fmt.Fprintf(&b, "- %s: %s\n", kv.Label, clip(kv.Value, maxFactValueShown))
	}
	return b.String()
}

func formatInstantAnswer(ia *types.InstantAnswer) string {
	if ia == nil {
		return ""
	}
	var b strings.Builder
	if ia.Answer != "" {
		fmt.Fprintf(&b, "Instant Answer: %s\n", clip(ia.Answer, maxLineShown))
	}
	if ia.Abstract != "" {
		src := ia.AbstractSource
		if src == "" {
			src = "DuckDuckGo"
		}
		fmt.Fprintf(&b, "Summary (%s): %s\n", src, clip(ia.Abstract, maxAbstractShown))
	}
	if ia.Definition != "" {
		fmt.Fprintf(&b, "Definition: %s\n", clip(ia.Definition, maxLineShown))
	}
	if len(ia.Infobox) > 0 {
		b.WriteString("Details:\n")
		for i, kv := range ia.Infobox {
			if i == maxInfoboxShown {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", clip(kv.Label, maxTitleShown), clip(kv.Value, maxFactValueShown))
		}
	}
	if len(ia.RelatedTopics) > 0 {
		b.WriteString("Related:\n")
		for i, t := range ia.RelatedTopics {
			if i == maxRelatedTopics {
				break
			}
			fmt.Fprintf(&b, "- %s\n", clip(t, maxLineShown))
		}
	}
	return b.String()
}

func formatArtist(p *types.ArtistProfile) string {
	if p == nil || p.Name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("Music Profile (MusicBrainz):\n")

	b.WriteString("Artist: " + clip(p.Name, maxTitleShown))
	var meta []string
	if p.Type != "" {
		meta = append(meta, p.Type)
	}
	if p.Country != "" {
		meta = append(meta, p.Country)
	}
	if len(meta) > 0 {
		b.WriteString(" (" + strings.Join(meta, ", ") + ")")
	}
	b.WriteByte('\n')

	if p.Disambiguation != "" {
		fmt.Fprintf(&b, "Note: %s\n", clip(p.Disambiguation, maxLineShown))
	}
	if p.LifeSpan.Begin != "" || p.LifeSpan.End != "" {
		end := p.LifeSpan.End
		if end == "" {
			end = "present"
		}
		fmt.Fprintf(&b, "Active: %s to %s\n", orUnknown(p.LifeSpan.Begin), end)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "Genres: %s\n", strings.Join(head(p.Tags, maxTagsShown), ", "))
	}
	if len(p.Albums) > 0 {
		b.WriteString("Albums:\n")
		for i, a := range p.Albums {
			if i == maxAlbums {
				break
			}
			if a.Date != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", clip(a.Title, maxTitleShown), a.Date)
			} else {
				fmt.Fprintf(&b, "- %s\n", clip(a.Title, maxTitleShown))
			}
		}
	}
	if len(p.Recordings) > 0 {
		fmt.Fprintf(&b, "Recordings: %s\n", clip(strings.Join(head(p.Recordings, maxRecordings), ", "), maxLineShown*2))
	}
	return b.String()
}

func formatBackground(k *types.WikipediaSummary, extract string) string {
	if k == nil && extract == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("Background Information (Wikipedia):\n")
	if k != nil {
		if k.Title != "" {
			fmt.Fprintf(&b, "Topic: %s\n", clip(k.Title, maxTitleShown))
		}
		if k.URL != "" {
			fmt.Fprintf(&b, "URL: %s\n", k.URL)
		}
	}
	switch {
	case extract != "":
		b.WriteString(clip(extract, maxExtractShown) + "\n")
	case k != nil && k.Snippet != "":
		fmt.Fprintf(&b, "Summary: %s\n", clip(k.Snippet, maxLineShown))
	}
	return b.String()
}

func formatNews(items []types.NewsHeadline) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Latest News:\n")
	for i, n := range items {
		if i == maxNewsShown {
			break
		}
		fmt.Fprintf(&b, "%d. %s", i+1, clip(n.Title, maxTitleShown))
		var meta []string
		if n.Source != "" {
			meta = append(meta, n.Source)
		}
		if n.Published != "" {
			meta = append(meta, n.Published)
		}
		if len(meta) > 0 {
			b.WriteString(" (" + strings.Join(meta, ", ") + ")")
		}
		b.WriteByte('\n')
		if n.Summary != "" && n.Summary != n.Title {
			fmt.Fprintf(&b, "   %s\n", clip(n.Summary, maxSummaryChars))
		}
		if n.URL != "" {
			fmt.Fprintf(&b, "   %s\n", n.URL)
		}
	}
	return b.String()
}

func formatBooks(books []types.BookRecord) string {
	if len(books) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Books (Open Library):\n")
	for i, book := range books {
		if i == maxBooks {
			break
		}
		fmt.Fprintf(&b, "%d. %s", i+1, clip(book.Title, maxTitleShown))
		if len(book.Authors) > 0 {
			b.WriteString(" by " + clip(strings.Join(head(book.Authors, maxBookAuthors), ", "), maxTitleShown))
		}
		if book.Year > 0 {
			fmt.Fprintf(&b, " (%d)", book.Year)
		}
		b.WriteByte('\n')
		if len(book.Subjects) > 0 {
			fmt.Fprintf(&b, "   Subjects: %s\n", clip(strings.Join(head(book.Subjects, maxBookSubjects), ", "), maxTitleShown))
		}
	}
	return b.String()
}

func formatPosts(posts []types.CommunityPost) string {
	if len(posts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Community Discussions (Reddit):\n")
	for i, p := range posts {
		if i == maxPostsShown {
			break
		}
		fmt.Fprintf(&b, "%d. %s", i+1, clip(p.Title, maxTitleShown))
		if p.Subreddit != "" {
			fmt.Fprintf(&b, " (r/%s, score %d)", p.Subreddit, p.Score)
		}
		b.WriteByte('\n')
		if p.Body != "" {
			fmt.Fprintf(&b, "   %s\n", clip(collapseSpace(p.Body), maxPostBodyShown))
		}
		if p.URL != "" {
			fmt.Fprintf(&b, "   %s\n", p.URL)
		}
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
