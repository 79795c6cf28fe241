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

// redditAPIBase is the site root for search.json and permalinks. Declared
// as a var so tests can substitute an httptest server.
var redditAPIBase = "https://www.reddit.com"

const (
	maxPosts     = 5
	maxPostChars = 400
)

// Reddit searches community discussion posts.
type Reddit struct {
	fetch httputil.Fetcher
}

// NewReddit creates the community-discussion source.
func NewReddit(client *http.Client, cfg types.HTTPConfig) *Reddit {
	return &Reddit{fetch: fetcher(client, cfg, redditTimeout)}
}

// Name returns the source identifier.
func (s *Reddit) Name() string { return "reddit" }

// Fetch returns up to five posts from the past year, sorted by relevance.
// Removed and deleted bodies become "".
func (s *Reddit) Fetch(ctx context.Context, query string) ([]types.CommunityPost, error) {
	params := url.Values{
		"q":     {query},
		"sort":  {"relevance"},
		"t":     {"year"},
		"limit": {strconv.Itoa(maxPosts)},
	}

	var resp redditListing
	if err := s.fetch.GetJSON(ctx, redditAPIBase+"/search.json?"+params.Encode(), &resp); err != nil {
		return nil, classify(s.Name(), err)
	}

	var posts []types.CommunityPost
	for _, child := range resp.Data.Children {
		if len(posts) == maxPosts {
			break
		}
		d := child.Data
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		post := types.CommunityPost{
			Title:     strings.TrimSpace(d.Title),
			Subreddit: d.Subreddit,
			Body:      postBody(d.Selftext),
			Score:     d.Score,
		}
		if d.Permalink != "" {
			post.URL = redditAPIBase + d.Permalink
		}
		posts = append(posts, post)
	}
	if len(posts) == 0 {
		return nil, emptyResult(s.Name(), "no posts matched")
	}
	return posts, nil
}

func postBody(text string) string {
	text = strings.TrimSpace(text)
	switch text {
	case "", "[removed]", "[deleted]":
		return ""
	}
	return truncate(text, maxPostChars)
}

// Reddit listing JSON structures.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string `json:"title"`
				Subreddit string `json:"subreddit"`
				Selftext  string `json:"selftext"`
				Score     int    `json:"score"`
				Permalink string `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}
