// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"net/http"

	"github.com/pdiddy/learnbuddy/internal/cache"
	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Cache tags. Each source stores results under "<tag>:<query>" and the
// aggregate under "web:<query>".
const (
	tagWikipedia   = "wiki"
	tagExtract     = "wiki_extract"
	tagDuckDuckGo  = "ddg"
	tagMusicBrainz = "musicbrainz"
	tagWikidata    = "wikidata"
	tagNews        = "news"
	tagReddit      = "reddit"
	tagBooks       = "books"
	tagAggregate   = "web"
)

// Sources is the set of adapters an Aggregator consults. A nil field is
// skipped as if the source had returned nothing.
type Sources struct {
	Wikipedia   Source[*types.WikipediaSummary]
	Extract     Source[string]
	DuckDuckGo  Source[*types.InstantAnswer]
	MusicBrainz Source[*types.ArtistProfile]
	Wikidata    Source[*types.EntityFacts]
	News        Source[[]types.NewsHeadline]
	Reddit      Source[[]types.CommunityPost]
	Books       Source[[]types.BookRecord]
}

// NewSources builds the public-API adapters, each wrapped in the cache.
// A nil cache disables per-source caching.
func NewSources(client *http.Client, cfg types.ResearchConfig, c cache.Cache, log *logging.Logger) Sources {
	cfg = cfg.WithDefaults()
	if client == nil {
		client = &http.Client{}
	}
	httpCfg := cfg.HTTPConfig

	var parser FeedParser = XMLFeedParser{}
	if cfg.DisableNews {
		parser = nil
	}

	return Sources{
		Wikipedia:   Cached[*types.WikipediaSummary](NewWikipediaSearch(client, httpCfg, cfg.MaxResults), c, tagWikipedia, log),
		Extract:     Cached[string](NewWikipediaExtract(client, httpCfg), c, tagExtract, log),
		DuckDuckGo:  Cached[*types.InstantAnswer](NewDuckDuckGo(client, httpCfg), c, tagDuckDuckGo, log),
		MusicBrainz: Cached[*types.ArtistProfile](NewMusicBrainz(client, httpCfg, log), c, tagMusicBrainz, log),
		Wikidata:    Cached[*types.EntityFacts](NewWikidata(client, httpCfg, log), c, tagWikidata, log),
		News:        Cached[[]types.NewsHeadline](NewNews(client, httpCfg, parser), c, tagNews, log),
		Reddit:      Cached[[]types.CommunityPost](NewReddit(client, httpCfg), c, tagReddit, log),
		Books:       Cached[[]types.BookRecord](NewOpenLibrary(client, httpCfg), c, tagBooks, log),
	}
}
