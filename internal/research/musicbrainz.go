// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/learnbuddy/internal/httputil"
	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// musicbrainzAPIBase is the MusicBrainz web service root. Declared as a var
// so tests can substitute an httptest server.
var musicbrainzAPIBase = "https://musicbrainz.org/ws/2"

const (
	maxAlbums     = 10
	maxRecordings = 10
)

// MusicBrainz builds an artist profile from three sequential lookups:
// artist search, the artist's album release groups, and its recordings.
type MusicBrainz struct {
	fetch httputil.Fetcher
	log   *logging.Logger
}

// NewMusicBrainz creates the music metadata source.
func NewMusicBrainz(client *http.Client, cfg types.HTTPConfig, log *logging.Logger) *MusicBrainz {
	return &MusicBrainz{fetch: fetcher(client, cfg, musicbrainzTimeout), log: log}
}

// Name returns the source identifier.
func (s *MusicBrainz) Name() string { return "musicbrainz" }

// Fetch returns the profile of the first artist matching query. Once the
// artist is found, a failed release or recording lookup leaves that part
// empty instead of failing the whole profile.
func (s *MusicBrainz) Fetch(ctx context.Context, query string) (*types.ArtistProfile, error) {
	params := url.Values{"query": {query}, "fmt": {"json"}, "limit": {"1"}}

	var search mbArtistSearch
	if err := s.fetch.GetJSON(ctx, musicbrainzAPIBase+"/artist/?"+params.Encode(), &search); err != nil {
		return nil, classify(s.Name(), err)
	}
	if len(search.Artists) == 0 || search.Artists[0].ID == "" {
		return nil, emptyResult(s.Name(), "no artist matched")
	}

	a := search.Artists[0]
	profile := &types.ArtistProfile{
		Name:           a.Name,
		Type:           a.Type,
		Country:        a.Country,
		Disambiguation: a.Disambiguation,
		Tags:           uniqueTags(a.Tags),
		LifeSpan:       types.LifeSpan{Begin: a.LifeSpan.Begin, End: a.LifeSpan.End},
	}

	albums, err := s.albums(ctx, a.ID)
	if err != nil {
		s.log.Warn("partial artist profile", "source", s.Name(), "artist", a.Name, "step", "release-groups", "error", err)
		return profile, nil
	}
	profile.Albums = albums

	recordings, err := s.recordings(ctx, a.ID)
	if err != nil {
		s.log.Warn("partial artist profile", "source", s.Name(), "artist", a.Name, "step", "recordings", "error", err)
		return profile, nil
	}
	profile.Recordings = recordings

	return profile, nil
}

func (s *MusicBrainz) albums(ctx context.Context, artistID string) ([]types.Album, error) {
	params := url.Values{
		"artist": {artistID},
		"type":   {"album"},
		"fmt":    {"json"},
		"limit":  {"10"},
	}
	var resp mbReleaseGroups
	if err := s.fetch.GetJSON(ctx, musicbrainzAPIBase+"/release-group?"+params.Encode(), &resp); err != nil {
		return nil, classify(s.Name(), err)
	}
	var albums []types.Album
	for _, rg := range resp.ReleaseGroups {
		if len(albums) == maxAlbums {
			break
		}
		if rg.Title == "" {
			continue
		}
		albums = append(albums, types.Album{Title: rg.Title, Date: rg.FirstReleaseDate})
	}
	return albums, nil
}

func (s *MusicBrainz) recordings(ctx context.Context, artistID string) ([]string, error) {
	params := url.Values{
		"artist": {artistID},
		"fmt":    {"json"},
		"limit":  {"10"},
	}
	var resp mbRecordings
	if err := s.fetch.GetJSON(ctx, musicbrainzAPIBase+"/recording?"+params.Encode(), &resp); err != nil {
		return nil, classify(s.Name(), err)
	}
	var titles []string
	for _, r := range resp.Recordings {
		if len(titles) == maxRecordings {
			break
		}
		if t := strings.TrimSpace(r.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}

// uniqueTags returns tag names once each, in first-seen order.
func uniqueTags(tags []mbTag) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		name := strings.TrimSpace(t.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// MusicBrainz JSON structures.
type mbArtistSearch struct {
	Artists []mbArtist `json:"artists"`
}

type mbArtist struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Country        string  `json:"country"`
	Disambiguation string  `json:"disambiguation"`
	Tags           []mbTag `json:"tags"`
	LifeSpan       struct {
		Begin string `json:"begin"`
		End   string `json:"end"`
	} `json:"life-span"`
}

type mbTag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type mbReleaseGroups struct {
	ReleaseGroups []struct {
		Title            string `json:"title"`
		FirstReleaseDate string `json:"first-release-date"`
	} `json:"release-groups"`
}

type mbRecordings struct {
	Recordings []struct {
		Title string `json:"title"`
	} `json:"recordings"`
}
