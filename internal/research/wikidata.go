// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/learnbuddy/internal/httputil"
	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// wikidataAPIBase is the Wikibase action API. Declared as a var so tests can
// substitute an httptest server.
var wikidataAPIBase = "https://www.wikidata.org/w/api.php"

const maxValuesPerProperty = 3

// wikidataProperty maps a property ID to the label it is shown under.
type wikidataProperty struct {
	ID    string
	Label string
}

// wikidataProperties is the fixed set of properties resolved for an
// entity, in display order.
var wikidataProperties = []wikidataProperty{
	{"P569", "Birth date"},
	{"P570", "Death date"},
	{"P19", "Birthplace"},
	{"P27", "Nationality"},
	{"P106", "Occupation"},
	{"P21", "Gender"},
	{"P136", "Genre"},
	{"P264", "Record label"},
	{"P18", "Image"},
	{"P571", "Inception"},
	{"P577", "Publication date"},
	{"P495", "Country of origin"},
	{"P413", "Position played"},
	{"P54", "Team"},
}

// Wikidata resolves a query to an entity and a short list of facts.
type Wikidata struct {
	fetch httputil.Fetcher
	log   *logging.Logger
}

// NewWikidata creates the knowledge-graph source.
func NewWikidata(client *http.Client, cfg types.HTTPConfig, log *logging.Logger) *Wikidata {
	return &Wikidata{fetch: fetcher(client, cfg, wikidataTimeout), log: log}
}

// Name returns the source identifier.
func (s *Wikidata) Name() string { return "wikidata" }

// Fetch searches for the top entity, reads its claims, and resolves at most
// three values for each known property. Entity-valued claims are resolved to
// their English label, falling back to the raw ID.
func (s *Wikidata) Fetch(ctx context.Context, query string) (*types.EntityFacts, error) {
	search := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {query},
		"language": {"en"},
		"format":   {"json"},
		"limit":    {"1"},
	}
	var found wdSearchResponse
	if err := s.fetch.GetJSON(ctx, wikidataAPIBase+"?"+search.Encode(), &found); err != nil {
		return nil, classify(s.Name(), err)
	}
	if len(found.Search) == 0 || found.Search[0].ID == "" {
		return nil, emptyResult(s.Name(), "no entity matched")
	}
	top := found.Search[0]

	claimsReq := url.Values{
		"action": {"wbgetentities"},
		"ids":    {top.ID},
		"props":  {"claims"},
		"format": {"json"},
	}
	var entities wdEntitiesResponse
	if err := s.fetch.GetJSON(ctx, wikidataAPIBase+"?"+claimsReq.Encode(), &entities); err != nil {
		return nil, classify(s.Name(), err)
	}
	entity, ok := entities.Entities[top.ID]
	if !ok {
		return nil, &FetchError{Source: s.Name(), Kind: KindMalformed, Err: errMissingEntity(top.ID)}
	}

	facts := &types.EntityFacts{
		Label:       top.Label,
		Description: top.Description,
	}
	for _, prop := range wikidataProperties {
		var values []string
		for _, claim := range entity.Claims[prop.ID] {
			if len(values) == maxValuesPerProperty {
				break
			}
			if v := s.renderValue(ctx, claim.MainSnak.DataValue); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			facts.Facts = append(facts.Facts, types.LabeledValue{Label: prop.Label, Value: strings.Join(values, ", ")})
		}
	}
	return facts, nil
}

// renderValue turns a claim value into display text.
func (s *Wikidata) renderValue(ctx context.Context, dv wdDataValue) string {
	switch dv.Type {
	case "wikibase-entityid":
		var v struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(dv.Value, &v) != nil || v.ID == "" {
			return ""
		}
		return s.label(ctx, v.ID)
	case "time":
		var v struct {
			Time string `json:"time"`
		}
		if json.Unmarshal(dv.Value, &v) != nil {
			return ""
		}
		return wikidataDate(v.Time)
	case "string":
		var v string
		if json.Unmarshal(dv.Value, &v) != nil {
			return ""
		}
		return v
	case "monolingualtext":
		var v struct {
			Text string `json:"text"`
		}
		if json.Unmarshal(dv.Value, &v) != nil {
			return ""
		}
		return v.Text
	case "quantity":
		var v struct {
			Amount string `json:"amount"`
		}
		if json.Unmarshal(dv.Value, &v) != nil {
			return ""
		}
		return strings.TrimPrefix(v.Amount, "+")
	}
	return ""
}

// label resolves an entity ID to its English label, or returns the ID when
// the lookup fails.
func (s *Wikidata) label(ctx context.Context, id string) string {
	params := url.Values{
		"action":    {"wbgetentities"},
		"ids":       {id},
		"props":     {"labels"},
		"languages": {"en"},
		"format":    {"json"},
	}
	var resp wdEntitiesResponse
	if err := s.fetch.GetJSON(ctx, wikidataAPIBase+"?"+params.Encode(), &resp); err != nil {
		s.log.Debug("label lookup failed", "source", s.Name(), "id", id, "error", err)
		return id
	}
	if l := resp.Entities[id].Labels["en"].Value; l != "" {
		return l
	}
	return id
}

// wikidataDate renders a Wikibase timestamp such as "+1961-08-04T00:00:00Z"
// as "1961-08-04".
func wikidataDate(ts string) string {
	ts = strings.TrimLeft(ts, "+-")
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		ts = ts[:i]
	}
	return ts
}

type errMissingEntity string

func (e errMissingEntity) Error() string { return "entity " + string(e) + " missing from response" }

// Wikibase API JSON structures.
type wdSearchResponse struct {
	Search []struct {
		ID          string `json:"id"`
		Label       string `json:"label"`
		Description string `json:"description"`
	} `json:"search"`
}

type wdEntitiesResponse struct {
	Entities map[string]wdEntity `json:"entities"`
}

type wdEntity struct {
	Labels map[string]struct {
		Value string `json:"value"`
	} `json:"labels"`
	Claims map[string][]struct {
		MainSnak struct {
			DataValue wdDataValue `json:"datavalue"`
		} `json:"mainsnak"`
	} `json:"claims"`
}

type wdDataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}
