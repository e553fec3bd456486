package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"curtaincall/internal/core/namematch"
	perr "curtaincall/internal/platform/errors"
)

func newWikidata(deps Deps) Source {
	desc := Descriptor{
		Type:     TypeWikidata,
		Name:     "Wikidata",
		Category: CategoryFree,
		Family:   "wikimedia",
		Tier:     TierStructuredData,
		Free:     true,
		MinDelay: 250 * time.Millisecond,
		Timeout:  15 * time.Second,
	}
	s := &wikidata{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type wikidata struct {
	*base
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

func (s *wikidata) perform(ctx context.Context, a Actor) (Result, error) {
	query := fmt.Sprintf(`SELECT ?person ?personLabel ?birth ?death ?causeLabel ?mannerLabel ?placeLabel WHERE {
  ?person wdt:P31 wd:Q5 ; rdfs:label %q@en .
  OPTIONAL { ?person wdt:P569 ?birth }
  OPTIONAL { ?person wdt:P570 ?death }
  OPTIONAL { ?person wdt:P509 ?cause }
  OPTIONAL { ?person wdt:P1196 ?manner }
  OPTIONAL { ?person wdt:P20 ?place }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en" }
} LIMIT 10`, a.Name)

	target := "https://query.wikidata.org/sparql?format=json&query=" + url.QueryEscape(query)
	p, err := s.get(ctx, target)
	if err != nil {
		return Result{}, err
	}

	var resp sparqlResponse
	if err := json.Unmarshal([]byte(p.Content), &resp); err != nil {
		return Result{}, perr.Upstreamf("wikidata bad sparql payload: %v", err)
	}
	if len(resp.Results.Bindings) == 0 {
		return Result{}, perr.NotFoundf("wikidata has no entity labeled %q", a.Name)
	}

	cands := make([]namematch.Candidate, len(resp.Results.Bindings))
	for i, b := range resp.Results.Bindings {
		cands[i] = namematch.Candidate{
			Name:      b["personLabel"].Value,
			BirthYear: yearOf(b["birth"].Value),
		}
	}
	idx, ok := namematch.Best(namematch.Subject{Name: a.Name, BirthYear: a.BirthYear()}, cands)
	if !ok {
		return Result{}, perr.NotFoundf("wikidata entities for %q are ambiguous or mismatched", a.Name)
	}
	row := resp.Results.Bindings[idx]

	cause := row["causeLabel"].Value
	manner := row["mannerLabel"].Value
	place := row["placeLabel"].Value
	if cause == "" && manner == "" && place == "" {
		return Result{}, perr.NotFoundf("wikidata entity for %q has no death claims", a.Name)
	}

	var parts []string
	if cause != "" {
		parts = append(parts, "cause of death: "+cause)
	}
	if manner != "" {
		parts = append(parts, "manner of death: "+manner)
	}
	if place != "" {
		parts = append(parts, "place of death: "+place)
	}

	conf := 0.55
	if cause != "" {
		conf = 0.90
	}
	return Result{
		Entry: Entry{
			Confidence: conf,
			Meta:       Meta{URL: row["person"].Value, Publication: "Wikidata"},
		},
		Death: &DeathSnippet{
			Circumstances: strings.Join(parts, "; "),
			CauseOfDeath:  cause,
			MannerOfDeath: manner,
			Location:      place,
		},
	}, nil
}

func newWikipedia(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeWikipedia,
		Name:          "Wikipedia",
		Category:      CategoryFree,
		Family:        "wikimedia",
		Tier:          TierSecondary,
		Free:          true,
		MinDelay:      250 * time.Millisecond,
		Timeout:       15 * time.Second,
		MinContentLen: 100,
	}
	s := &wikipedia{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type wikipedia struct {
	*base
}

type wikiSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

func (s *wikipedia) perform(ctx context.Context, a Actor) (Result, error) {
	title := url.PathEscape(strings.ReplaceAll(a.Name, " ", "_"))
	p, err := s.get(ctx, "https://en.wikipedia.org/api/rest_v1/page/summary/"+title)
	if err != nil {
		return Result{}, err
	}

	var sum wikiSummary
	if err := json.Unmarshal([]byte(p.Content), &sum); err != nil {
		return Result{}, perr.Upstreamf("wikipedia bad summary payload: %v", err)
	}
	if sum.Type == "disambiguation" {
		return Result{}, perr.NotFoundf("wikipedia %q is a disambiguation page", a.Name)
	}
	if !namematch.Match(namematch.Subject{Name: a.Name}, namematch.Candidate{Name: sum.Title}) {
		return Result{}, perr.Irrelevantf("wikipedia page %q does not match %q", sum.Title, a.Name)
	}

	text := sum.Extract
	if sum.Description != "" {
		text = sum.Description + ". " + text
	}
	return s.textResult(a, text, Meta{
		URL:         sum.ContentURLs.Desktop.Page,
		Title:       sum.Title,
		Publication: "Wikipedia",
	})
}
