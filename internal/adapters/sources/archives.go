package sources

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"curtaincall/internal/adapters/fetch"
	perr "curtaincall/internal/platform/errors"
)

// Archive sources surface period coverage: digitized newspapers and cultural
// heritage records. OCR text arrives noisy, so gates stay at the low end
// (internet_archive lives in books.go next to its texts-only sibling)

func newChroniclingAmerica(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeChroniclingAm,
		Name:          "Chronicling America",
		Category:      CategoryArchives,
		Family:        "loc",
		Tier:          TierArchival,
		Free:          true,
		MinDelay:      500 * time.Millisecond,
		Timeout:       20 * time.Second,
		MinContentLen: 120,
	}
	s := &chronicling{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type chronicling struct {
	*base
}

type locPages struct {
	Items []struct {
		Title  string `json:"title"`
		Date   string `json:"date"`
		OCREng string `json:"ocr_eng"`
	} `json:"items"`
}

func (s *chronicling) perform(ctx context.Context, a Actor) (Result, error) {
	target := "https://chroniclingamerica.loc.gov/search/pages/results/?format=json&rows=5&andtext=" + q(a)
	p, err := s.get(ctx, target)
	if err != nil {
		return Result{}, err
	}

	var pages locPages
	if err := json.Unmarshal([]byte(p.Content), &pages); err != nil {
		return Result{}, perr.Upstreamf("chronicling_america bad payload: %v", err)
	}
	if len(pages.Items) == 0 {
		return Result{}, perr.NotFoundf("chronicling_america has no pages for %q", a.Name)
	}

	var sb strings.Builder
	for _, it := range pages.Items {
		ocr := it.OCREng
		// OCR pages run long; keep the window around the first mention
		if idx := strings.Index(strings.ToLower(ocr), strings.ToLower(lastToken(a.Name))); idx >= 0 {
			lo, hi := idx-400, idx+800
			if lo < 0 {
				lo = 0
			}
			if hi > len(ocr) {
				hi = len(ocr)
			}
			ocr = ocr[lo:hi]
		} else if len(ocr) > 1200 {
			ocr = ocr[:1200]
		}
		sb.WriteString(it.Title + " (" + it.Date + "): " + ocr + "\n")
	}
	return s.textResult(a, sb.String(), Meta{Publication: "Chronicling America"})
}

func newEuropeana(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeEuropeana,
		Name:          "Europeana",
		Category:      CategoryArchives,
		Family:        "europeana",
		Tier:          TierArchival,
		Free:          true,
		MinDelay:      500 * time.Millisecond,
		Timeout:       20 * time.Second,
		Creds:         []string{"SOURCE_EUROPEANA_KEY"},
		MinContentLen: 120,
	}
	s := &europeana{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type europeana struct {
	*base
}

type europeanaResponse struct {
	Items []struct {
		Title         []string `json:"title"`
		DCDescription []string `json:"dcDescription"`
		Year          []string `json:"year"`
	} `json:"items"`
}

func (s *europeana) perform(ctx context.Context, a Actor) (Result, error) {
	target := "https://api.europeana.eu/record/v2/search.json?rows=10&wskey=" +
		os.Getenv("SOURCE_EUROPEANA_KEY") + "&query=" + quoted(a.Name)
	p, err := s.get(ctx, target)
	if err != nil {
		return Result{}, searchErr(err)
	}

	var resp europeanaResponse
	if err := json.Unmarshal([]byte(p.Content), &resp); err != nil {
		return Result{}, perr.Upstreamf("europeana bad payload: %v", err)
	}
	if len(resp.Items) == 0 {
		return Result{}, perr.NotFoundf("europeana has no records for %q", a.Name)
	}

	var sb strings.Builder
	for _, it := range resp.Items {
		sb.WriteString(strings.Join(it.Title, " "))
		if len(it.Year) > 0 {
			sb.WriteString(" (" + it.Year[0] + ")")
		}
		if len(it.DCDescription) > 0 {
			sb.WriteString(": " + strings.Join(it.DCDescription, " "))
		}
		sb.WriteString("\n")
	}
	return s.textResult(a, sb.String(), Meta{Publication: "Europeana"})
}

func newTrove(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeTrove,
		Name:          "Trove",
		Category:      CategoryArchives,
		Family:        "nla",
		Tier:          TierArchival,
		Free:          true,
		MinDelay:      500 * time.Millisecond,
		Timeout:       20 * time.Second,
		Creds:         []string{"SOURCE_TROVE_KEY"},
		MinContentLen: 120,
	}
	s := &trove{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type trove struct {
	*base
}

type troveResponse struct {
	Category []struct {
		Records struct {
			Article []struct {
				Heading string `json:"heading"`
				Date    string `json:"date"`
				Snippet string `json:"snippet"`
			} `json:"article"`
		} `json:"records"`
	} `json:"category"`
}

func (s *trove) perform(ctx context.Context, a Actor) (Result, error) {
	target := "https://api.trove.nla.gov.au/v3/result?category=newspaper&encoding=json&n=10&q=" + quoted(a.Name)
	p, err := s.get(ctx, target, fetch.WithHeader("X-API-KEY", os.Getenv("SOURCE_TROVE_KEY")))
	if err != nil {
		return Result{}, searchErr(err)
	}

	var resp troveResponse
	if err := json.Unmarshal([]byte(p.Content), &resp); err != nil {
		return Result{}, perr.Upstreamf("trove bad payload: %v", err)
	}

	var sb strings.Builder
	for _, c := range resp.Category {
		for _, art := range c.Records.Article {
			sb.WriteString(art.Heading + " (" + art.Date + "): " + stripMarkup(art.Snippet) + "\n")
		}
	}
	if sb.Len() == 0 {
		return Result{}, perr.NotFoundf("trove has no articles for %q", a.Name)
	}
	return s.textResult(a, sb.String(), Meta{Publication: "Trove"})
}

func lastToken(name string) string {
	f := strings.Fields(name)
	if len(f) == 0 {
		return name
	}
	return f[len(f)-1]
}
