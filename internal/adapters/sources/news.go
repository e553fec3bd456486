package sources

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	perr "curtaincall/internal/platform/errors"
)

func newAPNews(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:            TypeAPNews,
		Name:            "Associated Press",
		Category:        CategoryNews,
		Family:          "ap",
		Tier:            TierTier1News,
		Free:            true,
		MinDelay:        1500 * time.Millisecond,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   150,
	}, deps, func(a Actor) string {
		return "https://apnews.com/search?q=" + q(a)
	})
}

func newBBC(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:            TypeBBC,
		Name:            "BBC News",
		Category:        CategoryNews,
		Family:          "bbc",
		Tier:            TierTier1News,
		Free:            true,
		MinDelay:        1500 * time.Millisecond,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   150,
	}, deps, func(a Actor) string {
		return "https://www.bbc.co.uk/search?q=" + q(a)
	})
}

func newTMZ(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:            TypeTMZ,
		Name:            "TMZ",
		Category:        CategoryNews,
		Family:          "tmz",
		Tier:            TierMarginal,
		Free:            true,
		MinDelay:        2 * time.Second,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   150,
	}, deps, func(a Actor) string {
		return "https://www.tmz.com/search/?q=" + q(a)
	})
}

func newVariety(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:            TypeVariety,
		Name:            "Variety",
		Category:        CategoryNews,
		Family:          "penske",
		Tier:            TierTradePress,
		Free:            true,
		MinDelay:        1500 * time.Millisecond,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   150,
	}, deps, func(a Actor) string {
		return "https://variety.com/?s=" + q(a)
	})
}

func newGuardian(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeGuardian,
		Name:          "The Guardian",
		Category:      CategoryNews,
		Family:        "guardian",
		Tier:          TierTier1News,
		Free:          true,
		MinDelay:      500 * time.Millisecond,
		Timeout:       15 * time.Second,
		Creds:         []string{"SOURCE_GUARDIAN_KEY"},
		MinContentLen: 150,
	}
	s := &guardian{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type guardian struct {
	*base
}

type guardianResponse struct {
	Response struct {
		Results []struct {
			WebTitle string `json:"webTitle"`
			WebURL   string `json:"webUrl"`
			Fields   struct {
				BodyText string `json:"bodyText"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

func (s *guardian) perform(ctx context.Context, a Actor) (Result, error) {
	target := "https://content.guardianapis.com/search?show-fields=bodyText&page-size=5" +
		"&api-key=" + os.Getenv("SOURCE_GUARDIAN_KEY") + "&q=" + quoted(a.Name)
	p, err := s.get(ctx, target)
	if err != nil {
		return Result{}, searchErr(err)
	}

	var resp guardianResponse
	if err := json.Unmarshal([]byte(p.Content), &resp); err != nil {
		return Result{}, perr.Upstreamf("guardian bad payload: %v", err)
	}
	if len(resp.Response.Results) == 0 {
		return Result{}, perr.NotFoundf("guardian has no articles for %q", a.Name)
	}

	var sb strings.Builder
	url := ""
	for _, r := range resp.Response.Results {
		body := r.Fields.BodyText
		if len(body) > 3000 {
			body = body[:3000]
		}
		sb.WriteString(r.WebTitle + ": " + body + "\n")
		if url == "" {
			url = r.WebURL
		}
	}
	return s.textResult(a, sb.String(), Meta{URL: url, Publication: "The Guardian"})
}

func newNYT(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeNYT,
		Name:          "The New York Times",
		Category:      CategoryNews,
		Family:        "nyt",
		Tier:          TierTier1News,
		Free:          true,
		MinDelay:      600 * time.Millisecond,
		Timeout:       15 * time.Second,
		Creds:         []string{"SOURCE_NYT_KEY"},
		MinContentLen: 150,
	}
	s := &nyt{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type nyt struct {
	*base
}

type nytResponse struct {
	Response struct {
		Docs []struct {
			Abstract      string `json:"abstract"`
			LeadParagraph string `json:"lead_paragraph"`
			WebURL        string `json:"web_url"`
			Headline      struct {
				Main string `json:"main"`
			} `json:"headline"`
		} `json:"docs"`
	} `json:"response"`
}

func (s *nyt) perform(ctx context.Context, a Actor) (Result, error) {
	target := "https://api.nytimes.com/svc/search/v2/articlesearch.json?api-key=" +
		os.Getenv("SOURCE_NYT_KEY") + "&q=" + quoted(a.Name)
	p, err := s.get(ctx, target)
	if err != nil {
		return Result{}, searchErr(err)
	}

	var resp nytResponse
	if err := json.Unmarshal([]byte(p.Content), &resp); err != nil {
		return Result{}, perr.Upstreamf("nyt bad payload: %v", err)
	}
	if len(resp.Response.Docs) == 0 {
		return Result{}, perr.NotFoundf("nyt has no articles for %q", a.Name)
	}

	var sb strings.Builder
	url := ""
	for _, d := range resp.Response.Docs {
		sb.WriteString(d.Headline.Main + ": " + d.Abstract + " " + d.LeadParagraph + "\n")
		if url == "" {
			url = d.WebURL
		}
	}
	return s.textResult(a, sb.String(), Meta{URL: url, Publication: "The New York Times"})
}
