package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"curtaincall/internal/core/namematch"
	perr "curtaincall/internal/platform/errors"
)

func newBritannica(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:            TypeBritannica,
		Name:            "Encyclopaedia Britannica",
		Category:        CategoryReference,
		Family:          "britannica",
		Tier:            TierSecondary,
		Free:            true,
		MinDelay:        1500 * time.Millisecond,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   200,
	}, deps, func(a Actor) string {
		return "https://www.britannica.com/biography/" + url.PathEscape(slug(a))
	})
}

func newIMDbBio(deps Deps) Source {
	desc := Descriptor{
		Type:            TypeIMDbBio,
		Name:            "IMDb Biography",
		Category:        CategoryReference,
		Family:          "imdb",
		Tier:            TierMarginal,
		Free:            true,
		MinDelay:        2 * time.Second,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   200,
	}
	s := &imdbBio{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

// imdbBio resolves the name through the public suggestion endpoint, then
// scrapes the bio page for the matched nm id
type imdbBio struct {
	*base
}

type imdbSuggestion struct {
	D []struct {
		ID   string `json:"id"`
		Name string `json:"l"`
	} `json:"d"`
}

func (s *imdbBio) perform(ctx context.Context, a Actor) (Result, error) {
	key := strings.ToLower(strings.ReplaceAll(a.Name, " ", "_"))
	sp, err := s.deps.Fetch.Get(ctx, "https://v2.sg.media-imdb.com/suggestion/"+key[:1]+"/"+url.PathEscape(key)+".json")
	if err != nil {
		return Result{}, err
	}

	var sug imdbSuggestion
	if err := json.Unmarshal([]byte(sp.Content), &sug); err != nil {
		return Result{}, perr.Upstreamf("imdb bad suggestion payload: %v", err)
	}

	cands := make([]namematch.Candidate, 0, len(sug.D))
	ids := make([]string, 0, len(sug.D))
	for _, d := range sug.D {
		if !strings.HasPrefix(d.ID, "nm") {
			continue
		}
		cands = append(cands, namematch.Candidate{Name: d.Name})
		ids = append(ids, d.ID)
	}
	idx, ok := namematch.Best(namematch.Subject{Name: a.Name, BirthYear: a.BirthYear()}, cands)
	if !ok {
		return Result{}, perr.NotFoundf("imdb has no unambiguous match for %q", a.Name)
	}

	p, err := s.get(ctx, "https://www.imdb.com/name/"+ids[idx]+"/bio/")
	if err != nil {
		return Result{}, err
	}
	return s.bioResult(ctx, a, p.Content, Meta{
		URL:         p.FinalURL,
		Publication: "IMDb",
		ViaArchive:  p.ViaArchive,
	})
}
