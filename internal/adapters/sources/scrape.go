package sources

import (
	"context"
	"net/url"
	"strings"
)

// scrapeSource is the shape shared by every plain page-scraping source:
// build a URL from the actor, fetch it (with archive fallback when the
// descriptor says so), clean, gate, score
type scrapeSource struct {
	*base
	urlFor func(Actor) string
}

func newScrapeSource(desc Descriptor, deps Deps, urlFor func(Actor) string) Source {
	s := &scrapeSource{urlFor: urlFor}
	s.base = newBase(desc, deps, s.perform)
	return s
}

func (s *scrapeSource) perform(ctx context.Context, a Actor) (Result, error) {
	p, err := s.get(ctx, s.urlFor(a))
	if err != nil {
		return Result{}, err
	}
	return s.bioResult(ctx, a, p.Content, Meta{
		URL:         p.FinalURL,
		Publication: s.desc.Name,
		ViaArchive:  p.ViaArchive,
	})
}

// q is the actor's name as a query parameter value
func q(a Actor) string { return url.QueryEscape(a.Name) }

// slug is the actor's name as a lowercase-dashed path segment
func slug(a Actor) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(a.Name), " ", "-"))
}
