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

// searchQuery biases the index toward death coverage without losing the
// exact-name anchor
func searchQuery(a Actor) string {
	return quoted(a.Name) + "+actor+death"
}

// searchErr remaps 403 from a paid search API to rate_limited. These
// endpoints use 403 for quota exhaustion, not bot blocking
func searchErr(err error) error {
	if perr.IsCode(err, perr.ErrorCodeBlocked) {
		return perr.RateLimitedf("search api quota refused: %v", err)
	}
	return err
}

func newBing(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeBing,
		Name:          "Bing Web Search",
		Category:      CategoryWebSearch,
		Family:        "bing_index",
		Tier:          TierWebSearch,
		CostPerQuery:  0.003,
		MinDelay:      200 * time.Millisecond,
		Timeout:       15 * time.Second,
		Creds:         []string{"SOURCE_BING_KEY"},
		MinContentLen: 80,
	}
	s := &bing{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type bing struct {
	*base
}

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

func (s *bing) perform(ctx context.Context, a Actor) (Result, error) {
	p, err := s.get(ctx, "https://api.bing.microsoft.com/v7.0/search?count=10&q="+searchQuery(a),
		fetch.WithHeader("Ocp-Apim-Subscription-Key", os.Getenv("SOURCE_BING_KEY")))
	if err != nil {
		return Result{}, searchErr(err)
	}

	var resp bingResponse
	if err := json.Unmarshal([]byte(p.Content), &resp); err != nil {
		return Result{}, perr.Upstreamf("bing bad payload: %v", err)
	}
	if len(resp.WebPages.Value) == 0 {
		return Result{}, perr.NotFoundf("bing has no results for %q", a.Name)
	}

	var sb strings.Builder
	for _, v := range resp.WebPages.Value {
		sb.WriteString(v.Name + ": " + v.Snippet + "\n")
	}
	return s.textResult(a, sb.String(), Meta{Publication: "Bing"})
}

func newBrave(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeBrave,
		Name:          "Brave Search",
		Category:      CategoryWebSearch,
		Family:        "brave_index",
		Tier:          TierWebSearch,
		CostPerQuery:  0.0005,
		MinDelay:      300 * time.Millisecond,
		Timeout:       15 * time.Second,
		Creds:         []string{"SOURCE_BRAVE_KEY"},
		MinContentLen: 80,
	}
	s := &brave{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type brave struct {
	*base
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (s *brave) perform(ctx context.Context, a Actor) (Result, error) {
	p, err := s.get(ctx, "https://api.search.brave.com/res/v1/web/search?count=10&q="+searchQuery(a),
		fetch.WithHeader("X-Subscription-Token", os.Getenv("SOURCE_BRAVE_KEY")),
		fetch.WithHeader("Accept", "application/json"))
	if err != nil {
		return Result{}, searchErr(err)
	}

	var resp braveResponse
	if err := json.Unmarshal([]byte(p.Content), &resp); err != nil {
		return Result{}, perr.Upstreamf("brave bad payload: %v", err)
	}
	if len(resp.Web.Results) == 0 {
		return Result{}, perr.NotFoundf("brave has no results for %q", a.Name)
	}

	var sb strings.Builder
	for _, v := range resp.Web.Results {
		sb.WriteString(v.Title + ": " + stripMarkup(v.Description) + "\n")
	}
	return s.textResult(a, sb.String(), Meta{Publication: "Brave Search"})
}

func newDuckDuckGo(deps Deps) Source {
	return newScrapeSource(Descriptor{
		Type:     TypeDuckDuckGo,
		Name:     "DuckDuckGo",
		Category: CategoryWebSearch,
		// ddg serves bing's index, so it shares bing's family for early stop
		Family:          "bing_index",
		Tier:            TierWebSearch,
		Free:            true,
		MinDelay:        2 * time.Second,
		Timeout:         15 * time.Second,
		ArchiveFallback: true,
		MinContentLen:   80,
	}, deps, func(a Actor) string {
		return "https://html.duckduckgo.com/html/?q=" + searchQuery(a)
	})
}

func newGoogleCSE(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeGoogleCSE,
		Name:          "Google Custom Search",
		Category:      CategoryWebSearch,
		Family:        "google_index",
		Tier:          TierWebSearch,
		CostPerQuery:  0.005,
		MinDelay:      200 * time.Millisecond,
		Timeout:       15 * time.Second,
		Creds:         []string{"SOURCE_GOOGLE_CSE_KEY", "SOURCE_GOOGLE_CSE_CX"},
		MinContentLen: 80,
	}
	s := &googleCSE{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type googleCSE struct {
	*base
}

type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (s *googleCSE) perform(ctx context.Context, a Actor) (Result, error) {
	target := "https://www.googleapis.com/customsearch/v1?key=" + os.Getenv("SOURCE_GOOGLE_CSE_KEY") +
		"&cx=" + os.Getenv("SOURCE_GOOGLE_CSE_CX") + "&q=" + searchQuery(a)
	p, err := s.get(ctx, target)
	if err != nil {
		return Result{}, searchErr(err)
	}

	var resp cseResponse
	if err := json.Unmarshal([]byte(p.Content), &resp); err != nil {
		return Result{}, perr.Upstreamf("google_cse bad payload: %v", err)
	}
	if len(resp.Items) == 0 {
		return Result{}, perr.NotFoundf("google_cse has no results for %q", a.Name)
	}

	var sb strings.Builder
	for _, v := range resp.Items {
		sb.WriteString(v.Title + ": " + v.Snippet + "\n")
	}
	return s.textResult(a, sb.String(), Meta{Publication: "Google"})
}
