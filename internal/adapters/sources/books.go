package sources

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	perr "curtaincall/internal/platform/errors"
)

// Book sources are exempt from early stop in the orchestrator: decades-old
// deaths often surface only in print, so these always get their turn

func newGoogleBooks(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeGoogleBooks,
		Name:          "Google Books",
		Category:      CategoryBooks,
		Family:        "google_books",
		Tier:          TierArchival,
		Free:          true,
		MinDelay:      300 * time.Millisecond,
		Timeout:       15 * time.Second,
		MinContentLen: 120,
		// key is optional, unkeyed quota is enough for one query per actor
	}
	s := &googleBooks{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type googleBooks struct {
	*base
}

type booksVolumes struct {
	Items []struct {
		VolumeInfo struct {
			Title         string `json:"title"`
			PublishedDate string `json:"publishedDate"`
			Description   string `json:"description"`
		} `json:"volumeInfo"`
		SearchInfo struct {
			TextSnippet string `json:"textSnippet"`
		} `json:"searchInfo"`
	} `json:"items"`
}

func (s *googleBooks) perform(ctx context.Context, a Actor) (Result, error) {
	target := "https://www.googleapis.com/books/v1/volumes?maxResults=10&q=" + quoted(a.Name)
	if key := os.Getenv("SOURCE_GOOGLE_BOOKS_KEY"); key != "" {
		target += "&key=" + key
	}
	p, err := s.get(ctx, target)
	if err != nil {
		return Result{}, err
	}

	var vols booksVolumes
	if err := json.Unmarshal([]byte(p.Content), &vols); err != nil {
		return Result{}, perr.Upstreamf("google_books bad payload: %v", err)
	}
	if len(vols.Items) == 0 {
		return Result{}, perr.NotFoundf("google_books has no volumes for %q", a.Name)
	}

	var sb strings.Builder
	for _, it := range vols.Items {
		snip := it.SearchInfo.TextSnippet
		if snip == "" {
			snip = it.VolumeInfo.Description
		}
		if snip == "" {
			continue
		}
		sb.WriteString(it.VolumeInfo.Title)
		if it.VolumeInfo.PublishedDate != "" {
			sb.WriteString(" (" + it.VolumeInfo.PublishedDate + ")")
		}
		sb.WriteString(": " + snip + "\n")
	}
	return s.textResult(a, stripMarkup(sb.String()), Meta{Publication: "Google Books"})
}

func newIABooks(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeIABooks,
		Name:          "Internet Archive Books",
		Category:      CategoryBooks,
		Family:        "internet_archive",
		Tier:          TierArchival,
		Free:          true,
		MinDelay:      750 * time.Millisecond,
		Timeout:       20 * time.Second,
		MinContentLen: 120,
	}
	s := &iaSearch{mediaQuery: "mediatype:texts"}
	s.base = newBase(desc, deps, s.perform)
	return s
}

func newInternetArchive(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeInternetArch,
		Name:          "Internet Archive",
		Category:      CategoryArchives,
		Family:        "internet_archive",
		Tier:          TierArchival,
		Free:          true,
		MinDelay:      750 * time.Millisecond,
		Timeout:       20 * time.Second,
		MinContentLen: 120,
	}
	// everything but texts; the books source already covers those
	s := &iaSearch{mediaQuery: "NOT mediatype:texts"}
	s.base = newBase(desc, deps, s.perform)
	return s
}

// iaSearch queries the archive.org advanced search, scoped by media type
type iaSearch struct {
	*base
	mediaQuery string
}

type iaDocs struct {
	Response struct {
		Docs []struct {
			Identifier  string `json:"identifier"`
			Title       string `json:"title"`
			Description any    `json:"description"` // string or []string
			Year        any    `json:"year"`
		} `json:"docs"`
	} `json:"response"`
}

func (s *iaSearch) perform(ctx context.Context, a Actor) (Result, error) {
	target := "https://archive.org/advancedsearch.php?output=json&rows=10" +
		"&fl%5B%5D=identifier&fl%5B%5D=title&fl%5B%5D=description&fl%5B%5D=year" +
		"&q=" + quoted(a.Name) + "+AND+(" + strings.ReplaceAll(s.mediaQuery, " ", "+") + ")"
	p, err := s.get(ctx, target)
	if err != nil {
		return Result{}, err
	}

	var docs iaDocs
	if err := json.Unmarshal([]byte(p.Content), &docs); err != nil {
		return Result{}, perr.Upstreamf("%s bad payload: %v", s.desc.Type, err)
	}
	if len(docs.Response.Docs) == 0 {
		return Result{}, perr.NotFoundf("%s has no items for %q", s.desc.Type, a.Name)
	}

	var sb strings.Builder
	for _, d := range docs.Response.Docs {
		desc := flattenAny(d.Description)
		if desc == "" {
			continue
		}
		sb.WriteString(d.Title + ": " + desc + "\n")
	}
	return s.textResult(a, stripMarkup(sb.String()), Meta{Publication: s.desc.Name})
}

func newOpenLibrary(deps Deps) Source {
	desc := Descriptor{
		Type:          TypeOpenLibrary,
		Name:          "Open Library",
		Category:      CategoryBooks,
		Family:        "internet_archive",
		Tier:          TierSecondary,
		Free:          true,
		MinDelay:      500 * time.Millisecond,
		Timeout:       15 * time.Second,
		MinContentLen: 120,
	}
	s := &openLibrary{}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type openLibrary struct {
	*base
}

type olSearch struct {
	Docs []struct {
		Title         string   `json:"title"`
		FirstSentence []string `json:"first_sentence"`
		Subject       []string `json:"subject"`
		FirstPublish  int      `json:"first_publish_year"`
	} `json:"docs"`
}

func (s *openLibrary) perform(ctx context.Context, a Actor) (Result, error) {
	target := "https://openlibrary.org/search.json?limit=10&fields=title,first_sentence,subject,first_publish_year&q=" + quoted(a.Name)
	p, err := s.get(ctx, target)
	if err != nil {
		return Result{}, err
	}

	var res olSearch
	if err := json.Unmarshal([]byte(p.Content), &res); err != nil {
		return Result{}, perr.Upstreamf("open_library bad payload: %v", err)
	}
	if len(res.Docs) == 0 {
		return Result{}, perr.NotFoundf("open_library has no works for %q", a.Name)
	}

	var sb strings.Builder
	for _, d := range res.Docs {
		sb.WriteString(d.Title)
		for _, fs := range d.FirstSentence {
			sb.WriteString(": " + fs)
		}
		if len(d.Subject) > 0 {
			n := len(d.Subject)
			if n > 8 {
				n = 8
			}
			sb.WriteString(" [" + strings.Join(d.Subject[:n], ", ") + "]")
		}
		sb.WriteString("\n")
	}
	return s.textResult(a, sb.String(), Meta{Publication: "Open Library"})
}

// quoted is the actor's name as an exact-phrase query value
func quoted(name string) string {
	return "%22" + strings.ReplaceAll(strings.TrimSpace(name), " ", "+") + "%22"
}

// stripMarkup drops the <b> highlighting some APIs embed in snippets
func stripMarkup(s string) string {
	r := strings.NewReplacer("<b>", "", "</b>", "", "&quot;", `"`, "&#39;", "'", "&amp;", "&")
	return r.Replace(s)
}

// flattenAny joins the string-or-list shapes loose JSON APIs return
func flattenAny(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
