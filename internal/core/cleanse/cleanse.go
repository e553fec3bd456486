// Package cleanse turns raw article HTML into plain text plus page metadata
//
// The mechanical pass only: strip boilerplate elements, collapse whitespace,
// and pull title/publication out of the standard meta tags. LLM-assisted
// narrowing lives in adapters/llm and is a separate, optional step
package cleanse

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Cleaned is the output of a mechanical clean
type Cleaned struct {
	Text        string
	Title       string
	Publication string
	Canonical   string
	ContentType string
}

// stripTags catches any markup that survives the DOM walk
var stripTags = bluemonday.StrictPolicy()

// skipped elements contribute no text
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"form":     true,
	"iframe":   true,
	"svg":      true,
	"button":   true,
}

// blockish elements get a separating space so words don't glue together
var blockish = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "td": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "blockquote": true,
}

// Clean extracts text and metadata from raw HTML. It is idempotent: cleaning
// already-clean text returns the same text
func Clean(raw string) Cleaned {
	var out Cleaned
	if strings.TrimSpace(raw) == "" {
		return out
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// salvage what the strict policy can
		out.Text = collapse(html.UnescapeString(stripTags.Sanitize(raw)))
		return out
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "title":
				if out.Title == "" {
					out.Title = strings.TrimSpace(textOf(n))
				}
				return
			case "meta":
				readMeta(n, &out)
				return
			case "link":
				if attr(n, "rel") == "canonical" && out.Canonical == "" {
					out.Canonical = attr(n, "href")
				}
				return
			}
			if skipped[n.Data] {
				return
			}
			if blockish[n.Data] {
				sb.WriteByte(' ')
			}
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out.Text = collapse(html.UnescapeString(stripTags.Sanitize(sb.String())))
	return out
}

// readMeta pulls og: and name= metadata into the result, first value wins
func readMeta(n *html.Node, out *Cleaned) {
	prop := attr(n, "property")
	if prop == "" {
		prop = attr(n, "name")
	}
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}
	switch prop {
	case "og:title":
		if out.Title == "" {
			out.Title = content
		}
	case "og:site_name", "publisher":
		if out.Publication == "" {
			out.Publication = content
		}
	case "og:type":
		if out.ContentType == "" {
			out.ContentType = content
		}
	case "og:url":
		if out.Canonical == "" {
			out.Canonical = content
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// collapse squeezes runs of whitespace into single spaces
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
