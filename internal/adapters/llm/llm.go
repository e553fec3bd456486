// Package llm holds the provider-neutral ports the enrichment pipeline uses
// to talk to language models, plus the shared pricing table
//
// Three capabilities, each its own port so tests can stub one without the
// others: plain completion (synthesis), grounded web search (the ai sources),
// and biographical extraction (optional content narrowing)
package llm

import "context"

// Request is one completion call
type Request struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

// Completion is the result of a completion call
type Completion struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// Completer produces a completion for a prompt
type Completer interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// Citation is one grounded-search attribution
type Citation struct {
	URL   string
	Title string
}

// GroundedAnswer is the result of a search-grounded generation
type GroundedAnswer struct {
	Text      string
	Citations []Citation
	Model     string
	CostUSD   float64
}

// Grounded answers a prompt with provider-side web search for grounding
type Grounded interface {
	GroundedSearch(ctx context.Context, prompt string, maxTokens int) (GroundedAnswer, error)
}

// Relevance grades how much of a text is about the subject
type Relevance string

// Relevance grades
const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
	RelevanceNone   Relevance = "none"
)

// Extraction is the result of biographical narrowing
type Extraction struct {
	Text      string
	Relevance Relevance
	CostUSD   float64
}

// Extractor narrows a long text down to passages about one person
type Extractor interface {
	ExtractBiographical(ctx context.Context, text, subject string) (Extraction, error)
}

// price is USD per million tokens
type price struct{ in, out float64 }

// prices by model prefix, longest match wins
var prices = []struct {
	prefix string
	p      price
}{
	{"claude-opus", price{15, 75}},
	{"claude-sonnet", price{3, 15}},
	{"claude-haiku", price{0.80, 4}},
	{"gemini-2.5-pro", price{1.25, 10}},
	{"gemini-2.5-flash", price{0.30, 2.50}},
	{"gemini", price{0.30, 2.50}},
	{"claude", price{3, 15}},
}

// Cost converts token usage into USD for a model.
// Unknown models cost nothing rather than guessing high
func Cost(model string, inTokens, outTokens int) float64 {
	for _, e := range prices {
		if len(model) >= len(e.prefix) && model[:len(e.prefix)] == e.prefix {
			return float64(inTokens)*e.p.in/1e6 + float64(outTokens)*e.p.out/1e6
		}
	}
	return 0
}
