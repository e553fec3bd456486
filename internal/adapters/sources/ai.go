package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"curtaincall/internal/adapters/llm"
	perr "curtaincall/internal/platform/errors"
)

// The AI sources run last: a grounded web search through a model, asked for
// labeled fields and told that "unknown" beats a guess

const groundedMaxTokens = 1024

func newClaudeSource(deps Deps) Source {
	desc := Descriptor{
		Type:         TypeClaude,
		Name:         "Claude Grounded Search",
		Category:     CategoryAI,
		Family:       "anthropic",
		Tier:         TierAI,
		CostPerQuery: 0.02,
		MinDelay:     time.Second,
		Timeout:      30 * time.Second,
		Creds:        []string{"ANTHROPIC_API_KEY"},
	}
	return newGroundedSource(desc, deps, deps.Claude)
}

func newGeminiSource(deps Deps) Source {
	desc := Descriptor{
		Type:         TypeGemini,
		Name:         "Gemini Grounded Search",
		Category:     CategoryAI,
		Family:       "gemini",
		Tier:         TierAI,
		CostPerQuery: 0.01,
		MinDelay:     time.Second,
		Timeout:      30 * time.Second,
		Creds:        []string{"GEMINI_API_KEY"},
	}
	return newGroundedSource(desc, deps, deps.Gemini)
}

func newGroundedSource(desc Descriptor, deps Deps, g llm.Grounded) Source {
	s := &groundedSource{grounded: g}
	s.base = newBase(desc, deps, s.perform)
	return s
}

type groundedSource struct {
	*base
	grounded llm.Grounded
}

// Available also requires a wired client; a key with no client is a
// misconfigured process, not a usable source
func (s *groundedSource) Available() bool {
	return s.grounded != nil && s.desc.Available()
}

func (s *groundedSource) perform(ctx context.Context, a Actor) (Result, error) {
	if s.grounded == nil {
		return Result{}, perr.NotConfiguredf("%s source has no client", s.desc.Type)
	}

	ans, err := s.grounded.GroundedSearch(ctx, groundedPrompt(a), groundedMaxTokens)
	if err != nil {
		return Result{}, err
	}

	snip := parseGrounded(ans.Text)
	if snip == nil {
		return Result{Entry: Entry{CostUSD: ans.CostUSD}},
			perr.NotFoundf("%s found nothing verifiable about %s", s.desc.Type, a.Name)
	}

	conf := 0.50
	if len(ans.Citations) > 0 {
		conf = 0.70
	}
	meta := Meta{Publication: s.desc.Name}
	if len(ans.Citations) > 0 {
		meta.URL = ans.Citations[0].URL
		meta.Title = ans.Citations[0].Title
	}
	return Result{
		Entry: Entry{Confidence: conf, CostUSD: ans.CostUSD, Meta: meta},
		Death: snip,
	}, nil
}

func groundedPrompt(a Actor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You research the deaths of film and television actors.\n")
	fmt.Fprintf(&sb, "Subject: %s", a.Name)
	if a.Birthday != "" {
		fmt.Fprintf(&sb, ", born %s", a.Birthday)
	}
	if a.Deathday != "" {
		fmt.Fprintf(&sb, ", died %s", a.Deathday)
	}
	if a.PlaceOfBirth != "" {
		fmt.Fprintf(&sb, ", from %s", a.PlaceOfBirth)
	}
	sb.WriteString(".\n")
	sb.WriteString(`Search for coverage of this person's death and answer with exactly these labeled lines:
CIRCUMSTANCES: the verified circumstances of death
RUMORED: rumored or disputed accounts, clearly separated from verified fact
CAUSE: the cause of death
LOCATION: where they died
FACTORS: comma-separated notable factors (for example: cancer, plane crash, died during production)
RELATED: other celebrities connected to this death
Write "unknown" on any line you cannot verify. Never guess.`)
	return sb.String()
}

// parseGrounded maps the labeled lines back into a snippet; nil when the
// model verified nothing
func parseGrounded(text string) *DeathSnippet {
	snip := &DeathSnippet{}
	got := false
	for _, line := range strings.Split(text, "\n") {
		label, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		if val == "" || strings.EqualFold(val, "unknown") {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(label)) {
		case "CIRCUMSTANCES":
			snip.Circumstances, got = val, true
		case "RUMORED":
			snip.RumoredCircumstances, got = val, true
		case "CAUSE":
			snip.CauseOfDeath, got = val, true
		case "LOCATION":
			snip.Location, got = val, true
		case "FACTORS":
			for _, f := range strings.Split(val, ",") {
				if f = strings.TrimSpace(f); f != "" {
					snip.Factors = append(snip.Factors, f)
				}
			}
			got = got || len(snip.Factors) > 0
		case "RELATED":
			snip.RelatedCelebrities, got = val, true
		}
	}
	if !got {
		return nil
	}
	snip.Context = text
	return snip
}
