// Package bioscore computes the biographical confidence of a cleaned text
// snippet
//
// The score says how likely this particular hit is to be useful biography,
// it is orthogonal to the reliability of the source that produced it.
// Scoring is keyword-family based: each distinct family matched adds a fixed
// increment, clamped to [0, 0.95]. One shared implementation serves every
// source so the weights stay comparable across the pipeline
package bioscore

import "strings"

// Increment added per distinct matched family
const perFamily = 0.15

// Cap is the maximum biographical confidence a snippet can earn
const Cap = 0.95

// family groups the keywords that signal one slice of a biography
type family struct {
	name  string
	terms []string
}

// families are matched case-insensitively on word-ish boundaries.
// Order is stable for Families output
var families = []family{
	{"childhood", []string{"childhood", "grew up", "was born", "born in", "born on", "raised in", "as a child", "his youth", "her youth"}},
	{"family", []string{"father", "mother", "parents", "brother", "sister", "siblings", "son of", "daughter of", "children", "survived by"}},
	{"education", []string{"school", "university", "college", "studied", "graduated", "degree", "drama school", "conservatory"}},
	{"early_life", []string{"early life", "early career", "first role", "debut", "began acting", "started acting", "first appeared", "breakthrough"}},
	{"career", []string{"career", "starred", "appeared in", "film", "television", "series", "movie", "role", "award", "nominated", "performance"}},
	{"marriage", []string{"married", "marriage", "wife", "husband", "spouse", "divorce", "divorced", "engaged", "widow"}},
	{"death_illness", []string{"died", "death", "passed away", "illness", "cancer", "hospital", "diagnosed", "funeral", "buried", "obituary", "cause of death"}},
}

// Families returns the names of the keyword families present in text,
// in the fixed family order
func Families(text string) []string {
	if text == "" {
		return nil
	}
	low := strings.ToLower(text)
	var out []string
	for _, f := range families {
		for _, t := range f.terms {
			if strings.Contains(low, t) {
				out = append(out, f.name)
				break
			}
		}
	}
	return out
}

// Score returns the biographical confidence for text
func Score(text string) float64 {
	n := len(Families(text))
	s := float64(n) * perFamily
	if s > Cap {
		return Cap
	}
	return s
}
