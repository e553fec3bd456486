// Package namematch decides whether a candidate person returned by an
// external source refers to the actor being enriched
//
// Policy, strongest first
// 1 Birth year when both sides know it: a mismatch vetoes, a match accepts
// 2 Folded full-name equality, or token subsequence for middle-name inserts
// 3 Folded last-name equality
// Anything weaker is no match; ties between distinct candidates at equal
// strength are ambiguous and callers should treat them as no match
package namematch

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Subject is the actor side of the comparison
type Subject struct {
	Name      string
	BirthYear int // 0 when unknown
}

// Candidate is the external side of the comparison
type Candidate struct {
	Name      string
	BirthYear int // 0 when unknown
}

// Strength grades how a candidate matched
type Strength int

// Match strengths, higher wins
const (
	None Strength = iota
	LastName
	FullName
	BirthYear
)

// pool of fresh transformer chains
// NFKD before mark stripping so accented letters compare bare
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
		)
	},
}

// Fold returns the comparison key for a name
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	return strings.TrimSpace(ns)
}

// tokens splits a folded name into letter runs, dropping punctuation
func tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Grade returns the match strength between subject and candidate
func Grade(subj Subject, cand Candidate) Strength {
	if subj.Name == "" || cand.Name == "" {
		return None
	}

	// birth year is decisive in both directions when known on both sides;
	// candidates arrive from name-scoped queries so the year disambiguates
	if subj.BirthYear > 0 && cand.BirthYear > 0 {
		if subj.BirthYear != cand.BirthYear {
			return None
		}
		return BirthYear
	}

	st := tokens(subj.Name)
	ct := tokens(cand.Name)
	if len(st) == 0 || len(ct) == 0 {
		return None
	}

	if strings.Join(st, " ") == strings.Join(ct, " ") {
		return FullName
	}
	if subsequence(st, ct) || subsequence(ct, st) {
		return FullName
	}
	if st[len(st)-1] == ct[len(ct)-1] {
		return LastName
	}
	return None
}

// Match reports whether the candidate passes at any strength
func Match(subj Subject, cand Candidate) bool { return Grade(subj, cand) > None }

// Best picks the single strongest candidate index
// ok is false when nothing matches or the strongest strength is shared by
// more than one candidate (ambiguous)
func Best(subj Subject, cands []Candidate) (int, bool) {
	best := -1
	bestStrength := None
	dup := false
	for i, c := range cands {
		g := Grade(subj, c)
		switch {
		case g == None:
		case g > bestStrength:
			best, bestStrength, dup = i, g, false
		case g == bestStrength:
			dup = true
		}
	}
	if best < 0 || dup {
		return -1, false
	}
	return best, true
}

// subsequence reports whether needle's tokens appear in order within hay
func subsequence(needle, hay []string) bool {
	if len(needle) > len(hay) {
		return false
	}
	i := 0
	for _, h := range hay {
		if i < len(needle) && needle[i] == h {
			i++
		}
	}
	return i == len(needle)
}
