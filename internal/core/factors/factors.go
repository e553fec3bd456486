// Package factors loads the closed notable-factors vocabulary from the
// embedded factors.json
//
// The synthesizer is asked to pick from this list; anything it emits outside
// the list is stripped from the structured record and kept only as telemetry
// so the vocabulary can evolve from real rejections
package factors

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed factors.json
var embedded []byte

type rawFactor struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

type rawPack struct {
	Version int            `json:"version"`
	Meta    map[string]any `json:"meta"`
	Factors []rawFactor    `json:"factors"`
}

// Factor is one vocabulary entry
type Factor struct {
	ID    string
	Label string
	Kind  string
}

// Pack is the compiled vocabulary
type Pack struct {
	Version int
	Factors []Factor

	byID map[string]Factor
	hash string
}

// Load compiles the embedded vocabulary
func Load() (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(embedded, &rp); err != nil {
		return nil, fmt.Errorf("factors: parse factors.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("factors: unsupported factors.json version %d (want 1)", rp.Version)
	}

	sum := sha256.Sum256(embedded)
	p := &Pack{
		Version: rp.Version,
		byID:    make(map[string]Factor, len(rp.Factors)),
		hash:    hex.EncodeToString(sum[:6]),
	}
	for _, f := range rp.Factors {
		id := Canon(f.ID)
		if id == "" {
			continue
		}
		fac := Factor{ID: id, Label: f.Label, Kind: f.Kind}
		p.Factors = append(p.Factors, fac)
		p.byID[id] = fac
	}
	sort.Slice(p.Factors, func(i, j int) bool { return p.Factors[i].ID < p.Factors[j].ID })
	return p, nil
}

// Hash identifies this vocabulary revision in telemetry
func (p *Pack) Hash() string { return p.hash }

// Known reports whether id is in the vocabulary after canonicalization
func (p *Pack) Known(id string) bool {
	_, ok := p.byID[Canon(id)]
	return ok
}

// Lookup returns the vocabulary entry for id
func (p *Pack) Lookup(id string) (Factor, bool) {
	f, ok := p.byID[Canon(id)]
	return f, ok
}

// Filter splits values into canonical kept ids and rejected originals.
// Duplicates collapse; order of first appearance is preserved
func (p *Pack) Filter(values []string) (kept, rejected []string) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		id := Canon(v)
		if id == "" {
			continue
		}
		if _, ok := p.byID[id]; ok {
			if !seen[id] {
				seen[id] = true
				kept = append(kept, id)
			}
			continue
		}
		rejected = append(rejected, strings.TrimSpace(v))
	}
	return kept, rejected
}

// Canon normalizes a free-form factor into vocabulary id shape:
// lowercased, trimmed, separators collapsed to single underscores
func Canon(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	var sb strings.Builder
	lastSep := true
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastSep = false
		default:
			if !lastSep {
				sb.WriteByte('_')
				lastSep = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "_")
}
