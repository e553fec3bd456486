// Package version provides information about the build version of the service,
// plus the stable source-version hash used for idempotent enrichment writes.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'curtaincall/internal/core/version.version=v0.0.1'
	// -X 'curtaincall/internal/core/version.commit=abcd' -X 'curtaincall/internal/core/version.date=2025-09-02'"
	return BuildInfo{
		Service: "curtaincall",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// EnrichmentVersion derives a stable hash from the source set and synthesis
// model that produced an enrichment. Re-running the same sources and model on
// an actor yields the same version, which keys the idempotent upsert
func EnrichmentVersion(sourceTypes []string, model string) string {
	xs := make([]string, 0, len(sourceTypes))
	for _, s := range sourceTypes {
		if s = strings.TrimSpace(s); s != "" {
			xs = append(xs, s)
		}
	}
	sort.Strings(xs)
	sum := sha256.Sum256([]byte(strings.Join(xs, ",") + "|" + model))
	return hex.EncodeToString(sum[:8])
}
