// Package http provides the source catalog endpoints
package http

import (
	stdhttp "net/http"

	"curtaincall/internal/adapters/sources"
	"curtaincall/internal/modkit/httpkit"
)

// Register mounts the source catalog routes
func Register(r httpkit.Router) {
	h := &handlers{}

	httpkit.Get(r, "/", h.list)
}

type handlers struct{}

// SourceResponse describes one catalog entry and whether its credentials
// are present in the environment
// swagger:model
type SourceResponse struct {
	Type         string  `json:"type" example:"wikidata"`
	Name         string  `json:"name" example:"Wikidata"`
	Category     string  `json:"category" example:"free"`
	Family       string  `json:"family" example:"wikidata"`
	Tier         string  `json:"tier" example:"structured_data"`
	Score        float64 `json:"score" example:"0.95"`
	Free         bool    `json:"free" example:"true"`
	CostPerQuery float64 `json:"cost_per_query" example:"0"`
	Available    bool    `json:"available" example:"true"`
}

// swagger:route GET /sources Sources sourcesList
// @Summary Source catalog with per-source availability
// @Tags Sources
// @Produce json
// @Success 200 {array} SourceResponse "ok"
// @Router /sources [get]
func (h *handlers) list(_ *stdhttp.Request) (any, error) {
	descs := sources.Descriptors()
	out := make([]SourceResponse, 0, len(descs))
	for _, d := range descs {
		out = append(out, SourceResponse{
			Type:         string(d.Type),
			Name:         d.Name,
			Category:     string(d.Category),
			Family:       d.Family,
			Tier:         string(d.Tier),
			Score:        d.Score(),
			Free:         d.Free,
			CostPerQuery: d.CostPerQuery,
			Available:    d.Available(),
		})
	}
	return out, nil
}
