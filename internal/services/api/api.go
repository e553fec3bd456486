// Package api provides the ops HTTP API for the application
package api

import (
	"curtaincall/internal/platform/config"
	"curtaincall/internal/platform/logger"
	phttp "curtaincall/internal/platform/net/http"
	"curtaincall/internal/platform/store"

	"curtaincall/internal/modkit"
	"curtaincall/internal/modkit/httpkit"
	"curtaincall/internal/modkit/module"
	"curtaincall/internal/modkit/swaggerkit"

	metamod "curtaincall/internal/services/api/meta/module"
	runsmod "curtaincall/internal/services/api/runs/module"
	sourcesmod "curtaincall/internal/services/api/sources/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	mods := []module.Module{
		metamod.New(deps),
		sourcesmod.New(deps),
		runsmod.New(deps),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
