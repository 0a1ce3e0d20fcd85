// Package api provides the HTTP API for the application
package api

import (
	"evidencegate/internal/platform/config"
	"evidencegate/internal/platform/logger"
	phttp "evidencegate/internal/platform/net/http"
	"evidencegate/internal/platform/store"

	"evidencegate/internal/modkit"
	"evidencegate/internal/modkit/httpkit"
	"evidencegate/internal/modkit/module"
	"evidencegate/internal/modkit/swaggerkit"

	ingestmod "evidencegate/internal/services/api/ingestion/module"
	metamod "evidencegate/internal/services/api/meta/module"
)

// BasePath is where the versioned API is mounted
const BasePath = "/api/v1"

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
	log := opt.Logger
	if log == nil {
		log = logger.Get()
	}

	// shared deps for modules
	deps := modkit.Deps{Log: *log, Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}

	// ingestion first so meta can read its ports
	mods := []module.Module{
		ingestmod.New(deps),
		metamod.New(deps),
	}

	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackFromConfig(opt.Config)), func(api httpkit.Router) {
		swaggerkit.Mount(api, opt.EnableSwagger, swaggerkit.Options{BasePath: BasePath})

		for _, m := range mods {
			// register each module's ports under its own name for cross-module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
}
