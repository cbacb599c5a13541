// Package api composes the HTTP API from its modules
package api

import (
	"reviewguard/internal/platform/config"
	phttp "reviewguard/internal/platform/net/http"
	"reviewguard/internal/platform/net/middleware"
	"reviewguard/internal/platform/store"

	"reviewguard/internal/modkit"
	"reviewguard/internal/modkit/httpkit"
	"reviewguard/internal/modkit/module"
	"reviewguard/internal/modkit/swaggerkit"

	metamod "reviewguard/internal/services/api/meta/module"
	reviewsmod "reviewguard/internal/services/reviews/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Stack          httpkit.StackOptions
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// API holds the mounted modules the process drives outside of requests
type API struct {
	Reviews *reviewsmod.Module
}

// Mount builds the modules and mounts them onto r
func Mount(r phttp.Router, opt Options) *API {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG, deps.CH = opt.Store.PG, opt.Store.CH
	}

	reviews := reviewsmod.New(deps)
	model := module.MustPortsOf[reviewsmod.Ports](reviews).Model

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Model: model})),
		reviews,
	}

	// load balancer probe, answered before any routing
	r.Use(middleware.Heartbeat("/health"))

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	if opt.EnableMetrics {
		r.Handle("/metrics", reviews.Metrics().Handler())
	}

	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Stack), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	return &API{Reviews: reviews}
}
