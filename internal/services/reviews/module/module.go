// Package module wires review evaluation into the API using modkit
package module

import (
	"context"
	"fmt"
	"net/http"

	"reviewguard/internal/adapters/model/mlclient"
	"reviewguard/internal/core/bayes"
	"reviewguard/internal/core/engine"
	"reviewguard/internal/core/ratelimit"
	modkit "reviewguard/internal/modkit"
	"reviewguard/internal/modkit/httpkit"
	"reviewguard/internal/modkit/repokit"
	"reviewguard/internal/platform/logger"

	rhttp "reviewguard/internal/services/reviews/http"
	"reviewguard/internal/services/reviews/metrics"
	rrepo "reviewguard/internal/services/reviews/repo"
	rsvc "reviewguard/internal/services/reviews/service"
)

// Module implements the reviews API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports Ports

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	opts    Options
	svc     *rsvc.Svc
	metrics *metrics.Metrics
}

// New constructs the reviews module from REVIEWS_* config
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWith(deps, FromConfig(deps.Cfg), opts...)
}

// NewWith constructs the reviews module from explicit options.
// Invalid engine config panics; a model that fails to load is logged and
// left unready so the configured policy applies
func NewWith(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("reviews"),
		modkit.WithPrefix("/reviews"),
	}, opts...)...)

	log := logger.Named("reviews")
	met := metrics.New()

	scorer, probe := buildModel(o, log)

	engOpts := []engine.Option{}
	if scorer != nil {
		engOpts = append(engOpts, engine.WithModel(scorer))
	}
	if o.Limiter == LimiterPG && deps.PG != nil {
		db := repokit.WithBeginHooks(deps.PG, rrepo.LockTimeout(o.LockTimeout))
		engOpts = append(engOpts, engine.WithGate(rrepo.NewGate(db, o.Engine.Limits)))
	} else {
		if o.Limiter == LimiterPG {
			log.Warn().Msg("pg limiter requested without postgres, using memory")
		}
		engOpts = append(engOpts, engine.WithGate(ratelimit.NewMemory(o.Engine.Limits)))
	}

	eng, err := engine.New(o.Engine, engOpts...)
	if err != nil {
		panic(fmt.Sprintf("reviews module: %v", err))
	}

	svcOpts := []rsvc.Option{
		rsvc.WithModel(o.ModelKind, probe),
		rsvc.WithMetrics(met),
		rsvc.WithLogger(log),
	}
	if deps.PG != nil {
		svcOpts = append(svcOpts, rsvc.WithStore(deps.PG, rrepo.NewPG()))
	}
	if deps.CH != nil {
		svcOpts = append(svcOpts, rsvc.WithAudit(rrepo.NewAuditor(repokit.CH(context.Background(), deps.CH))))
	}
	svc := rsvc.New(eng, svcOpts...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		opts:      o,
		svc:       svc,
		metrics:   met,
	}
	m.ports = Ports{
		Reviews: adaptReviews{svc: svc},
		Model:   adaptModel{svc: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		rhttp.Register(r, m.ports.Reviews)
		if external != nil {
			external(r)
		}
	}

	log.Info().
		Str("model", o.ModelKind).
		Str("policy", string(o.Engine.ModelPolicy)).
		Str("limiter", o.Limiter).
		Bool("pg", deps.PG != nil).
		Bool("clickhouse", deps.CH != nil).
		Msg("reviews module ready")
	return m
}

// buildModel resolves the scorer and its health probe for o.ModelKind
func buildModel(o Options, log *logger.Logger) (engine.ModelScorer, rsvc.ModelProbe) {
	switch o.ModelKind {
	case ModelBayes:
		mdl, err := bayes.LoadFile(o.ModelPath)
		if err != nil {
			log.Error().Err(err).Str("path", o.ModelPath).Msg("model load failed")
			mdl = bayes.New("unloaded")
		} else {
			log.Info().Str("path", o.ModelPath).Str("version", mdl.Version()).Msg("model loaded")
		}
		return mdl, mdl
	case ModelRemote:
		c := mlclient.New(o.ModelURL, o.ModelTimeout)
		return c, c
	default:
		return nil, nil
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Metrics returns the module registry owner, served on /metrics
func (m *Module) Metrics() *metrics.Metrics { return m.metrics }

// Warm replays stored reviews into the similarity index
func (m *Module) Warm(ctx context.Context) (int, error) {
	return m.svc.Warm(ctx, m.opts.WarmLimit)
}

// Sweep drops rate counters older than the configured retention
func (m *Module) Sweep(ctx context.Context) (int64, error) {
	return m.svc.Sweep(ctx, m.opts.KeepDays)
}
