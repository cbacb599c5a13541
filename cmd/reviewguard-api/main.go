// Command reviewguard-api serves the review screening API
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"reviewguard/internal/modkit/httpkit"
	"reviewguard/internal/modkit/repokit"
	"reviewguard/internal/platform/config"
	"reviewguard/internal/platform/logger"
	phttp "reviewguard/internal/platform/net/http"
	"reviewguard/internal/platform/store"
	"reviewguard/internal/services/api"
	"reviewguard/internal/services/reviews/repo"
)

const appName = "reviewguard-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	revCfg := root.Prefix("REVIEWS_")
	l := logger.Get()

	st, err := store.Open(ctx, store.ConfigFrom(root, appName), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	if st.PG != nil {
		if err := repo.EnsureSchema(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("postgres schema")
		}
	}
	if st.CH != nil {
		if err := repo.NewAuditor(st.CH).EnsureTable(ctx); err != nil {
			l.Panic().Err(err).Msg("clickhouse audit table")
		}
	}

	srv := phttp.NewServer(apiCfg)
	a := api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Stack:          httpkit.StackFromConfig(apiCfg),
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		EnableMetrics:  apiCfg.MayBool("METRICS", true),
	})

	if n, err := a.Reviews.Warm(ctx); err != nil {
		l.Error().Err(err).Msg("similarity warm failed")
	} else if n > 0 {
		l.Info().Int("reviews", n).Msg("similarity index warmed")
	}

	go sweep(ctx, a, revCfg.MayDuration("SWEEP_EVERY", time.Hour))

	l.Info().Str("addr", srv.Addr()).Msg("reviewguard api listening")
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

// sweep drops stale day counters every interval until ctx ends
func sweep(ctx context.Context, a *api.API, every time.Duration) {
	if every <= 0 {
		return
	}
	log := logger.Named("sweeper")
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := a.Reviews.Sweep(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("counter sweep failed")
				continue
			}
			log.Debug().Int64("removed", n).Msg("counter sweep")
		}
	}
}
