// @title         evidencegate API
// @version       1
// @description   Ingestion method registry, draft validation and evidence sealing

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"evidencegate/internal/core/version"
	"evidencegate/internal/platform/config"
	"evidencegate/internal/platform/logger"
	phttp "evidencegate/internal/platform/net/http"
	"evidencegate/internal/platform/store"

	"evidencegate/internal/services/api"
	ingestdomain "evidencegate/internal/services/api/ingestion/domain"
	ingestmod "evidencegate/internal/services/api/ingestion/module"
)

func main() {
	b := version.Info()

	// bring up logging early
	lo := logger.FromEnv()
	if lo.Service == "" {
		lo.Service = b.Service
	}
	lo.Version = b.Version
	logger.Init(lo)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// Postgres is only opened for the ledger backend
	ledger := ingestmod.Backend(root) == ingestdomain.BackendLedger
	st, err := store.Open(ctx,
		store.Config{PG: store.PGFromEnv(root, ledger)},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_HOST / CORE_API_PORT)
	srv := phttp.NewServer(root)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	l.Info().Str("addr", srv.Addr()).Str("version", b.Version).Str("commit", b.Commit).Bool("ledger", ledger).Msg("listening")
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
