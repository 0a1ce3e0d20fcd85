// Package module wires ingestion into the API using modkit
package module

import (
	"context"
	"time"

	"evidencegate/internal/adapters/platform"
	modkit "evidencegate/internal/modkit"
	"evidencegate/internal/modkit/httpkit"
	"evidencegate/internal/platform/config"
	str "evidencegate/internal/platform/strings"
	"evidencegate/internal/services/api/ingestion/domain"
	ingesthttp "evidencegate/internal/services/api/ingestion/http"
	ingestrepo "evidencegate/internal/services/api/ingestion/repo"
	ingestsvc "evidencegate/internal/services/api/ingestion/service"
)

// Name is the module and port registry name
const Name = "ingestion"

// schemaTimeout bounds the ledger table check at startup
const schemaTimeout = 15 * time.Second

// Module implements the ingestion module
type Module struct {
	deps    modkit.Deps
	b       modkit.Built
	backend string

	svc   ingestsvc.Service
	ports domain.RegistryPort
}

// Backend reads SEALER_BACKEND: none, platform or ledger
func Backend(cfg config.Conf) string {
	return cfg.MayEnum("SEALER_BACKEND", domain.BackendNone,
		domain.BackendNone, domain.BackendPlatform, domain.BackendLedger)
}

// New constructs the ingestion module. It panics when the configured
// backend cannot be built.
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName(Name), modkit.WithPrefix("/ingestion")}, opts...)...)

	backend := Backend(deps.Cfg)
	svc := ingestsvc.New(ingestsvc.Options{
		Registry: deps.Registry(),
		Sealer:   newSealer(deps, backend),
	})

	m := &Module{deps: deps, b: b, backend: backend, svc: svc}
	m.ports = registryPort{svc: svc, backend: backend}
	deps.Log.Info().Str("backend", backend).Int("methods", len(svc.Registry().Methods())).Msg("ingestion module ready")
	return m
}

func newSealer(deps modkit.Deps, backend string) domain.SealPort {
	switch backend {
	case domain.BackendPlatform:
		return platform.NewClient(platform.FromConfig(deps.Cfg))
	case domain.BackendLedger:
		if !deps.HasLedger() {
			panic("ingestion: SEALER_BACKEND=ledger needs Postgres")
		}
		l := ingestrepo.NewLedger(deps.PG, ingestrepo.NewPG())
		ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
		defer cancel()
		if err := l.EnsureSchema(ctx); err != nil {
			panic("ingestion: ledger schema: " + err.Error())
		}
		return l
	}
	return nil
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { ingesthttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }
