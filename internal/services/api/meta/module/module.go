// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"evidencegate/internal/core/ingestion"
	modkit "evidencegate/internal/modkit"
	"evidencegate/internal/modkit/httpkit"
	"evidencegate/internal/modkit/module"
	"evidencegate/internal/modkit/repokit"
	str "evidencegate/internal/platform/strings"
	ingestmod "evidencegate/internal/services/api/ingestion/module"
	"evidencegate/internal/services/api/ingestion/domain"

	metahttp "evidencegate/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps      modkit.Deps
	b         modkit.Built
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)
	return &Module{deps: deps, b: b, startedAt: time.Now()}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	d := metahttp.Deps{
		ServiceName: "evidencegate-api",
		StartedAt:   m.startedAt,
		Registry:    m.registry,
	}
	if p, ok := m.deps.PG.(repokit.Pinger); ok {
		d.PG = p
	}
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, d) })
}

// registry prefers the ingestion module's ports so meta reports what is
// actually served
func (m *Module) registry() (*ingestion.Registry, string) {
	if p, ok := module.PortsAs[domain.RegistryPort](ingestmod.Name); ok {
		return p.Registry(), p.Backend()
	}
	return m.deps.Registry(), ingestmod.Backend(m.deps.Cfg)
}

// Ports implements the modkit.Module interface; meta exposes none
func (m *Module) Ports() any { return nil }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.b.Name }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }
