// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/core/ingestion/audit"
	"evidencegate/internal/core/version"
	"evidencegate/internal/modkit/httpkit"
	"evidencegate/internal/modkit/repokit"
)

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time

	// PG is checked by /ready when set
	PG repokit.Pinger

	// Registry returns the served rule table and sealer backend
	Registry func() (*ingestion.Registry, string)
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/registry", h.registry)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"evidencegate-api"`
	Started string `json:"started"  example:"2026-10-01T13:00:00Z"`
	Now     string `json:"now"      example:"2026-10-01T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-01T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"evidencegate-api"`
	Started string `json:"started" example:"2026-10-01T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// RegistryResponse reports the served rule table
type RegistryResponse struct {
	TableVersion int               `json:"table_version" example:"1"`
	Methods      []string          `json:"methods"`
	Backend      string            `json:"sealer_backend" example:"ledger"`
	AuditOK      bool              `json:"audit_ok" example:"true"`
	Findings     int               `json:"audit_findings" example:"0"`
	Build        version.BuildInfo `json:"build"`
}

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.now().UTC().Format(time.RFC3339),
	}, nil
}

// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Failure 503 {object} ReadyResponse "a dependency failed"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	pg := ReadyCheck{Name: "pg", Status: "skipped"}
	if h.deps.PG != nil {
		pg.Status = "ok"
		if err := repokit.Ping(ctx, h.deps.PG); err != nil {
			pg.Status, pg.Error = "fail", err.Error()
		}
	}

	out := ReadyResponse{Status: "ok", Checks: []ReadyCheck{pg}, Now: h.now().UTC().Format(time.RFC3339)}
	if pg.Status == "fail" {
		out.Status = "fail"
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	return out, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := h.now().Sub(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}

// @Summary Rule table version and self audit
// @Tags Meta
// @Produce json
// @Success 200 {object} RegistryResponse "ok"
// @Router /meta/registry [get]
func (h *handlers) registry(_ *http.Request) (any, error) {
	reg, backend := h.deps.Registry()
	rep := audit.Run(reg, audit.Options{})
	ids := make([]string, 0, len(reg.Methods()))
	for _, m := range reg.Methods() {
		ids = append(ids, string(m.ID))
	}
	return RegistryResponse{
		TableVersion: reg.Version(),
		Methods:      ids,
		Backend:      backend,
		AuditOK:      rep.OK(),
		Findings:     len(rep.Findings),
		Build:        version.Info(),
	}, nil
}
