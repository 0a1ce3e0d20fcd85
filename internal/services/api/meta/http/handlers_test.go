package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"evidencegate/internal/core/ingestion"
	phttp "evidencegate/internal/platform/net/http"
	kit "evidencegate/internal/platform/testkit"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type envelope[T any] struct {
	StatusCode int `json:"status_code"`
	Data       T   `json:"data"`
}

func serve(d Deps, path string) *httptest.ResponseRecorder {
	if d.Registry == nil {
		d.Registry = func() (*ingestion.Registry, string) { return ingestion.Default(), "none" }
	}
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	return rec
}

func TestHealthAndService(t *testing.T) {
	started := time.Now().Add(-time.Minute)
	rec := serve(Deps{ServiceName: "evidencegate-api", StartedAt: started}, "/health")
	h := kit.DecodeJSON[envelope[HealthResponse]](t, rec.Body)
	if rec.Code != stdhttp.StatusOK || !h.Data.OK || h.Data.Service != "evidencegate-api" {
		t.Fatalf("health = %d %+v", rec.Code, h)
	}

	rec = serve(Deps{ServiceName: "evidencegate-api", StartedAt: started}, "/service")
	s := kit.DecodeJSON[envelope[ServiceResponse]](t, rec.Body)
	if s.Data.Uptime < 59 {
		t.Fatalf("uptime = %d", s.Data.Uptime)
	}
}

func TestReady(t *testing.T) {
	rec := serve(Deps{}, "/ready")
	r := kit.DecodeJSON[envelope[ReadyResponse]](t, rec.Body)
	if rec.Code != stdhttp.StatusOK || r.Data.Status != "ok" || r.Data.Checks[0].Status != "skipped" {
		t.Fatalf("no pg = %d %+v", rec.Code, r.Data)
	}

	rec = serve(Deps{PG: pingFunc(func(context.Context) error { return nil })}, "/ready")
	r = kit.DecodeJSON[envelope[ReadyResponse]](t, rec.Body)
	if rec.Code != stdhttp.StatusOK || r.Data.Checks[0].Status != "ok" {
		t.Fatalf("pg up = %d %+v", rec.Code, r.Data)
	}

	rec = serve(Deps{PG: pingFunc(func(context.Context) error { return errors.New("refused") })}, "/ready")
	r = kit.DecodeJSON[envelope[ReadyResponse]](t, rec.Body)
	if rec.Code != stdhttp.StatusServiceUnavailable || r.Data.Status != "fail" || r.Data.Checks[0].Error != "refused" {
		t.Fatalf("pg down = %d %+v", rec.Code, r.Data)
	}
}

func TestVersionAndRegistry(t *testing.T) {
	rec := serve(Deps{}, "/version")
	kit.MustContain(t, rec.Body.String(), `"service":"evidencegate-api"`)

	rec = serve(Deps{Registry: func() (*ingestion.Registry, string) { return ingestion.Default(), "ledger" }}, "/registry")
	reg := kit.DecodeJSON[envelope[RegistryResponse]](t, rec.Body)
	if reg.Data.Backend != "ledger" || !reg.Data.AuditOK || len(reg.Data.Methods) != len(ingestion.KnownMethods) {
		t.Fatalf("registry = %+v", reg.Data)
	}
}
