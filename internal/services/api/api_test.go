package api

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"evidencegate/internal/modkit/module"
	"evidencegate/internal/platform/config"
	phttp "evidencegate/internal/platform/net/http"
	kit "evidencegate/internal/platform/testkit"
)

func TestMountServesModules(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)

	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), Options{
		Config:        config.FromMap(map[string]string{"SEALER_BACKEND": "none"}),
		EnableSwagger: true,
	})

	for path, want := range map[string]string{
		"/api/v1/meta/health":       `"ok":true`,
		"/api/v1/meta/registry":     `"sealer_backend":"none"`,
		"/api/v1/ingestion/methods": `"FILE_UPLOAD"`,
		"/api/v1/docs/doc.json":     `"openapi"`,
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("%s status = %d %s", path, rec.Code, rec.Body)
		}
		kit.MustContain(t, rec.Body.String(), want)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/debug/pprof/", nil))
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("profiler mounted while disabled: %d", rec.Code)
	}
}
