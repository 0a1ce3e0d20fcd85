package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"evidencegate/internal/platform/config"
	pnet "evidencegate/internal/platform/net"
	phttp "evidencegate/internal/platform/net/http"
	kit "evidencegate/internal/platform/testkit"
)

type echoIn struct {
	Name string `json:"name" validate:"required,min=2"`
}

func newMux(t *testing.T, o StackOptions, mount func(Router)) http.Handler {
	t.Helper()
	mux := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(mux), CommonStack(o), mount)
	return mux
}

func do(h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMountAPIV1AndSugar(t *testing.T) {
	h := newMux(t, StackOptions{}, func(api Router) {
		MountUnder(api, "/echo", nil, func(r Router) {
			Get(r, "/{id}", func(req *http.Request) (any, error) {
				return map[string]string{"id": Param(req, "id")}, nil
			})
			Post(r, "/fail", func(*http.Request) (any, error) {
				return nil, errors.New("boom")
			})
			PostJSON(r, "/", func(_ *http.Request, in echoIn) (any, error) {
				return Created(in), nil
			})
		})
	})

	rec := do(h, http.MethodGet, "/api/v1/echo/abc", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d body=%s", rec.Code, rec.Body)
	}
	got := kit.DecodeJSON[struct {
		Data map[string]string `json:"data"`
	}](t, rec.Body)
	if got.Data["id"] != "abc" {
		t.Fatalf("param = %v", got.Data)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}

	rec = do(h, http.MethodPost, "/api/v1/echo/", `{"name":"ok"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("post status = %d body=%s", rec.Code, rec.Body)
	}

	rec = do(h, http.MethodPost, "/api/v1/echo/", `{"name":"x"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("validation status = %d body=%s", rec.Code, rec.Body)
	}
	w := kit.DecodeJSON[pnet.Wire](t, rec.Body)
	if w.Field != "name" {
		t.Fatalf("field = %q", w.Field)
	}

	rec = do(h, http.MethodPost, "/api/v1/echo/fail", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("error status = %d", rec.Code)
	}
}

func TestCommonStackTenant(t *testing.T) {
	var seen string
	h := newMux(t, StackOptions{TenantHeader: "X-Org"}, func(api Router) {
		api.Group(func(g Router) {
			g.Use(RequireTenant())
			Post(g, "/write", func(r *http.Request) (any, error) {
				seen = pnet.TenantID(r.Context())
				return NoContent(), nil
			})
		})
		Get(api, "/read", func(*http.Request) (any, error) { return OK("fine"), nil })
	})

	if rec := do(h, http.MethodGet, "/api/v1/read", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("read without tenant = %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/v1/write", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("write without tenant = %d", rec.Code)
	}
	rec := do(h, http.MethodPost, "/api/v1/write", "", map[string]string{"X-Org": "acme"})
	if rec.Code != http.StatusNoContent || seen != "acme" {
		t.Fatalf("write with tenant = %d seen=%q", rec.Code, seen)
	}
	rec = do(h, http.MethodPost, "/api/v1/write", "", map[string]string{"X-Org": "bad tenant"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed tenant = %d", rec.Code)
	}
}

func TestStackFromConfig(t *testing.T) {
	o := StackFromConfig(config.FromMap(map[string]string{
		"CORE_API_CORS_ORIGINS": "https://a.example, https://b.example",
		"CORE_API_SLOW_REQUEST": "2s",
	}))
	if len(o.CORSOrigins) != 2 || o.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", o.CORSOrigins)
	}
	if o.TenantHeader != "X-Tenant-ID" || o.ActorHeader != "" || o.Slow.String() != "2s" {
		t.Fatalf("opts = %+v", o)
	}

	o = StackFromConfig(config.FromMap(map[string]string{"CORE_API_ACTOR_HEADER": "X-Forwarded-User"}))
	if o.ActorHeader != "X-Forwarded-User" {
		t.Fatalf("actor header = %q", o.ActorHeader)
	}
}

func TestCommonStackActorIsOptIn(t *testing.T) {
	var actor string
	routes := func(api Router) {
		Get(api, "/who", func(r *http.Request) (any, error) {
			actor = pnet.Actor(r.Context())
			return OK(actor), nil
		})
	}
	hdr := map[string]string{"X-Actor-ID": "mallory", "X-Forwarded-User": "alice"}

	h := newMux(t, StackFromConfig(config.FromMap(nil)), routes)
	if rec := do(h, http.MethodGet, "/api/v1/who", "", hdr); rec.Code != http.StatusOK || actor != "" {
		t.Fatalf("default stack took actor %q (status %d)", actor, rec.Code)
	}

	h = newMux(t, StackOptions{ActorHeader: "X-Forwarded-User"}, routes)
	if rec := do(h, http.MethodGet, "/api/v1/who", "", hdr); rec.Code != http.StatusOK || actor != "alice" {
		t.Fatalf("configured actor = %q (status %d)", actor, rec.Code)
	}
}

func TestMountAPITrimsSlashes(t *testing.T) {
	mux := chi.NewRouter()
	MountAPI(phttp.AdaptChi(mux), "/v2/", nil, func(api Router) {
		Get(api, "/ping", func(*http.Request) (any, error) { return "pong", nil })
	})
	if rec := do(mux, http.MethodGet, "/api/v2/ping", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
