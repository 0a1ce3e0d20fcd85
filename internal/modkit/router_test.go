package modkit

import (
	"net/http"

	phttp "evidencegate/internal/platform/net/http"
)

// recRouter records calls against the router seam
type recRouter struct {
	routes []string
	mwLen  int
	paths  []string
}

func (f *recRouter) Get(path string, _ phttp.Handler)  { f.paths = append(f.paths, "GET "+path) }
func (f *recRouter) Post(path string, _ phttp.Handler) { f.paths = append(f.paths, "POST "+path) }
func (f *recRouter) Handle(path string, _ http.Handler) {
	f.paths = append(f.paths, "HANDLE "+path)
}
func (f *recRouter) Use(mw ...func(http.Handler) http.Handler) { f.mwLen += len(mw) }
func (f *recRouter) Group(fn func(phttp.Router))             { fn(f) }
func (f *recRouter) Route(p string, fn func(phttp.Router)) {
	f.routes = append(f.routes, p)
	fn(f)
}
func (f *recRouter) Mux() http.Handler { return http.NotFoundHandler() }
