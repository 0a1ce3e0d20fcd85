package http

import (
	httpSwagger "github.com/swaggo/http-swagger"
)

// MountSwagger serves the swagger UI under /docs/ when enabled. docURL
// points at the JSON document the UI loads.
func MountSwagger(r Router, enabled bool, docURL string) {
	if !enabled {
		return
	}
	r.Handle("/docs/*", httpSwagger.Handler(httpSwagger.URL(docURL)))
}
