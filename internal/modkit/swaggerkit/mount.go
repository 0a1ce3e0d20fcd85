package swaggerkit

import (
	"net/http"

	phttp "evidencegate/internal/platform/net/http"
)

// Mount serves the JSON document at /docs/doc.json and the UI under /docs/
// on r when enabled. r is usually the versioned API router.
func Mount(r phttp.Router, enabled bool, o Options) {
	if !enabled {
		return
	}
	docURL := o.BasePath + "/docs/doc.json"
	r.Get("/docs", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, o.BasePath+"/docs/index.html", http.StatusPermanentRedirect)
	})
	r.Get("/docs/doc.json", serveDocJSON(o))
	phttp.MountSwagger(r, true, docURL)
}
