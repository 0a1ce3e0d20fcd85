// Package module defines the minimal contract for a modkit module and a
// bootstrap registry for the ports modules expose to each other
package module

import (
	phttp "evidencegate/internal/platform/net/http"
)

// Module is the surface main composes; it mirrors modkit.Module so port
// lookups do not import modkit
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
