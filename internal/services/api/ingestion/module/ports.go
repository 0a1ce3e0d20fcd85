package module

import (
	"evidencegate/internal/core/ingestion"
	ingestsvc "evidencegate/internal/services/api/ingestion/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type registryPort struct {
	svc     *ingestsvc.Svc
	backend string
}

// Registry returns the rule table the module serves
func (a registryPort) Registry() *ingestion.Registry { return a.svc.Registry() }

// Backend names the configured sealer
func (a registryPort) Backend() string { return a.backend }
