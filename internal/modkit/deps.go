// Package modkit provides module wiring and core deps
package modkit

import (
	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/platform/config"
	"evidencegate/internal/platform/logger"
	"evidencegate/internal/platform/store"
)

// Deps holds core dependencies passed to modules
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// PG is nil unless the ledger backend is configured
	PG store.TxRunner

	// Methods is the method registry; nil means ingestion.Default()
	Methods *ingestion.Registry
}

// Registry returns the configured registry or the embedded default
func (d Deps) Registry() *ingestion.Registry {
	if d.Methods != nil {
		return d.Methods
	}
	return ingestion.Default()
}

// HasLedger reports whether a Postgres ledger is wired
func (d Deps) HasLedger() bool { return d.PG != nil }
