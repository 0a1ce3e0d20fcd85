package domain

import (
	"time"

	"evidencegate/internal/core/ingestion"
)

// Sealer backends
const (
	BackendNone     = "none"
	BackendPlatform = "platform"
	BackendLedger   = "ledger"
)

// SealRecord is one row of the seal ledger
type SealRecord struct {
	ID                 string
	TenantID           string
	MethodID           ingestion.MethodID
	Mode               ingestion.Mode
	IdempotencyKey     string
	PayloadHashSHA256  string
	MetadataHashSHA256 string
	Metadata           map[string]any
	SubmittedBy        string
	SealedAt           time.Time
}

// Receipt renders the record as a seal receipt
func (r SealRecord) Receipt() ingestion.SealReceipt {
	return ingestion.SealReceipt{
		EvidenceID:         r.ID,
		State:              ingestion.StatusSealed,
		SealedAtUTC:        r.SealedAt.UTC().Format(time.RFC3339),
		PayloadHashSHA256:  r.PayloadHashSHA256,
		MetadataHashSHA256: r.MetadataHashSHA256,
		IdempotencyKey:     r.IdempotencyKey,
	}
}
