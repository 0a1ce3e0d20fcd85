package domain

import (
	"context"

	"evidencegate/internal/core/ingestion"
)

// SealPort seals one checked draft. Implementations: the platform client,
// the Postgres ledger.
type SealPort interface {
	Seal(ctx context.Context, req ingestion.SealRequest) (ingestion.SealReceipt, error)
}

// ServicePort is the interface implemented by the ingestion service
type ServicePort interface {
	Methods(ctx context.Context) []MethodSummary
	Method(ctx context.Context, id string) (MethodView, error)
	FieldVisible(ctx context.Context, id, field string) VisibleOutput
	Validate(ctx context.Context, in ValidateInput) StepOutput
	Advance(ctx context.Context, in AdvanceInput) AdvanceOutput
	SealCheck(ctx context.Context, in SealCheckInput) SealCheckOutput
	Seal(ctx context.Context, in SealInput) (SealOutput, error)
	Audit(ctx context.Context, q AuditQuery) (AuditOutput, error)
}

// RegistryPort is what other modules read from ingestion
type RegistryPort interface {
	Registry() *ingestion.Registry
	Backend() string
}
