package ingestion

import (
	"fmt"
	"strings"
)

// FieldKind selects the check applied to a required field
type FieldKind string

// Field kinds
const (
	KindText        FieldKind = "text"
	KindMinText     FieldKind = "min_text"
	KindScopeTarget FieldKind = "scope_target"
	KindDigest      FieldKind = "digest_sha256"
	KindAttachments FieldKind = "attachments"
)

// Field names the registry and the seal flow refer to directly
const (
	FieldDatasetType       = "dataset_type"
	FieldDeclaredScope     = "declared_scope"
	FieldScopeTarget       = "scope_target"
	FieldWhyThisEvidence   = "why_this_evidence"
	FieldAttestationNotes  = "attestation_notes"
	FieldAttachmentsMin1   = "attachments_min_1"
	FieldPayloadDigest     = "payload_digest_sha256"
	FieldExternalReference = "external_reference_id"
	FieldReceivedAtUTC     = "received_at_utc"
	FieldSourceSystemName  = "source_system_name"
	FieldExportJobID       = "export_job_id"
	FieldConnectorID       = "connector_id"
	FieldSyncRunID         = "sync_run_id"
	FieldSubmissionChannel = "submission_channel"
	FieldStatus            = "status"
	FieldTrustLevel        = "trust_level"
	FieldReviewStatus      = "review_status"
	FieldSourceSystem      = "source_system"
)

// Field is one entry of the field catalog
type Field struct {
	Name    string    `yaml:"-" json:"name"`
	Kind    FieldKind `yaml:"kind" json:"kind"`
	Label   string    `yaml:"label" json:"label"`
	Message string    `yaml:"message" json:"message"`
	Min     int       `yaml:"min" json:"min,omitempty"`
	Example string    `yaml:"example" json:"example,omitempty"`
}

func (f Field) validate() error {
	if strings.TrimSpace(f.Label) == "" || strings.TrimSpace(f.Message) == "" {
		return fmt.Errorf("label and message are required")
	}
	switch f.Kind {
	case KindText, KindScopeTarget:
		if !present(f.Example) {
			return fmt.Errorf("example is required")
		}
	case KindMinText:
		if f.Min <= 0 {
			return fmt.Errorf("min must be positive for %s", f.Kind)
		}
		if !minText(f.Example, f.Min) {
			return fmt.Errorf("example is shorter than %d characters", f.Min)
		}
	case KindDigest:
		if !IsSHA256Hex(f.Example) {
			return fmt.Errorf("example is not a hex SHA-256")
		}
	case KindAttachments:
		if f.Example != "" {
			return fmt.Errorf("attachment fields take no example")
		}
	default:
		return fmt.Errorf("unknown kind %q", f.Kind)
	}
	return nil
}
