// Package domain holds DTOs and ports for the ingestion API
package domain

import (
	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/core/ingestion/audit"
)

// AttachmentIn is a stored file reference sent with a draft
type AttachmentIn struct {
	FileName string `json:"file_name" validate:"required,max=512" example:"suppliers-2026.csv"`
	SHA256   string `json:"sha256"    validate:"required,sha256hex" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"` //nolint:lll
}

// Attachments converts the wire list for the registry
func Attachments(in []AttachmentIn) []ingestion.Attachment {
	out := make([]ingestion.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, ingestion.Attachment{FileName: a.FileName, SHA256: a.SHA256})
	}
	return out
}

// ValidateInput asks for the field check of one step. Unknown method ids
// and steps are reported in the result, not as binding errors.
type ValidateInput struct {
	MethodID    string         `json:"method_id"   validate:"max=64" example:"FILE_UPLOAD"`
	Step        int            `json:"step"        example:"1"`
	Draft       map[string]any `json:"draft"`
	Attachments []AttachmentIn `json:"attachments" validate:"max=500,dive"`
}

// StepOutput is the field check result
type StepOutput struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// AdvanceInput asks whether the wizard may leave CurrentStep
type AdvanceInput struct {
	MethodID    string         `json:"method_id"    validate:"max=64" example:"API_PUSH_DIGEST"`
	CurrentStep int            `json:"current_step" example:"1"`
	Draft       map[string]any `json:"draft"`
	Attachments []AttachmentIn `json:"attachments"  validate:"max=500,dive"`
}

// AdvanceOutput is the gating result
type AdvanceOutput struct {
	CanProceed bool `json:"can_proceed"`
}

// SealCheckInput asks whether a draft may be sealed. Mode defaults to production.
type SealCheckInput struct {
	MethodID    string         `json:"method_id"   validate:"max=64" example:"MANUAL_ENTRY"`
	Mode        string         `json:"mode"        validate:"omitempty,oneof=production simulation" example:"production"`
	Draft       map[string]any `json:"draft"`
	Attachments []AttachmentIn `json:"attachments" validate:"max=500,dive"`
}

// SealCheckOutput is the seal gate result
type SealCheckOutput struct {
	CanSeal bool `json:"can_seal"`
}

// SealInput is a seal request. Channel defaults to INTERNAL_USER.
type SealInput struct {
	MethodID    string         `json:"method_id"   validate:"required,max=64" example:"API_PUSH_DIGEST"`
	Mode        string         `json:"mode"        validate:"omitempty,oneof=production simulation" example:"production"`
	Channel     string         `json:"channel"     validate:"omitempty,oneof=INTERNAL_USER SUPPLIER_SUBMISSION SYSTEM_INTEGRATION"` //nolint:lll
	Draft       map[string]any `json:"draft"       validate:"required"`
	Attachments []AttachmentIn `json:"attachments" validate:"max=500,dive"`
}

// SealOutput is the checked receipt plus what was sent
type SealOutput struct {
	Receipt        ingestion.SealReceipt `json:"receipt"`
	MethodID       ingestion.MethodID    `json:"method_id"`
	IdempotencyKey string                `json:"idempotency_key"`
	Metadata       map[string]any        `json:"metadata"`
}

// VisibleOutput reports whether a field control is shown
type VisibleOutput struct {
	MethodID ingestion.MethodID `json:"method_id"`
	Field    string             `json:"field"`
	Visible  bool               `json:"visible"`
}

// MethodSummary is the list view of a method
type MethodSummary struct {
	ID          ingestion.MethodID `json:"id"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	ComputedBy  string             `json:"hash_computed_by"`
	Idempotent  bool               `json:"idempotent"`
}

// MethodView is the full rule record with field labels resolved
type MethodView struct {
	ingestion.MethodConfig
	Fields map[string]FieldView `json:"fields"`
}

// FieldView is the display data for a required field
type FieldView struct {
	Label   string `json:"label"`
	Message string `json:"message"`
	Example string `json:"example,omitempty"`
}

// AuditQuery narrows an audit run
type AuditQuery struct {
	Method string
}

// AuditOutput wraps the harness report
type AuditOutput struct {
	OK     bool         `json:"ok"`
	Report audit.Report `json:"report"`
}
