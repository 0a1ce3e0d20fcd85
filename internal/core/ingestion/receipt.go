package ingestion

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrReceiptContract marks a seal response that arrived but cannot be trusted
var ErrReceiptContract = errors.New("ingestion: seal receipt contract violated")

// SealRequest is what is sent to the sealing side for one draft
type SealRequest struct {
	TenantID           string         `json:"tenant_id"`
	MethodID           MethodID       `json:"method_id"`
	Mode               Mode           `json:"mode"`
	IdempotencyKey     string         `json:"idempotency_key"`
	PayloadHashSHA256  string         `json:"payload_hash_sha256"`
	MetadataHashSHA256 string         `json:"metadata_hash_sha256"`
	Metadata           map[string]any `json:"metadata"`
	Attachments        []Attachment   `json:"attachments,omitempty"`
	SubmittedBy        string         `json:"submitted_by,omitempty"`
}

// SealReceipt is what the sealing side returns for a sealed evidence record
type SealReceipt struct {
	EvidenceID         string `json:"evidence_id,omitempty"`
	State              string `json:"state"`
	SealedAtUTC        string `json:"sealed_at_utc"`
	PayloadHashSHA256  string `json:"payload_hash_sha256"`
	MetadataHashSHA256 string `json:"metadata_hash_sha256"`
	IdempotencyKey     string `json:"idempotency_key,omitempty"`
}

// CheckSealReceipt fails when any required receipt field is missing or
// malformed, or when the state is not SEALED. Transport success alone never
// makes a seal valid.
func CheckSealReceipt(r SealReceipt) error {
	var problems []string
	if r.SealedAtUTC == "" {
		problems = append(problems, "sealed_at_utc missing")
	} else if _, err := time.Parse(time.RFC3339, r.SealedAtUTC); err != nil {
		problems = append(problems, "sealed_at_utc is not RFC 3339")
	}
	switch {
	case r.PayloadHashSHA256 == "":
		problems = append(problems, "payload_hash_sha256 missing")
	case !IsSHA256Hex(r.PayloadHashSHA256):
		problems = append(problems, "payload_hash_sha256 is not a hex SHA-256")
	}
	switch {
	case r.MetadataHashSHA256 == "":
		problems = append(problems, "metadata_hash_sha256 missing")
	case !IsSHA256Hex(r.MetadataHashSHA256):
		problems = append(problems, "metadata_hash_sha256 is not a hex SHA-256")
	}
	if r.State != StatusSealed {
		problems = append(problems, fmt.Sprintf("state is %q, want %s", r.State, StatusSealed))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrReceiptContract, strings.Join(problems, "; "))
	}
	return nil
}
