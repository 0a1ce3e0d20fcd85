package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gowebpki/jcs"
)

// ErrDigest is returned when a payload digest cannot be produced
var ErrDigest = errors.New("ingestion: payload digest unavailable")

// IsSHA256Hex reports whether s is exactly 64 hex characters
func IsSHA256Hex(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// PayloadDigest returns the SHA-256 hex of the evidence payload. External
// methods supply their own digest; server methods hash the RFC 8785 canonical
// JSON of the stored attachments or of the step 2 payload fields.
func PayloadDigest(m *MethodConfig, d Draft, atts []Attachment) (string, error) {
	if m == nil {
		return "", fmt.Errorf("%w: no method", ErrDigest)
	}
	if m.HashBehavior.ComputedBy == ComputedByExternal {
		s, _ := d[FieldPayloadDigest].(string)
		if !IsSHA256Hex(s) {
			return "", fmt.Errorf("%w: %s is not a hex SHA-256", ErrDigest, FieldPayloadDigest)
		}
		return strings.ToLower(s), nil
	}

	if m.HashBehavior.RequiresAttachments {
		if len(atts) == 0 {
			return "", fmt.Errorf("%w: %s requires attachments", ErrDigest, m.ID)
		}
		sorted := make([]Attachment, len(atts))
		copy(sorted, atts)
		for i := range sorted {
			sorted[i].SHA256 = strings.ToLower(sorted[i].SHA256)
		}
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].SHA256 != sorted[j].SHA256 {
				return sorted[i].SHA256 < sorted[j].SHA256
			}
			return sorted[i].FileName < sorted[j].FileName
		})
		return canonicalHash(map[string]any{
			"method_id":   m.ID,
			"attachments": sorted,
		})
	}

	payload := make(map[string]any, len(m.Step2Required))
	for _, name := range m.Step2Required {
		if v, ok := d[name]; ok {
			payload[name] = v
		}
	}
	return canonicalHash(map[string]any{
		"method_id": m.ID,
		"payload":   payload,
	})
}

// MetadataDigest returns the SHA-256 hex of the canonical JSON of meta
func MetadataDigest(meta map[string]any) (string, error) {
	return canonicalHash(meta)
}

func canonicalHash(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("ingestion: marshal for digest: %w", err)
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("ingestion: canonicalize for digest: %w", err)
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
