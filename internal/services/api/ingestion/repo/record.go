package repo

import (
	"strings"
	"time"

	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/services/api/ingestion/domain"
)

func domainRecord(req ingestion.SealRequest, id string, at time.Time) domain.SealRecord {
	return domain.SealRecord{
		ID:                 id,
		TenantID:           req.TenantID,
		MethodID:           req.MethodID,
		Mode:               req.Mode,
		IdempotencyKey:     req.IdempotencyKey,
		PayloadHashSHA256:  strings.ToLower(req.PayloadHashSHA256),
		MetadataHashSHA256: strings.ToLower(req.MetadataHashSHA256),
		Metadata:           req.Metadata,
		SubmittedBy:        req.SubmittedBy,
		SealedAt:           at.UTC().Truncate(time.Second),
	}
}
