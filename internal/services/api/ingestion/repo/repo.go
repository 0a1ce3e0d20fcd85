// Package repo provides the seal ledger persistence
package repo

import (
	"context"
	"encoding/json"
	"time"

	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/modkit/repokit"
	perr "evidencegate/internal/platform/errors"
	"evidencegate/internal/platform/store"
	"evidencegate/internal/services/api/ingestion/domain"
)

// Repo is the ledger persistence surface
type Repo interface {
	// Insert writes rec unless (tenant_id, idempotency_key) is taken.
	// inserted is false when the key already existed.
	Insert(ctx context.Context, rec domain.SealRecord) (inserted bool, err error)
	ByKey(ctx context.Context, tenantID, key string) (domain.SealRecord, error)
	EnsureSchema(ctx context.Context) error
}

type (
	// PG is a Postgres implementation of the ledger repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS evidence_seals (
		evidence_id          TEXT        PRIMARY KEY,
		tenant_id            TEXT        NOT NULL,
		method_id            TEXT        NOT NULL,
		mode                 TEXT        NOT NULL,
		idempotency_key      TEXT        NOT NULL,
		payload_hash_sha256  CHAR(64)    NOT NULL,
		metadata_hash_sha256 CHAR(64)    NOT NULL,
		metadata             JSONB       NOT NULL DEFAULT '{}'::jsonb,
		submitted_by         TEXT        NOT NULL DEFAULT '',
		sealed_at            TIMESTAMPTZ NOT NULL,
		UNIQUE (tenant_id, idempotency_key)
	);
	CREATE INDEX IF NOT EXISTS evidence_seals_method_idx ON evidence_seals (tenant_id, method_id, sealed_at DESC);
`

// EnsureSchema creates the ledger table when missing
func (r *queries) EnsureSchema(ctx context.Context) error {
	_, err := r.q.Exec(ctx, schemaSQL)
	return perr.FromPostgres(err, "ensure ledger schema")
}

// Insert records one seal. Hashes are stored lower-cased.
func (r *queries) Insert(ctx context.Context, rec domain.SealRecord) (bool, error) {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode seal metadata")
	}
	const sql = `
		INSERT INTO evidence_seals (
			evidence_id, tenant_id, method_id, mode, idempotency_key,
			payload_hash_sha256, metadata_hash_sha256, metadata, submitted_by, sealed_at
		) VALUES ($1, $2, $3, $4, $5, lower($6), lower($7), $8::jsonb, $9, $10)
		ON CONFLICT (tenant_id, idempotency_key) DO NOTHING
	`
	n, err := store.ExecAffected(ctx, r.q, sql,
		rec.ID, rec.TenantID, string(rec.MethodID), string(rec.Mode), rec.IdempotencyKey,
		rec.PayloadHashSHA256, rec.MetadataHashSHA256, meta, rec.SubmittedBy, rec.SealedAt.UTC(),
	)
	if err != nil {
		return false, perr.FromPostgres(err, "insert seal %s", rec.ID)
	}
	return n == 1, nil
}

// ByKey loads the seal for an idempotency key
func (r *queries) ByKey(ctx context.Context, tenantID, key string) (domain.SealRecord, error) {
	const sql = `
		SELECT evidence_id, tenant_id, method_id, mode, idempotency_key,
		       payload_hash_sha256, metadata_hash_sha256, metadata, submitted_by, sealed_at
		FROM evidence_seals
		WHERE tenant_id = $1 AND idempotency_key = $2
	`
	rec, err := store.One(ctx, r.q, scanRecord, sql, tenantID, key)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.SealRecord{}, perr.WithField(perr.NotFoundf("no seal for key %s", key), "idempotency_key")
		}
		return domain.SealRecord{}, perr.FromPostgres(err, "load seal by key")
	}
	return rec, nil
}

func scanRecord(row store.Row) (domain.SealRecord, error) {
	var (
		rec          domain.SealRecord
		method, mode string
		meta         []byte
		sealedAt     time.Time
	)
	if err := row.Scan(&rec.ID, &rec.TenantID, &method, &mode, &rec.IdempotencyKey,
		&rec.PayloadHashSHA256, &rec.MetadataHashSHA256, &meta, &rec.SubmittedBy, &sealedAt); err != nil {
		return rec, err
	}
	rec.MethodID = ingestion.MethodID(method)
	rec.Mode = ingestion.Mode(mode)
	rec.SealedAt = sealedAt.UTC()
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
			return rec, perr.Wrap(err, perr.ErrorCodeDB, "decode seal metadata")
		}
	}
	return rec, nil
}
