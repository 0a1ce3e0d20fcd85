package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/modkit/repokit"
	perr "evidencegate/internal/platform/errors"
	"evidencegate/internal/platform/logger"
	"evidencegate/internal/platform/store"
)

// Ledger seals drafts into the local Postgres ledger. A repeated
// idempotency key returns the first receipt when the payload matches and
// is refused when it does not.
type Ledger struct {
	tx    repokit.TxRunner
	repos repokit.Binder[Repo]
	log   logger.Logger

	now   func() time.Time
	newID func() string
}

// NewLedger binds the ledger to a transaction runner
func NewLedger(tx repokit.TxRunner, repos repokit.Binder[Repo]) *Ledger {
	if repos == nil {
		repos = NewPG()
	}
	return &Ledger{
		tx:    tx,
		repos: repos,
		log:   *logger.Named("ledger"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// EnsureSchema creates the ledger table
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	return l.repos.Bind(l.tx).EnsureSchema(ctx)
}

// Seal writes the request inside a tenant scoped transaction
func (l *Ledger) Seal(ctx context.Context, req ingestion.SealRequest) (ingestion.SealReceipt, error) {
	rec := domainRecord(req, l.newID(), l.now())
	var out ingestion.SealReceipt
	err := store.RunInTenant(ctx, l.tx, req.TenantID, func(ctx context.Context, q store.RowQuerier) error {
		r := repokit.MustBind(l.repos, q)
		inserted, err := r.Insert(ctx, rec)
		if err != nil {
			return err
		}
		if inserted {
			out = rec.Receipt()
			return nil
		}
		prev, err := r.ByKey(ctx, req.TenantID, req.IdempotencyKey)
		if err != nil {
			return err
		}
		if !strings.EqualFold(prev.PayloadHashSHA256, req.PayloadHashSHA256) {
			return perr.WithField(
				perr.DuplicateKeyf("idempotency key %s was sealed with a different payload", req.IdempotencyKey),
				"idempotency_key")
		}
		l.log.Debug().Str("evidence_id", prev.ID).Str("idempotency_key", req.IdempotencyKey).Msg("replayed seal")
		out = prev.Receipt()
		return nil
	})
	if err != nil {
		return ingestion.SealReceipt{}, perr.WithOp(err, "ledger.Seal")
	}
	return out, nil
}
