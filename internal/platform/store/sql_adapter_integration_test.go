//go:build integration_pg

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"evidencegate/internal/platform/testkit/pgtc"
)

func TestAdapterAgainstContainer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	s, err := Open(ctx, Config{PG: PGConfig{Enabled: true, URL: pgtc.Start(t), ConnectRetries: 10, AppName: "store-test"}})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Guard(ctx); err != nil {
		t.Fatalf("guard: %v", err)
	}

	if _, err := s.PG.Exec(ctx, `CREATE TABLE notes (tenant_id text NOT NULL, body text NOT NULL)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("tenant GUC is transaction scoped", func(t *testing.T) {
		err := RunInTenant(ctx, s.PG, "acme", func(ctx context.Context, q RowQuerier) error {
			got, err := Scalar[string](ctx, q, "SELECT current_setting('app.tenant_id', true)")
			if err != nil {
				return err
			}
			if got != "acme" {
				t.Fatalf("app.tenant_id = %q", got)
			}
			_, err = q.Exec(ctx, "INSERT INTO notes VALUES (current_setting('app.tenant_id'), $1)", "hello")
			return err
		})
		if err != nil {
			t.Fatalf("tx: %v", err)
		}
		n, err := Scalar[int64](ctx, s.PG, "SELECT count(*) FROM notes WHERE tenant_id = 'acme'")
		if err != nil || n != 1 {
			t.Fatalf("count = %d %v", n, err)
		}
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.PG.Tx(ctx, func(q RowQuerier) error {
			if _, err := q.Exec(ctx, "INSERT INTO notes VALUES ('acme', 'lost')"); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
		n, _ := Scalar[int64](ctx, s.PG, "SELECT count(*) FROM notes WHERE body = 'lost'")
		if n != 0 {
			t.Fatalf("rolled back row persisted")
		}
	})

	t.Run("helpers", func(t *testing.T) {
		bodies, err := Many(ctx, s.PG, func(r Row) (string, error) {
			var b string
			return b, r.Scan(&b)
		}, "SELECT body FROM notes ORDER BY body")
		if err != nil || len(bodies) != 1 || bodies[0] != "hello" {
			t.Fatalf("many = %v %v", bodies, err)
		}
		n, err := ExecAffected(ctx, s.PG, "UPDATE notes SET body = 'bye'")
		if err != nil || n != 1 {
			t.Fatalf("affected = %d %v", n, err)
		}
		if _, err := Scalar[string](ctx, s.PG, "SELECT body FROM notes WHERE false"); err == nil {
			t.Fatalf("expected not found")
		}
	})
}
