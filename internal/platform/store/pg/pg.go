// Package pg opens a pgxpool and reports statements to an optional tracer
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG is a pool with an optional tracer
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig // seam

// Open parses cfg.URL, applies mut to the pool config and creates the pool.
// The pool connects lazily; call Ping to check the server.
func Open(ctx context.Context, cfg Config, tracer QueryTracer, mut func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if mut != nil {
		mut(pcfg)
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Ping checks the server through the pool without tracing
func (p *PG) Ping(ctx context.Context) error { return p.Pool.Ping(ctx) }

// Emit reports one statement to the tracer, if any. Only the argument count
// is reported; values may carry tenant data.
func (p *PG) Emit(ctx context.Context, sql string, nargs int, start time.Time, err error) {
	if p == nil || p.Tracer == nil {
		return
	}
	elapsed := time.Since(start)
	p.Tracer.OnQuery(ctx, QueryEvent{
		SQL:     sql,
		NArgs:   nargs,
		Elapsed: elapsed,
		Err:     err,
		Slow:    p.SlowMs > 0 && elapsed >= time.Duration(p.SlowMs)*time.Millisecond,
	})
}

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
