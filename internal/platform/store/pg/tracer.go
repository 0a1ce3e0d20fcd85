package pg

import (
	"context"
	"strings"
	"time"

	"evidencegate/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one executed statement
type QueryEvent struct {
	SQL     string
	NArgs   int
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives statement events
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements at debug, slow ones at warn and failures at error.
// It logs regardless of the root level since SQL logging is opted into.
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Debug()
	switch {
	case ev.Err != nil:
		evt = z.log.Error().Err(ev.Err)
	case ev.Slow:
		evt = z.log.Warn()
	}
	evt.Dur("elapsed", ev.Elapsed).
		Bool("slow", ev.Slow).
		Int("nargs", ev.NArgs).
		Str("sql", compact(ev.SQL)).
		Msg("pg query")
}

// compact collapses whitespace runs to one space
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
