package repokit

import (
	"context"
	"fmt"
	"time"
)

type guarder interface {
	Guard(context.Context) error
}

// Pinger answers readiness probes
type Pinger interface{ Ping(context.Context) error }

// PingTimeout bounds Ping when ctx carries no deadline
const PingTimeout = 5 * time.Second

// Ping calls p.Ping under PingTimeout unless ctx already has a deadline
func Ping(ctx context.Context, p Pinger) error {
	if p == nil {
		return fmt.Errorf("nil dependency")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, PingTimeout)
		defer cancel()
	}
	return p.Ping(ctx)
}

// MustPing panics if a dependency doesn't answer Ping
func MustPing(ctx context.Context, name string, p Pinger) {
	if err := Ping(ctx, p); err != nil {
		panic(fmt.Sprintf("%s ping failed: %v", name, err))
	}
}

// MustGuard runs st.Guard and panics on any error, for service startup
func MustGuard(ctx context.Context, st guarder) {
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
