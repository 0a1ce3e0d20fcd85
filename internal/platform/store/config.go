package store

import (
	"time"

	"evidencegate/internal/platform/config"
)

// Config aggregates backend configuration
type Config struct {
	PG PGConfig
}

// PGConfig configures Postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	AppName     string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// ConnectRetries bounds the startup ping loop; PingTimeout bounds each ping
	ConnectRetries int
	PingTimeout    time.Duration
}

// PGFromEnv reads SERVICE_PGSQL_*. URL is required when enabled.
func PGFromEnv(c config.Conf, enabled bool) PGConfig {
	pc := c.Prefix("SERVICE_PGSQL_")
	out := PGConfig{
		Enabled:        enabled,
		AppName:        pc.MayString("APP_NAME", "evidencegate"),
		MaxConns:       int32(pc.MayInt("MAX_CONNS", 8)),
		LogSQL:         pc.MayBool("LOG_SQL", false),
		SlowQueryMs:    pc.MayInt("SLOW_MS", 200),
		ConnectRetries: pc.MayInt("CONNECT_RETRIES", 20),
		PingTimeout:    pc.MayDuration("PING_TIMEOUT", 3*time.Second),
	}
	if enabled {
		out.URL = pc.MustString("DBURL")
	}
	return out
}
