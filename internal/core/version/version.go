// Package version reports the build stamp of the running binary
package version

// BuildInfo describes a build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set with -ldflags "-X 'evidencegate/internal/core/version.version=v0.1.0'
// -X 'evidencegate/internal/core/version.commit=abcd' -X 'evidencegate/internal/core/version.date=2026-10-01'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the stamp for the API service
func Info() BuildInfo { return For("evidencegate-api") }

// For returns the stamp under another service name, for the CLI binaries
func For(service string) BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}
