// evidencegate-audit drives the ingestion rule table through every allowed
// combination and reports rules that do not hold.
//
// Usage:
//
//	evidencegate-audit run [--format text|json|yaml] [--method ID] [--table methods.yaml]
//	evidencegate-audit methods [--table methods.yaml]
package main

import (
	"errors"
	"fmt"
	"os"

	"evidencegate/internal/core/version"
	"evidencegate/internal/platform/logger"
)

// errFindings makes the process exit 1 without printing usage
var errFindings = errors.New("audit found violations")

func main() {
	lo := logger.FromEnv()
	if lo.Service == "" {
		lo.Service = "evidencegate-audit"
	}
	lo.Version = version.For(lo.Service).Version
	lo.Writer = os.Stderr
	logger.Init(lo)

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
