package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/core/ingestion/audit"
	"evidencegate/internal/platform/logger"
)

type runFlags struct {
	format  string
	methods []string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the audit harness; exits 1 on any finding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "output format: text, json or yaml")
	cmd.Flags().StringSliceVarP(&f.methods, "method", "m", nil, "only these method ids (repeatable)")
	return cmd
}

func runAudit(cmd *cobra.Command, f runFlags) error {
	reg, err := loadRegistry(cmd)
	if err != nil {
		return err
	}
	var opts audit.Options
	for _, id := range f.methods {
		mid := ingestion.MethodID(id)
		if reg.GetMethodConfig(mid) == nil {
			return fmt.Errorf("%s: %s", ingestion.ErrTextInvalidMethod, id)
		}
		opts.Methods = append(opts.Methods, mid)
	}

	rep := audit.Run(reg, opts)
	logger.Named("audit").Info().
		Int("combinations", rep.Combinations).
		Int("checks", rep.Checks).
		Int("findings", len(rep.Findings)).
		Msg("audit finished")

	if err := writeReport(cmd.OutOrStdout(), f.format, rep); err != nil {
		return err
	}
	if !rep.OK() {
		return errFindings
	}
	return nil
}

func writeReport(w io.Writer, format string, rep audit.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		for _, fd := range rep.Findings {
			fmt.Fprintln(w, fd.String())
		}
		status := "OK"
		if !rep.OK() {
			status = "FAIL"
		}
		_, err := fmt.Fprintf(w, "%s: %d combinations, %d checks, %d findings\n",
			status, rep.Combinations, rep.Checks, len(rep.Findings))
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
