package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"evidencegate/internal/core/ingestion"
	"evidencegate/internal/core/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "evidencegate-audit",
		Short:         "Check the ingestion method rule table",
		Version:       version.For("evidencegate-audit").Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.PersistentFlags().String("table", "", "rule table YAML to check instead of the embedded one")
	root.AddCommand(newRunCmd(), newMethodsCmd())
	return root
}

// loadRegistry returns the embedded table or the one named by --table
func loadRegistry(cmd *cobra.Command) (*ingestion.Registry, error) {
	path, _ := cmd.Flags().GetString("table")
	if path == "" {
		return ingestion.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	reg, err := ingestion.Load(data)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", path, err)
	}
	return reg, nil
}
