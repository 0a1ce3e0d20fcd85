package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the ingestion methods in the rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tLABEL\tHASH\tIDEMPOTENCY\tFORBIDDEN\n")
			for _, m := range reg.Methods() {
				key := "-"
				if m.Idempotency != nil && m.Idempotency.Enforced {
					key = m.Idempotency.Key
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					m.ID, m.Label, m.HashBehavior.ComputedBy, key, strings.Join(m.ForbiddenFields, ","))
			}
			fmt.Fprintf(tw, "\ntable version %d, %d methods\n", reg.Version(), len(reg.Methods()))
			return tw.Flush()
		},
	}
}
