package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/branched-services/go-pi/pkg/estimator"
)

func newMethodsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the supported methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tSTOCHASTIC\tVISUALIZABLE")
			for _, m := range estimator.Methods() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m, yesNo(m.Stochastic()), yesNo(m.Visualizable()))
			}
			return w.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
