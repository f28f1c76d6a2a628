package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routes in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := newRouter(nil, logrus.New())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERB\tPATTERN\tOPERATION\tSUMMARY")
			for _, op := range r.Operations() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.Method, op.Path, op.OperationID, op.Summary)
			}
			return w.Flush()
		},
	}
}
