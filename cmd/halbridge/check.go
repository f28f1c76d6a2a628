package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tailbits/halbridge/model/conform"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that every registered model matches its schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := newRouter(nil, logrus.New())

			models := r.Models()
			if err := conform.CheckAll(r, models...); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d models match their schemas\n", len(models))
			return nil
		},
	}
}
