package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/tailbits/halbridge/internal/logging"
	"github.com/tailbits/halbridge/openapi"
)

func newOpenAPICmd() *cobra.Command {
	var (
		out  string
		lint bool
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Write the OpenAPI document of the routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logging.New(cmd.ErrOrStderr(), "warn", "text")
			if err != nil {
				return err
			}

			opts := []openapi.Option{openapi.WithLogger(log)}
			if !lint {
				opts = append(opts, openapi.SkipLint())
			}

			doc, err := openapi.New(newRouter(nil, log), opts...)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := json.Indent(&buf, doc, "", "  "); err != nil {
				return err
			}
			buf.WriteByte('\n')

			if out == "" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			return os.WriteFile(out, buf.Bytes(), 0o644)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&lint, "lint", true, "lint the document with the recommended ruleset")

	return cmd
}
