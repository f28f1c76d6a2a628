package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/internal/config"
	"github.com/tailbits/halbridge/ipc"
)

type clientFlags struct {
	socket string
	addr   string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	def := config.Default().IPC
	cmd.Flags().StringVar(&f.socket, "socket", def.Socket, "unix socket of the host process")
	cmd.Flags().StringVar(&f.addr, "addr", def.Addr, "loopback address of the host process")
}

func (f *clientFlags) client() *ipc.Client {
	return ipc.NewClient(f.socket, f.addr)
}

func newCallCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "call VERB PATH [JSON]",
		Short: "Send one routed request to a running host process",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			verb, ok := halbridge.ParseVerb(args[0])
			if !ok {
				return fmt.Errorf("unsupported verb %q", args[0])
			}

			var data any
			if len(args) == 3 {
				if err := json.Unmarshal([]byte(args[2]), &data); err != nil {
					return fmt.Errorf("payload: %w", err)
				}
			}

			resp, err := flags.client().Do(cmd.Context(), verb, args[1], data)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if !resp.Ok() {
				return fmt.Errorf("%s: %s", resp.Status, resp.Error)
			}
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newEventsCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the status events of a running host process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			out, stop, err := flags.client().Events(ctx)
			if err != nil {
				return err
			}
			defer stop()

			for st := range out {
				line := []string{st.At.Format("15:04:05.000"), string(st.Kind)}
				if st.Path != "" {
					line = append(line, st.Path)
				}
				if st.Message != "" {
					line = append(line, st.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(line, "  "))
			}
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}
