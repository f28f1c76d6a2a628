package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/events"
	"github.com/tailbits/halbridge/hal"
	"github.com/tailbits/halbridge/internal/config"
	"github.com/tailbits/halbridge/internal/logging"
	"github.com/tailbits/halbridge/ipc"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the data router on the IPC listener",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			status := events.NewChannel(64)
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			client, err := hal.NewClient(cfg.ClientConfig(log, status))
			if err != nil {
				return err
			}

			r := newRouter(client, log,
				halbridge.WithEvents(status),
				halbridge.WithMetrics(reg),
				halbridge.WithDispatchTimeout(cfg.Router.DispatchTimeout),
			)

			ln, err := ipc.Listen(cfg.IPC.Socket, cfg.IPC.Addr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.WithField("routes", len(r.Endpoints())).Info("host process ready")

			srv := ipc.NewServer(r,
				ipc.WithEvents(status),
				ipc.WithGatherer(reg),
				ipc.WithLogger(log),
			)
			return srv.Serve(ctx, ln)
		},
	}
}
