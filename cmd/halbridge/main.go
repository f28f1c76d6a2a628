// Command halbridge runs the host process: it serves the data router to the
// presentation process and documents its routes.
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/hal"
	"github.com/tailbits/halbridge/service"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "halbridge",
		Short:        "Bridge a hypermedia project API to a sandboxed presentation process",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")

	root.AddCommand(
		newServeCmd(&configPath),
		newRoutesCmd(),
		newOpenAPICmd(),
		newCheckCmd(),
		newCallCmd(),
		newEventsCmd(),
	)

	return root
}

// newRouter registers every data service. f may be nil when the router is
// only inspected.
func newRouter(f hal.Fetcher, log logrus.FieldLogger, opts ...halbridge.RouterOption) *halbridge.Router {
	r := halbridge.NewRouter(append([]halbridge.RouterOption{halbridge.WithLogger(log)}, opts...)...)
	service.Register(r, service.All(service.Deps{Fetcher: f, Log: log})...)
	return r
}
