package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/internal/dev"
)

func (a *app) devCmd() *cobra.Command {
	var (
		port     int
		host     string
		noReload bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the preview server with hot reload",
		Long: `Start a development server that previews every component.

The server watches the source directory, recompiles on change and
reloads connected browsers. Compile failures are shown as a banner
until the next successful build.

Examples:
  wcdk dev
  wcdk dev --port=8080
  wcdk dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Dev.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Dev.Host = host
			}
			if noReload {
				cfg.Dev.HotReload = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			fmt.Fprint(a.stdout, banner)
			a.info("Sources: %s", cfg.SourcePath())
			a.info("Preview: %s", cfg.DevURL())
			fmt.Fprintln(a.stdout)

			server, err := dev.NewServer(dev.ServerOptions{
				Config: cfg,
				Logger: a.logger(cfg),
				OnBuildComplete: func(result *build.Result, err error) {
					switch {
					case err != nil:
						a.warn("Build failed: %v", err)
					case len(result.Failures) > 0:
						a.warn("%d component(s) failed to compile", len(result.Failures))
					default:
						a.success("Compiled %d component(s)", len(result.Modules))
					}
				},
				OnReload: func(clients int) {
					if clients > 0 {
						a.info("Reloaded %d browser(s)", clients)
					}
				},
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout)
			a.info("Shutting down...")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from wcdk.yaml)")
	cmd.Flags().StringVar(&host, "host", "", "Host to bind to (default from wcdk.yaml)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Disable file watching and browser reload")

	return cmd
}
