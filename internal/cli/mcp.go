package cli

import (
	"os"
	"os/signal"
	"syscall"

	"perflab/internal/host"
	"perflab/internal/logging"
	"perflab/internal/mcpserver"

	"github.com/spf13/cobra"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the window calculator as MCP tools over stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout exposing
compute_visible_range, materialize_window and get_render_stats.
Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			// stdout carries the protocol.
			if err := logging.Setup(cfg.Log.Level, os.Stderr); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}

			var passes mcpserver.PassStore
			var sink host.Sink
			if store != nil {
				defer func() {
					if err := store.Close(); err != nil {
						logging.Errorf("close telemetry store: %v", err)
					}
				}()
				passes = store
				sink = store.Recorder
			}

			srv := mcpserver.NewServer(mcpserver.Config{
				ServerName:    "perflab",
				ServerVersion: version,
			}, cfg, passes, sink)

			if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			logging.Infof("MCP server stopped")
			return nil
		},
	}
}
