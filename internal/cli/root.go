// Package cli wires the perflab commands: the interactive TUI, one-shot
// window reports, the MCP server and telemetry stats.
package cli

import (
	"fmt"

	"perflab/internal/config"
	"perflab/internal/host"
	"perflab/internal/logging"
	"perflab/internal/sysstats"
	"perflab/internal/telemetry"
	"perflab/ui/tui"

	"github.com/spf13/cobra"
)

var version = "dev" // set by the linker

// options holds flag values shared by every command.
type options struct {
	configPath string
}

// Execute runs the root command. main only has to handle the exit code.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds a fresh command tree, so tests never share flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "perflab",
		Short: "perflab scrolls huge lists by rendering only what is visible.",
		Long: `perflab computes which items of a fixed-extent list intersect the
viewport, materializes only those, and measures the difference against
rendering everything.

Running without a subcommand launches the interactive TUI.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	cmd.Version = version

	d := config.DefaultConfig()
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default is perflab.yaml in the user config dir or ./)")
	flags.Float64("item-extent", d.List.ItemExtent, "extent of one item in layout units")
	flags.Int("item-count", d.List.ItemCount, "number of items in the list")
	flags.Int("overscan", d.List.Overscan, "extra items materialized on each side of the window")
	flags.Float64("viewport-extent", d.List.ViewportExtent, "viewport extent in layout units")
	flags.Bool("virtualized", d.List.Virtualized, "start with windowing enabled")
	flags.Bool("telemetry", d.Telemetry.Enabled, "record render passes to DuckDB")
	flags.String("telemetry-dsn", d.Telemetry.DSN, "DuckDB DSN, empty for in-memory")
	flags.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-file", d.Log.File, "log file for the TUI, empty discards")

	cmd.AddCommand(newWindowCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))

	return cmd
}

func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(cmd.Flags(), opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore opens the telemetry store when it is enabled. A nil store with a
// nil error means telemetry is off.
func openStore(cmd *cobra.Command, cfg config.Config) (*telemetry.Store, error) {
	if !cfg.Telemetry.Enabled {
		return nil, nil
	}
	store, err := telemetry.OpenStore(cmd.Context(), cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("open telemetry store: %w", err)
	}
	return store, nil
}

func runTUI(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file or nowhere.
	closer, err := logging.OpenFile(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}

	var deps tui.Deps
	var sessionOpts []host.Option
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logging.Errorf("close telemetry store: %v", err)
			}
		}()
		deps.Store = store
		sessionOpts = append(sessionOpts, host.WithSink(store.Recorder))
	}

	session, err := host.NewSession(cfg.List, sessionOpts...)
	if err != nil {
		return err
	}

	if sampler, err := sysstats.NewProcessSampler(cmd.Context()); err != nil {
		logging.Warnf("process sampling disabled: %v", err)
	} else {
		deps.Sampler = sampler
	}

	logging.Infof("starting TUI: %d items of %g, overscan %d, telemetry=%t",
		cfg.List.ItemCount, cfg.List.ItemExtent, cfg.List.Overscan, store != nil)
	if err := tui.Start(session, cfg, deps); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
