package cli

import (
	"errors"
	"fmt"

	"perflab/internal/host"
	"perflab/internal/logging"
	"perflab/internal/output"
	"perflab/ui/console"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize render passes recorded in the telemetry store",
		Long: `Opens the DuckDB telemetry store named by --telemetry-dsn and prints
the aggregate of every recorded pass followed by the most recent ones.
An in-memory store is always empty, so point it at a file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if err := logging.Setup(cfg.Log.Level, cmd.ErrOrStderr()); err != nil {
				return err
			}
			if !cfg.Telemetry.Enabled {
				return errors.New("telemetry is disabled")
			}
			if cfg.Telemetry.DSN == "" {
				logging.Warnf("no telemetry DSN set, reading an empty in-memory store")
			}

			store, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := store.Summary(cmd.Context())
			if err != nil {
				return fmt.Errorf("summarize passes: %w", err)
			}
			recent, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list recent passes: %w", err)
			}

			out := cmd.OutOrStdout()
			report := output.BuildReport(host.Frame{}, nil, &summary, nil)
			if sec := report.SectionByID(output.SectionTelemetry); sec != nil {
				console.Print(out, output.Report{Sections: []output.Section{*sec}, Mode: "telemetry"})
			}
			console.PrintPasses(out, recent)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent passes to list (max 100)")
	return cmd
}
