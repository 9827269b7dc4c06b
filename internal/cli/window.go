package cli

import (
	"context"

	"perflab/internal/budget"
	"perflab/internal/host"
	"perflab/internal/logging"
	"perflab/internal/output"
	"perflab/internal/sysstats"
	"perflab/internal/window"
	"perflab/ui/console"

	"github.com/spf13/cobra"
)

func newWindowCmd(opts *options) *cobra.Command {
	var (
		offset  float64
		list    bool
		process bool
	)

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Compute one render pass and print its report",
		Long: `Computes the visible range for a single scroll offset using the
configured list, evaluates it against the frame budget and prints the
result. With --list every materialized item is printed with its offset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if err := logging.Setup(cfg.Log.Level, cmd.ErrOrStderr()); err != nil {
				return err
			}

			session, err := host.NewSession(cfg.List)
			if err != nil {
				return err
			}
			if err := session.Scroll(offset); err != nil {
				return err
			}
			f, _, err := session.Frame()
			if err != nil {
				return err
			}
			logging.Debugf("window %s at offset %g", f.Range, offset)

			var sample *sysstats.Sample
			if process {
				if sample, err = sampleProcess(cmd.Context()); err != nil {
					logging.Warnf("process sample unavailable: %v", err)
				}
			}

			out := cmd.OutOrStdout()
			checks := budget.Evaluate(f.Pass(), cfg.Budget)
			console.Print(out, output.BuildReport(f, checks, nil, sample))
			if list {
				console.PrintItems(out, f.Instruction, window.IndexedSource{N: cfg.List.ItemCount})
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&offset, "offset", 0, "scroll offset in layout units")
	cmd.Flags().BoolVar(&list, "list", false, "print every materialized item")
	cmd.Flags().BoolVar(&process, "process", false, "include a process resource sample")
	return cmd
}

func sampleProcess(ctx context.Context) (*sysstats.Sample, error) {
	sampler, err := sysstats.NewProcessSampler(ctx)
	if err != nil {
		return nil, err
	}
	sample, err := sampler.Sample(ctx)
	if err != nil {
		return nil, err
	}
	return &sample, nil
}
