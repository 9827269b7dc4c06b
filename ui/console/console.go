package console

import (
	"fmt"
	"io"
	"strings"

	"perflab/internal/host"
	"perflab/internal/output"
	"perflab/internal/window"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

const labelWidth = 22

// Print renders the report to the writer in a compact format.
func Print(w io.Writer, report output.Report) {
	fmt.Fprintf(w, "%s■ PERFLAB WINDOW REPORT%s %s(%s)%s\n", colorCyan, colorReset, colorDim, report.Mode, colorReset)

	for _, sec := range report.Sections {
		fmt.Fprintf(w, "%s─ %s%s\n", colorCyan, sec.Title, colorReset)

		for _, it := range sec.Items {
			label := it.Label
			if len(label) > labelWidth-2 {
				label = label[:labelWidth-5] + "..."
			}

			val := output.FormatValue(it)
			if len(val) > 25 {
				val = val[:22] + "..."
			}

			dots := strings.Repeat("·", labelWidth-len(label))
			fmt.Fprintf(w, "  %s%s %12s%s\n", label, colorCyan+dots+colorReset, val, statusMarker(it.Status))
		}
	}

	if report.Worst != "" {
		fmt.Fprintf(w, "%s─ Budget%s: %s%s%s\n\n", colorCyan, colorReset, colorFor(report.Worst), report.Worst, colorReset)
	}
}

// PrintItems lists the materialized items of a render instruction, one per
// line with its layout offset.
func PrintItems(w io.Writer, ri window.RenderInstruction, src window.Source) {
	for _, it := range ri.Items {
		fmt.Fprintf(w, "  %s%6d%s %-16s %s@%g%s\n", colorDim, it.Index, colorReset, src.Item(it.Index), colorDim, it.Offset, colorReset)
	}
	fmt.Fprintf(w, "%s─ %d of %d items, total extent %g%s\n", colorCyan, len(ri.Items), src.Len(), ri.TotalExtent, colorReset)
}

// PrintPasses lists recorded render passes, newest first.
func PrintPasses(w io.Writer, passes []host.Pass) {
	if len(passes) == 0 {
		fmt.Fprintf(w, "%sno passes recorded%s\n", colorDim, colorReset)
		return
	}
	fmt.Fprintf(w, "%s%6s  %-12s  %-8s  %6s  %10s  %9s%s\n",
		colorCyan, "SEQ", "TIME", "MODE", "NODES", "OFFSET", "COMPUTE", colorReset)
	for _, p := range passes {
		mode := "all"
		if p.Virtualized {
			mode = "window"
		}
		fmt.Fprintf(w, "%6d  %-12s  %-8s  %6d  %10.0f  %9s\n",
			p.Seq, p.RecordedAt.Format("15:04:05.000"), mode, p.Materialized, p.ScrollOffset, p.Compute)
	}
}

func statusMarker(status string) string {
	switch status {
	case "":
		return ""
	case "WARN":
		return fmt.Sprintf(" %s!%s", colorFor(status), colorReset)
	case "CRIT":
		return fmt.Sprintf(" %sX%s", colorFor(status), colorReset)
	case "OK":
		return fmt.Sprintf(" %s✓%s", colorFor(status), colorReset)
	default:
		return fmt.Sprintf(" %s%s%s", colorFor(status), status[:1], colorReset)
	}
}

func colorFor(status string) string {
	switch status {
	case "WARN":
		return colorYellow
	case "CRIT":
		return colorRed
	default:
		return colorGreen
	}
}
