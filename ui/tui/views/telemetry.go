package views

import (
	"fmt"
	"strings"

	"perflab/internal/output"
	"perflab/ui/tui/state"
	"perflab/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

type TelemetryView struct{}

func (v TelemetryView) Render(s state.AppState, props ViewProps) string {
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		props.SpinnerView,
		styles.TitleStyle.Render("Render Telemetry"),
		fmt.Sprintf(" Last Update: %s", s.LastUpdate.Format("15:04:05")),
	)

	report := output.BuildReport(s.Frame, s.Checks, s.Summary, s.Sample)

	renderSection := func(sec *output.Section) string {
		var b strings.Builder
		for _, item := range sec.Items {
			valStr := output.FormatValue(item)
			if item.Status != "" {
				valStr = ColorForStatus(item.Status).Render(fmt.Sprintf("%s [%s]", valStr, item.Status))
			}
			fmt.Fprintf(&b, "%-18s : %s\n", item.Label, valStr)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	card := func(id, title string) string {
		sec := report.SectionByID(id)
		if sec == nil {
			return ""
		}
		return styles.CardStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Bold(true).Render(title),
				renderSection(sec),
			),
		)
	}

	charts := lipgloss.JoinHorizontal(lipgloss.Top, props.ChartView, props.SparkView)
	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		card(output.SectionWindow, "Window"),
		card(output.SectionBudget, "Frame Budget • "+ColorForStatus(report.Worst).Render(report.Worst)),
	)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		card(output.SectionTelemetry, "Recorded Passes"),
		card(output.SectionProcess, "Process"),
	)

	footer := "Press 'b' to go back"
	if s.Err != nil {
		footer = fmt.Sprintf("Error: %v • %s", s.Err, footer)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		charts,
		row1,
		row2,
		lipgloss.NewStyle().PaddingLeft(2).Foreground(styles.Subtle).Render(footer),
	)
}
