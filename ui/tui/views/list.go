package views

import (
	"fmt"
	"math"
	"strings"

	"perflab/ui/tui/components"
	"perflab/ui/tui/state"
	"perflab/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// ListChromeRows is the number of terminal rows the list page spends on
// everything but items.
const ListChromeRows = 5

type ListView struct{}

// Render paints every materialized item, then shows the rows that fall in
// the viewport. With windowing off that is the whole collection, which is
// the cost this page makes visible.
func (v ListView) Render(s state.AppState, props ViewProps) string {
	f := s.Frame
	mode := "RENDER ALL"
	if f.Virtualized {
		mode = "WINDOWED"
	}
	header := styles.HeaderStyle.Width(props.Width).Render(fmt.Sprintf("Virtual List • %s", mode))

	rows := props.Rows
	if rows < 1 {
		rows = 1
	}

	items := f.Instruction.Items
	painted := make([]string, len(items))
	for i, it := range items {
		label := fmt.Sprintf("Item #%d", it.Index+1)
		if props.Source != nil {
			label = props.Source.Item(it.Index)
		}
		style := styles.RowStyle
		switch {
		case it.Index == s.Selected:
			style = styles.SelectedRowStyle
		case it.Index%2 == 1:
			style = styles.RowAltStyle
		}
		line := fmt.Sprintf("%6d  %-16s @%.0f", it.Index, label, it.Offset)
		painted[i] = zone.Mark(ItemZoneID(it.Index), style.Width(props.Width-4).Render(line))
	}

	first := 0
	if f.ItemExtent > 0 {
		first = int(math.Floor(props.ScrollOffset / f.ItemExtent))
	}
	visible := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		idx := first + r
		if idx >= f.ItemCount {
			break
		}
		pos := -1
		if len(items) > 0 {
			pos = idx - items[0].Index
		}
		if pos < 0 || pos >= len(painted) {
			visible = append(visible, styles.RowStyle.Render("…"))
			continue
		}
		visible = append(visible, painted[pos])
	}
	for len(visible) < rows {
		visible = append(visible, "")
	}

	bar := components.Scrollbar{
		Height:   rows,
		Total:    f.Instruction.TotalExtent,
		Viewport: f.Viewport.ViewportExtent,
		Offset:   props.ScrollOffset,
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(props.Width-2).Render(strings.Join(visible, "\n")),
		bar.View(),
	)

	status := fmt.Sprintf("range %s • %d nodes • pass #%d • %s • offset %.0f/%.0f",
		f.Range, len(items), f.Seq, f.Compute, props.ScrollOffset, f.Instruction.TotalExtent)
	if s.Err != nil {
		status = ColorForStatus("CRIT").Render(s.Err.Error())
	}

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("#777")).Render(status),
		lipgloss.NewStyle().PaddingLeft(1).Render(props.HelpView),
	))
}

func ItemZoneID(index int) string {
	return fmt.Sprintf("item_%d", index)
}
