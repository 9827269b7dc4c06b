package views

import (
	"fmt"
	"math"

	"perflab/ui/tui/state"
	"perflab/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// MenuOptions are the menu entries in cursor order.
var MenuOptions = []string{
	"Virtual List (10k rows)",
	"Render Telemetry & Budget",
	"Render Pass Console",
}

type MenuView struct{}

func (v MenuView) Render(s state.AppState, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("PERFLAB // LIST WINDOWING")

	var menuItems []string
	listStartY := 6

	for i, option := range MenuOptions {
		dist := math.Abs(float64(i) - props.AnimCursor)
		selectionStrength := 0.0
		if dist < 1.0 {
			selectionStrength = 1.0 - dist
		}

		itemCenterY := listStartY + (i * 3) + 1
		mouseDistY := math.Abs(float64(props.MouseY - itemCenterY))

		var borderColor lipgloss.TerminalColor = styles.BaseColor
		if mouseDistY < 10 && 1.0-(mouseDistY/10.0) > 0.5 {
			borderColor = lipgloss.Color("#aaa")
		}
		if selectionStrength > 0.1 || i == props.MenuCursor {
			borderColor = styles.BrandColor
		}

		popOut := int(selectionStrength * 2)

		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1).
			MarginLeft(2 + popOut).
			Width(40)

		if i == props.MenuCursor {
			boxStyle = boxStyle.Bold(true).Foreground(lipgloss.Color("#FFF"))
		} else {
			boxStyle = boxStyle.Foreground(lipgloss.Color("#AAA"))
		}

		text := fmt.Sprintf("%02d. %s", i+1, option)
		menuItems = append(menuItems, zone.Mark(MenuZoneID(i), boxStyle.Render(text)))
	}

	menuList := lipgloss.JoinVertical(lipgloss.Left, menuItems...)

	menuContent := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(2).Foreground(styles.BrandColor).Render("RENDER LAB"),
		copyStyle.Render("Scroll a large list with and without windowing."),
		menuList,
	)

	footer := lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#333")).
		Render("\n[↑/↓] Navigate • [Enter] Select • [Q] Quit")

	body := lipgloss.JoinVertical(lipgloss.Left,
		menuBoxStyle.Render(menuContent),
		footer,
	)

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

func MenuZoneID(i int) string {
	return fmt.Sprintf("menu_%d", i)
}

var (
	menuBoxStyle = lipgloss.NewStyle().
			Padding(1, 0).
			MarginTop(1)

	copyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Italic(true).
			MarginBottom(1).
			PaddingLeft(2)
)
