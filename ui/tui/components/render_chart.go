package components

import (
	"fmt"

	"perflab/ui/tui/styles"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NodesChart plots materialized nodes per render pass.
type NodesChart struct {
	History []float64
	Width   int
	Height  int
}

func NewNodesChart(width, height int) *NodesChart {
	return &NodesChart{Width: width, Height: height}
}

func (c *NodesChart) Init() tea.Cmd {
	return nil
}

func (c *NodesChart) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return c, nil
}

func (c *NodesChart) Resize(w, h int) {
	c.Width = w
	c.Height = h
}

func (c *NodesChart) View() string {
	maxY := 1.0
	for _, v := range c.History {
		if v > maxY {
			maxY = v
		}
	}
	maxX := float64(len(c.History) - 1)
	if maxX < 1 {
		maxX = 1
	}

	// Ranges follow the data, so the chart is rebuilt on every view.
	// width, height, minX, maxX, minY, maxY
	w, h := minSize(c.Width, c.Height)
	chart := linechart.New(w, h, 0, maxX, 0, maxY*1.1)
	for i := 0; i < len(c.History)-1; i++ {
		chart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: c.History[i]},
			canvas.Float64Point{X: float64(i + 1), Y: c.History[i+1]},
		)
	}
	chart.DrawXYAxisAndLabel()

	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Materialized Nodes (max %.0f)", maxY)),
			chart.View(),
		),
	)
}

// ComputeSparkline shows compute time per pass.
type ComputeSparkline struct {
	History []float64
	Width   int
	Height  int
}

func NewComputeSparkline(width, height int) *ComputeSparkline {
	return &ComputeSparkline{Width: width, Height: height}
}

func (c *ComputeSparkline) Init() tea.Cmd {
	return nil
}

func (c *ComputeSparkline) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return c, nil
}

func (c *ComputeSparkline) Resize(w, h int) {
	c.Width = w
	c.Height = h
}

func (c *ComputeSparkline) View() string {
	w, h := minSize(c.Width, c.Height)
	sl := sparkline.New(w, h)
	for _, v := range c.History {
		sl.Push(v)
	}
	sl.Draw()

	last := 0.0
	if len(c.History) > 0 {
		last = c.History[len(c.History)-1]
	}
	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Compute Time (last %.0fus)", last)),
			sl.View(),
		),
	)
}

func minSize(w, h int) (int, int) {
	if w < 10 {
		w = 10
	}
	if h < 3 {
		h = 3
	}
	return w, h
}
