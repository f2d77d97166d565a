package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	Color       color.Color
}

// NewProgressBar creates a progress bar filled with the secondary color.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
		Color:       theme.Secondary,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := max(p.Width-labelWidth-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)
	empty := barWidth - filled

	fill := p.Color
	if fill == nil {
		fill = theme.Secondary
	}

	result += lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", filled))
	result += lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", empty))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

// Bar is one column of a BarChart.
type Bar struct {
	Label string
	Value int // 0..100
	Color color.Color
	Note  string // printed above the column, e.g. the value
}

// BarChart renders vertical bars of the given height. Values are
// percentages of the chart height.
func BarChart(bars []Bar, height int) string {
	if height < 1 {
		height = 1
	}
	const colWidth = 5
	rows := make([]string, 0, height+2)

	var notes strings.Builder
	for _, b := range bars {
		notes.WriteString(lipgloss.NewStyle().Width(colWidth).Align(lipgloss.Center).
			Foreground(theme.TextDim).Render(b.Note))
	}
	rows = append(rows, notes.String())

	for level := height; level >= 1; level-- {
		var line strings.Builder
		for _, b := range bars {
			filled := (b.Value*height + 99) / 100
			cell := "     "
			if b.Value > 0 && filled >= level {
				cell = " " + lipgloss.NewStyle().Foreground(b.Color).Render("███") + " "
			}
			line.WriteString(cell)
		}
		rows = append(rows, line.String())
	}

	var labels strings.Builder
	for _, b := range bars {
		labels.WriteString(lipgloss.NewStyle().Width(colWidth).Align(lipgloss.Center).
			Foreground(theme.Text).Render(b.Label))
	}
	rows = append(rows, labels.String())
	return strings.Join(rows, "\n")
}
