package components

import (
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/ui/theme"
)

// ContentWidth is the inner width screens lay their cards out in.
func ContentWidth(frameWidth int) int {
	return max(20, min(frameWidth-6, 72))
}

// Card wraps content in a rounded border at width cw.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 2).
		Render(content)
}

// TitledCard is a Card with a bold heading line.
func TitledCard(title, content string, cw int) string {
	head := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(title)
	return Card(head+"\n\n"+content, cw)
}

// Center places content in the middle of a width x height box.
func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// CenterTop centers content horizontally and keeps it at the top.
func CenterTop(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, content)
}
