// Package layout renders the frame around every screen: a header bar with
// the screen title and learner status, the body, and a footer bar with key
// hints and what the active screen is doing.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool   { return width < CompactWidthThreshold }
func IsCompactHeight(height int) bool { return height < CompactHeightThreshold }

// IsTooSmall reports whether the terminal cannot fit the frame.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// ContentHeight is what is left for the body between header and footer.
func ContentHeight(totalHeight int) int {
	return max(totalHeight-HeaderHeight-FooterHeight, 0)
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("The window is too small to practice.\n\nResize it to at least %d×%d\n(now %d×%d).",
		MinWidth, MinHeight, width, height)
	text := lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

// Status is the right-hand side of the header. Zero values are hidden.
type Status struct {
	User      string
	GoalDone  int
	GoalTotal int
}

func (st Status) render() string {
	var parts []string
	if st.GoalTotal > 0 {
		goal := lipgloss.NewStyle().Foreground(theme.Accent)
		if st.GoalDone >= st.GoalTotal {
			goal = goal.Bold(true)
		}
		parts = append(parts, goal.Render(fmt.Sprintf("🎯 %d/%d today", st.GoalDone, st.GoalTotal)))
	}
	if st.User != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.TextDim).Render(st.User))
	}
	return strings.Join(parts, "   ")
}

var barStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border).
	Padding(0, 1)

// bar lays out left and right in a bordered bar, right flush with the edge.
// The right side wins when both do not fit.
func bar(left, right string, width int) string {
	inner := max(width-4, 0)
	rw := lipgloss.Width(right)
	if lipgloss.Width(left)+rw+1 > inner {
		left = truncate(left, max(inner-rw-1, 0))
	}
	gap := max(inner-lipgloss.Width(left)-rw, 1)
	return barStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func truncate(s string, w int) string {
	return lipgloss.NewStyle().MaxWidth(w).Render(s)
}

// RenderHeader renders "Linguaku · <title>" and the learner status.
func RenderHeader(title string, status Status, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Linguaku")
	if title != "" {
		left += lipgloss.NewStyle().Foreground(theme.TextDim).Render(" · ") +
			lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	}
	return bar(left, status.render(), width)
}

// Footer is the bottom bar. Activity is a short note from the active
// screen, such as a recording indicator, shown on the right.
type Footer struct {
	Hints    []KeyHint
	Activity string
}

// RenderFooter renders the hints that fit, dropping trailing ones first.
func RenderFooter(f Footer, width int) string {
	right := ""
	if f.Activity != "" {
		right = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(f.Activity)
	}
	room := max(width-4-lipgloss.Width(right)-1, 0)

	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	left := ""
	for _, h := range f.Hints {
		part := keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		next := part
		if left != "" {
			next = left + "   " + part
		}
		if lipgloss.Width(next) > room {
			break
		}
		left = next
	}
	return bar(left, right, width)
}

// RenderFrame stacks header, body and footer into exactly height lines.
// A body taller than the space left is cut at the bottom.
func RenderFrame(header, content, footer string, width, height int) string {
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
