package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestHeaderShowsStatus(t *testing.T) {
	h := RenderHeader("Home", Status{User: "Ana", GoalDone: 2, GoalTotal: 5}, 100)
	assert.Contains(t, h, "Linguaku")
	assert.Contains(t, h, "Home")
	assert.Contains(t, h, "2/5 today")
	assert.Contains(t, h, "Ana")
	assert.Equal(t, HeaderHeight, lipgloss.Height(h))
}

func TestHeaderHidesEmptyStatus(t *testing.T) {
	h := RenderHeader("Sign In", Status{}, 100)
	assert.NotContains(t, h, "today")
}

func TestFooterShowsActivity(t *testing.T) {
	f := RenderFooter(Footer{
		Hints:    []KeyHint{{Key: "Space", Description: "Stop"}},
		Activity: "● Recording",
	}, 80)
	assert.Contains(t, f, "Stop")
	assert.Contains(t, f, "● Recording")
	assert.Equal(t, FooterHeight, lipgloss.Height(f))
}

func TestFooterDropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{
		{Key: "Enter", Description: "Analyze"},
		{Key: "R", Description: "Record again"},
		{Key: "Esc", Description: strings.Repeat("x", 70)},
	}
	f := RenderFooter(Footer{Hints: hints, Activity: "Score 66"}, 80)
	assert.Contains(t, f, "Record again")
	assert.NotContains(t, f, "xxxx")
	assert.Contains(t, f, "Score 66")
	assert.Equal(t, FooterHeight, lipgloss.Height(f))
}

func TestFrameFillsHeight(t *testing.T) {
	header := RenderHeader("Home", Status{}, 80)
	footer := RenderFooter(Footer{Hints: []KeyHint{{Key: "Esc", Description: "Back"}}}, 80)

	frame := RenderFrame(header, "body", footer, 80, 30)
	assert.Equal(t, 30, lipgloss.Height(frame))
	assert.Contains(t, frame, "Esc")

	tall := strings.Repeat("line\n", 60)
	frame = RenderFrame(header, tall, footer, 80, 30)
	assert.Equal(t, 30, lipgloss.Height(frame))
	assert.Contains(t, frame, "Back")
}

func TestMinSizeMessage(t *testing.T) {
	msg := RenderMinSizeMessage(60, 20)
	assert.Contains(t, msg, "80×24")
	assert.Contains(t, msg, "60×20")
}

func TestSizeThresholds(t *testing.T) {
	assert.True(t, IsTooSmall(79, 40))
	assert.True(t, IsTooSmall(100, 23))
	assert.False(t, IsTooSmall(80, 24))
	assert.True(t, IsCompactWidth(99))
	assert.False(t, IsCompactHeight(30))
	assert.Equal(t, 18, ContentHeight(24))
	assert.Equal(t, 0, ContentHeight(3))
}
