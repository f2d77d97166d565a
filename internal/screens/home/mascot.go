package home

import (
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/analytics"
	"github.com/linguaku/linguaku/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota
	MascotCelebrating               // daily goal reached
	MascotNudge                     // nothing practiced today
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ~♪~ │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ ~♪~ │
└─╥═╥─┘
  ╚═╝`

const mascotNudge = `┌─────┐
│ ◉ ◉ │ ?
│  ○  │
│ ~♪~ │
└─────┘`

// MascotFor picks the variant for today's goal progress.
func MascotFor(g analytics.DailyGoal) MascotVariant {
	switch {
	case g.Goal > 0 && g.Reached():
		return MascotCelebrating
	case g.Done == 0:
		return MascotNudge
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.Accent
	case MascotNudge:
		art = mascotNudge
		fg = theme.Secondary
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
