package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/analytics"
	"github.com/linguaku/linguaku/internal/ui/components"
	"github.com/linguaku/linguaku/internal/ui/theme"
)

const titleFull = `█   █ █▄ █ █▀▀ █ █ ▄▀▄ █▄▀ █ █
█▄▄ █ █ ▀█ █▄█ █▄█ █▀█ █ █ █▄█`

const titleCompact = "L · I · N · G · U · A · K · U"

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderGoalCard shows today's progress against the daily goal.
func renderGoalCard(g analytics.DailyGoal, loaded bool, cw int) string {
	if !loaded {
		return components.Card(theme.Hint.Render("Loading today's progress..."), cw)
	}

	var line string
	if g.Reached() {
		line = theme.SuccessText.Bold(true).Render(fmt.Sprintf("🎉 Daily goal reached! %d/%d practices today", g.Done, g.Goal))
	} else {
		line = lipgloss.NewStyle().Foreground(theme.Text).Render(
			fmt.Sprintf("🎯 %d/%d practices today · %d to go", g.Done, g.Goal, g.Remaining()))
	}
	bar := components.NewProgressBar("", float64(g.Percent)/100, true, cw-8)
	if g.Reached() {
		bar.Color = theme.Success
	}
	return components.Card(line+"\n"+bar.View(), cw)
}

const buttonWidth = 24

func renderMenu(m components.Menu, cw int, compact bool) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Primary).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Padding(0, 1)

	if !compact {
		selectedBtn = selectedBtn.Border(lipgloss.RoundedBorder()).BorderForeground(theme.Primary)
		normalBtn = normalBtn.Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border)
	}

	var buttons []string
	for i, item := range m.Items {
		if i == m.Selected {
			buttons = append(buttons, selectedBtn.Render("▸ "+item.Label))
		} else {
			buttons = append(buttons, normalBtn.Render(item.Label))
		}
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

func renderGreeting(name string, cw int) string {
	if name == "" {
		name = "there"
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Hi, %s! Ready to practice?", name))
}
