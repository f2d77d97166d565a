// Package home is the dashboard shown after sign-in.
package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/analytics"
	"github.com/linguaku/linguaku/internal/generation"
	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/screens/env"
	historyscreen "github.com/linguaku/linguaku/internal/screens/history"
	"github.com/linguaku/linguaku/internal/screens/materials"
	"github.com/linguaku/linguaku/internal/screens/progress"
	"github.com/linguaku/linguaku/internal/screens/settings"
	"github.com/linguaku/linguaku/internal/ui/components"
	"github.com/linguaku/linguaku/internal/ui/layout"
	"github.com/linguaku/linguaku/internal/ui/theme"
)

type dashboardMsg struct {
	gen      uint64
	name     string
	goal     analytics.DailyGoal
	goalOnly bool // today's count could not be loaded
	err      error
}

type signedOutMsg struct{}

// HomeScreen shows today's goal progress and the main menu.
type HomeScreen struct {
	env    *env.Env
	menu   components.Menu
	name   string
	goal   analytics.DailyGoal
	loaded bool
	errMsg string
	gen    generation.Counter
}

var (
	_ screen.Screen         = (*HomeScreen)(nil)
	_ screen.StatusProvider = (*HomeScreen)(nil)
	_ screen.Resumer        = (*HomeScreen)(nil)
	_ screen.Closer         = (*HomeScreen)(nil)
)

// New creates a HomeScreen.
func New(e *env.Env) *HomeScreen {
	h := &HomeScreen{env: e}
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			s := build()
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "PRACTICE", Action: push(func() screen.Screen { return materials.New(e) })},
		{Label: "PROGRESS", Action: push(func() screen.Screen { return progress.New(e) })},
		{Label: "HISTORY", Action: push(func() screen.Screen { return historyscreen.New(e) })},
		{Label: "SETTINGS", Action: push(func() screen.Screen { return settings.New(e) })},
		{Label: "SIGN OUT", Action: h.signOut},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads the dashboard when returning from a practice or settings screen.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Close() { h.gen.Invalidate() }

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Status() layout.Status {
	st := layout.Status{User: h.name}
	if h.loaded {
		st.GoalDone, st.GoalTotal = h.goal.Done, h.goal.Goal
	}
	return st
}

func (h *HomeScreen) load() tea.Cmd {
	gen := h.gen.Invalidate()
	e := h.env
	return func() tea.Msg {
		ctx, cancel := e.Context()
		defer cancel()

		msg := dashboardMsg{gen: gen}
		if u, err := e.Session.User(ctx); err == nil {
			msg.name = u.Name
		}
		goal, err := e.Prefs.DailyGoal(ctx)
		if err != nil {
			e.Log().Warn("read daily goal", "error", err)
		}

		// Today's count comes from the practice log, not the history list.
		records, err := e.API.PracticeHistory(ctx)
		if err != nil {
			msg.err = err
			msg.goalOnly = true
			msg.goal = analytics.GoalProgress(0, goal)
			return msg
		}
		msg.goal = analytics.GoalProgress(analytics.TodayCount(records, e.Clock()), goal)
		return msg
	}
}

func (h *HomeScreen) signOut() tea.Cmd {
	e := h.env
	return func() tea.Msg {
		ctx, cancel := e.Context()
		defer cancel()
		if err := e.Auth.Logout(ctx); err != nil {
			e.Log().Error("sign out", "error", err)
		}
		return signedOutMsg{}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		if msg.gen != h.gen.Current() {
			return h, nil
		}
		if msg.err != nil && env.NeedsLogin(msg.err) && h.env.Login != nil {
			return h, h.toLogin()
		}
		h.name = msg.name
		h.goal = msg.goal
		h.loaded = true
		h.errMsg = ""
		if msg.goalOnly {
			h.errMsg = env.Describe(msg.err)
		}
		return h, nil

	case signedOutMsg:
		return h, h.toLogin()

	case tea.KeyMsg:
		if msg.String() == "r" {
			return h, h.load()
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) toLogin() tea.Cmd {
	if h.env.Login == nil {
		return tea.Quit
	}
	s := h.env.Login()
	return func() tea.Msg { return router.ResetScreenMsg{Screen: s} }
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height+layout.HeaderHeight+layout.FooterHeight) || layout.IsCompactWidth(width)
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Render(RenderMascot(MascotFor(h.goal))))
	}
	sections = append(sections, renderGreeting(h.name, cw))
	sections = append(sections, renderGoalCard(h.goal, h.loaded, cw))
	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Render(theme.ErrorText.Render(h.errMsg)))
	}
	sections = append(sections, renderMenu(h.menu, cw, compact))

	sep := "\n\n"
	if compact {
		sep = "\n"
	}
	return components.Center(strings.Join(sections, sep), width, height)
}
