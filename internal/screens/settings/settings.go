// Package settings edits the profile, password and daily goal.
package settings

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/catalog"
	"github.com/linguaku/linguaku/internal/generation"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/prefs"
	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/ui/components"
	"github.com/linguaku/linguaku/internal/ui/layout"
	"github.com/linguaku/linguaku/internal/ui/theme"
)

type mode int

const (
	modeMenu mode = iota
	modeGoal
	modeName
	modePassword
)

type loadedMsg struct {
	gen       uint64
	user      *model.User
	goal      int
	materials *catalog.Stats
}

// resultMsg reports a saved change. notice is shown on success.
type resultMsg struct {
	gen    uint64
	notice string
	user   *model.User
	goal   int
	err    error
}

// SettingsScreen shows account details and preferences.
type SettingsScreen struct {
	env       *env.Env
	mode      mode
	menu      components.Menu
	user      *model.User
	goal      int
	goalIdx   int
	materials *catalog.Stats
	fields    []components.TextInput
	focus     int
	busy      bool
	notice    string
	errMsg    string
	gen       generation.Counter
}

var (
	_ screen.Screen          = (*SettingsScreen)(nil)
	_ screen.KeyHintProvider = (*SettingsScreen)(nil)
	_ screen.InputCapturer   = (*SettingsScreen)(nil)
	_ screen.Closer          = (*SettingsScreen)(nil)
)

// New creates a SettingsScreen.
func New(e *env.Env) *SettingsScreen {
	s := &SettingsScreen{env: e, goal: prefs.DefaultDailyGoal}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Daily goal", Action: func() tea.Cmd { s.enterGoal(); return nil }},
		{Label: "Edit name", Action: func() tea.Cmd { return s.enterForm(modeName) }},
		{Label: "Change password", Action: func() tea.Cmd { return s.enterForm(modePassword) }},
		{Label: "Clear saved materials", Action: s.clearMaterials},
		{Label: "Check server", Action: s.checkServer},
	})
	s.setGoal(s.goal)
	return s
}

func (s *SettingsScreen) setGoal(n int) {
	if n <= 0 {
		return
	}
	s.goal = n
	s.menu.Items[0].Hint = fmt.Sprintf("%d per day", n)
}

func (s *SettingsScreen) Init() tea.Cmd {
	gen := s.gen.Current()
	e := s.env
	return func() tea.Msg {
		ctx, cancel := e.Context()
		defer cancel()
		msg := loadedMsg{gen: gen}
		msg.user, _ = e.Session.User(ctx)
		msg.goal, _ = e.Prefs.DailyGoal(ctx)
		var last *catalog.Snapshot
		if err := e.Catalog.Load(ctx, func(snap catalog.Snapshot) { last = &snap }); err == nil && last != nil {
			st := catalog.Summarize(last.Materials)
			msg.materials = &st
		}
		return msg
	}
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) Close() { s.gen.Invalidate() }

func (s *SettingsScreen) CapturingInput() bool {
	return s.mode == modeName || s.mode == modePassword
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeGoal:
		return []layout.KeyHint{{Key: "←→", Description: "Change"}, {Key: "Enter", Description: "Save"}, {Key: "Esc", Description: "Cancel"}}
	case modeName, modePassword:
		return []layout.KeyHint{{Key: "Tab", Description: "Next field"}, {Key: "Enter", Description: "Save"}, {Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{{Key: "↑↓", Description: "Navigate"}, {Key: "Enter", Description: "Select"}, {Key: "Esc", Description: "Back"}}
}

func (s *SettingsScreen) enterGoal() {
	s.mode = modeGoal
	s.notice, s.errMsg = "", ""
	s.goalIdx = slices.Index(prefs.GoalOptions, s.goal)
	if s.goalIdx < 0 {
		s.goalIdx = slices.Index(prefs.GoalOptions, prefs.DefaultDailyGoal)
	}
}

func (s *SettingsScreen) enterForm(m mode) tea.Cmd {
	s.mode = m
	s.notice, s.errMsg = "", ""
	s.focus = 0
	if m == modeName {
		in := components.NewTextInput("Name", "Your name", false, 64)
		if s.user != nil {
			in.SetValue(s.user.Name)
		}
		s.fields = []components.TextInput{in}
	} else {
		s.fields = []components.TextInput{
			components.NewTextInput("Current password", "", true, 128),
			components.NewTextInput("New password", "At least 6 characters", true, 128),
			components.NewTextInput("Confirm new password", "", true, 128),
		}
	}
	return s.fields[0].Focus()
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.gen != s.gen.Current() {
			return s, nil
		}
		s.user = msg.user
		s.setGoal(msg.goal)
		s.materials = msg.materials
		return s, nil

	case resultMsg:
		if msg.gen != s.gen.Current() {
			return s, nil
		}
		s.busy = false
		if msg.err != nil {
			if env.NeedsLogin(msg.err) && s.env.Login != nil {
				login := s.env.Login()
				return s, func() tea.Msg { return router.ResetScreenMsg{Screen: login} }
			}
			s.errMsg = env.Describe(msg.err)
			return s, nil
		}
		if msg.user != nil {
			s.user = msg.user
		}
		s.setGoal(msg.goal)
		s.notice = msg.notice
		s.mode = modeMenu
		return s, nil

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		return s.handleKey(msg)
	}

	if s.CapturingInput() {
		var cmd tea.Cmd
		s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SettingsScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.mode {
	case modeMenu:
		if key == "esc" || key == "q" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd

	case modeGoal:
		switch key {
		case "left", "h":
			s.goalIdx = max(s.goalIdx-1, 0)
		case "right", "l":
			s.goalIdx = min(s.goalIdx+1, len(prefs.GoalOptions)-1)
		case "enter":
			return s, s.saveGoal(prefs.GoalOptions[s.goalIdx])
		case "esc":
			s.mode = modeMenu
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.mode = modeMenu
		s.errMsg = ""
		return s, nil
	case "tab", "down":
		return s, s.moveFocus(1)
	case "shift+tab", "up":
		return s, s.moveFocus(-1)
	case "enter":
		if s.focus < len(s.fields)-1 {
			return s, s.moveFocus(1)
		}
		if s.mode == modeName {
			return s, s.saveName(s.fields[0].Value())
		}
		return s, s.savePassword(s.fields[0].Value(), s.fields[1].Value(), s.fields[2].Value())
	}
	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *SettingsScreen) moveFocus(delta int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = (s.focus + delta + len(s.fields)) % len(s.fields)
	return s.fields[s.focus].Focus()
}

// async runs fn off the update loop and reports its outcome.
func (s *SettingsScreen) async(fn func(r *resultMsg)) tea.Cmd {
	s.busy = true
	s.notice, s.errMsg = "", ""
	gen := s.gen.Current()
	return func() tea.Msg {
		r := resultMsg{gen: gen}
		fn(&r)
		return r
	}
}

func (s *SettingsScreen) saveGoal(n int) tea.Cmd {
	e := s.env
	return s.async(func(r *resultMsg) {
		ctx, cancel := e.Context()
		defer cancel()
		if r.err = e.Prefs.SetDailyGoal(ctx, n); r.err == nil {
			r.goal = n
			r.notice = fmt.Sprintf("Daily goal set to %d.", n)
		}
	})
}

func (s *SettingsScreen) saveName(name string) tea.Cmd {
	e := s.env
	return s.async(func(r *resultMsg) {
		ctx, cancel := e.Context()
		defer cancel()
		if r.user, r.err = e.Auth.UpdateProfile(ctx, name); r.err == nil {
			r.notice = "Name updated."
		}
	})
}

func (s *SettingsScreen) savePassword(current, next, confirm string) tea.Cmd {
	e := s.env
	return s.async(func(r *resultMsg) {
		ctx, cancel := e.Context()
		defer cancel()
		msg, err := e.Auth.ChangePassword(ctx, current, next, confirm)
		r.err = err
		if msg == "" {
			msg = "Password changed."
		}
		r.notice = msg
	})
}

func (s *SettingsScreen) clearMaterials() tea.Cmd {
	e := s.env
	return s.async(func(r *resultMsg) {
		ctx, cancel := e.Context()
		defer cancel()
		if r.err = e.Catalog.Invalidate(ctx); r.err == nil {
			r.notice = "Saved materials cleared. They will be downloaded again."
		}
	})
}

func (s *SettingsScreen) checkServer() tea.Cmd {
	e := s.env
	return s.async(func(r *resultMsg) {
		ctx, cancel := e.Context()
		defer cancel()
		hs, err := e.API.Health(ctx)
		if err != nil {
			r.err = err
			return
		}
		version := hs.Version
		if version == "" {
			version = "unknown version"
		}
		r.notice = fmt.Sprintf("Server %s (%s) in %s", hs.Status, version, hs.Latency.Round(time.Millisecond))
		if hs.Version != "" && !hs.Compatible {
			r.notice += " · this client may be out of date"
		}
	})
}

func (s *SettingsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	sections := []string{s.renderAccount(cw)}

	switch s.mode {
	case modeGoal:
		sections = append(sections, components.TitledCard("Daily goal", renderGoalPicker(s.goalIdx), cw))
	case modeName, modePassword:
		parts := make([]string, len(s.fields))
		for i, f := range s.fields {
			parts[i] = f.View()
		}
		title := "Edit name"
		if s.mode == modePassword {
			title = "Change password"
		}
		sections = append(sections, components.TitledCard(title, strings.Join(parts, "\n\n"), cw))
	default:
		sections = append(sections, components.Card(s.menu.View(), cw))
	}

	switch {
	case s.busy:
		sections = append(sections, theme.Hint.Render("Saving..."))
	case s.errMsg != "":
		sections = append(sections, theme.ErrorText.Render(s.errMsg))
	case s.notice != "":
		sections = append(sections, theme.SuccessText.Render(s.notice))
	}
	return components.CenterTop("\n"+strings.Join(sections, "\n"), width, height)
}

func (s *SettingsScreen) renderAccount(cw int) string {
	var lines []string
	if s.user != nil {
		lines = append(lines,
			fmt.Sprintf("Name       %s", s.user.Name),
			fmt.Sprintf("Email      %s", s.user.Email),
		)
	} else {
		lines = append(lines, theme.Hint.Render("Not signed in"))
	}
	if s.materials != nil {
		lines = append(lines, fmt.Sprintf("Materials  %d (%d items)", s.materials.Materials, s.materials.Items))
	}
	return components.TitledCard("Account", theme.Body.Render(strings.Join(lines, "\n")), cw)
}

func renderGoalPicker(idx int) string {
	parts := make([]string, len(prefs.GoalOptions))
	for i, n := range prefs.GoalOptions {
		label := fmt.Sprintf(" %d ", n)
		if i == idx {
			parts[i] = theme.ButtonActive.Render(label)
		} else {
			parts[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
		}
	}
	return strings.Join(parts, " ") + "\n\n" + theme.Hint.Render("practices per day")
}
