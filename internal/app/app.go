// Package app is the root Bubble Tea model of the terminal UI.
package app

import (
	"context"
	"fmt"
	"io"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/screens/home"
	"github.com/linguaku/linguaku/internal/screens/login"
	"github.com/linguaku/linguaku/internal/screens/welcome"
	"github.com/linguaku/linguaku/internal/ui/layout"
)

// Options configures the app.
type Options struct {
	Env *env.Env

	// SkipSplash starts directly at the home or sign-in screen.
	SkipSplash bool

	// Input and Output override the terminal, mainly for tests.
	Input  io.Reader
	Output io.Writer
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// New wires the screen factories into opts.Env and builds the model. The
// first screen is home when a session is stored, sign-in otherwise.
func New(ctx context.Context, opts Options) AppModel {
	e := opts.Env
	e.Home = func() screen.Screen { return home.New(e) }
	e.Login = func() screen.Screen { return login.New(e, login.ModeLogin) }

	start := func() screen.Screen {
		if e.Session.SignedIn(ctx) {
			return e.Home()
		}
		return e.Login()
	}

	var first screen.Screen
	if opts.SkipSplash {
		first = start()
	} else {
		first = welcome.New(start)
	}
	return AppModel{router: router.New(first)}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.Close()
			return m, tea.Quit
		case "esc":
			if capturing(m.router.Active()) {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func capturing(s screen.Screen) bool {
	ic, ok := s.(screen.InputCapturer)
	return ok && ic.CapturingInput()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	var status layout.Status
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	activity := ""
	if ap, ok := active.(screen.ActivityProvider); ok {
		activity = ap.Activity()
	}
	footer := layout.RenderFooter(layout.Footer{Hints: footerHints, Activity: activity}, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	model := New(ctx, opts)
	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	p := tea.NewProgram(model, progOpts...)
	final, err := p.Run()
	if m, ok := final.(AppModel); ok {
		m.router.Close()
	}
	if err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}
