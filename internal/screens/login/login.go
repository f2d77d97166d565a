// Package login holds the sign-in and sign-up screen.
package login

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/auth"
	"github.com/linguaku/linguaku/internal/generation"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/ui/components"
	"github.com/linguaku/linguaku/internal/ui/layout"
	"github.com/linguaku/linguaku/internal/ui/theme"
)

// Mode selects between the two forms.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

type doneMsg struct {
	gen    uint64
	user   *model.User
	verify bool   // account created, email verification pending
	notice string // informational result, e.g. reset email sent
	err    error
}

// LoginScreen signs the learner in or creates an account.
type LoginScreen struct {
	env    *env.Env
	mode   Mode
	fields []components.TextInput
	focus  int
	busy   bool
	errMsg string
	notice string
	gen    generation.Counter
}

var (
	_ screen.Screen          = (*LoginScreen)(nil)
	_ screen.KeyHintProvider = (*LoginScreen)(nil)
	_ screen.InputCapturer   = (*LoginScreen)(nil)
	_ screen.Closer          = (*LoginScreen)(nil)
)

// New creates a LoginScreen in the given mode.
func New(e *env.Env, mode Mode) *LoginScreen {
	s := &LoginScreen{env: e}
	s.setMode(mode)
	return s
}

func (s *LoginScreen) setMode(mode Mode) {
	email := ""
	if len(s.fields) > 0 {
		email = s.field("Email").Value()
	}
	s.mode = mode
	s.focus = 0
	if mode == ModeRegister {
		s.fields = []components.TextInput{
			components.NewTextInput("Name", "Your name", false, 64),
			components.NewTextInput("Email", "you@example.com", false, 128),
			components.NewTextInput("Password", "8+ chars with A-z, 0-9 and a symbol", true, 128),
			components.NewTextInput("Confirm password", "Repeat password", true, 128),
		}
	} else {
		s.fields = []components.TextInput{
			components.NewTextInput("Email", "you@example.com", false, 128),
			components.NewTextInput("Password", "Password", true, 128),
		}
	}
	s.field("Email").SetValue(email)
	s.fields[0].Focus()
}

func (s *LoginScreen) field(label string) *components.TextInput {
	for i := range s.fields {
		if s.fields[i].Label == label {
			return &s.fields[i]
		}
	}
	return nil
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.fields[s.focus].Focus()
}

func (s *LoginScreen) Title() string {
	if s.mode == ModeRegister {
		return "Create Account"
	}
	return "Sign In"
}

func (s *LoginScreen) CapturingInput() bool { return true }

func (s *LoginScreen) Close() { s.gen.Invalidate() }

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
	}
	if s.mode == ModeLogin {
		hints = append(hints,
			layout.KeyHint{Key: "Ctrl+R", Description: "Create account"},
			layout.KeyHint{Key: "Ctrl+F", Description: "Forgot password"},
			layout.KeyHint{Key: "Ctrl+V", Description: "Resend verification"},
		)
	} else {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Sign in instead"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		return s.handleDone(msg)
	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.moveFocus(1)
		case "shift+tab", "up":
			return s, s.moveFocus(-1)
		case "ctrl+r":
			s.errMsg, s.notice = "", ""
			if s.mode == ModeLogin {
				s.setMode(ModeRegister)
			} else {
				s.setMode(ModeLogin)
			}
			return s, s.fields[0].Focus()
		case "ctrl+f":
			if s.mode == ModeLogin {
				return s, s.forgot()
			}
		case "ctrl+v":
			if s.mode == ModeLogin {
				return s, s.resend()
			}
		case "enter":
			if s.focus < len(s.fields)-1 {
				return s, s.moveFocus(1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *LoginScreen) moveFocus(delta int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = (s.focus + delta + len(s.fields)) % len(s.fields)
	return s.fields[s.focus].Focus()
}

func (s *LoginScreen) start() uint64 {
	s.busy = true
	s.errMsg, s.notice = "", ""
	return s.gen.Current()
}

func (s *LoginScreen) submit() tea.Cmd {
	gen := s.start()
	svc := s.env.Auth
	if s.mode == ModeLogin {
		email, password := s.field("Email").Value(), s.field("Password").Value()
		return func() tea.Msg {
			ctx, cancel := s.env.Context()
			defer cancel()
			u, err := svc.Login(ctx, email, password)
			return doneMsg{gen: gen, user: u, err: err}
		}
	}

	in := auth.RegisterInput{
		Name:     s.field("Name").Value(),
		Email:    s.field("Email").Value(),
		Password: s.field("Password").Value(),
		Confirm:  s.field("Confirm password").Value(),
	}
	return func() tea.Msg {
		ctx, cancel := s.env.Context()
		defer cancel()
		res, err := svc.Register(ctx, in)
		if err != nil {
			return doneMsg{gen: gen, err: err}
		}
		if res.RequiresVerification || res.User == nil {
			return doneMsg{gen: gen, verify: true}
		}
		return doneMsg{gen: gen, user: res.User}
	}
}

func (s *LoginScreen) forgot() tea.Cmd {
	gen := s.start()
	email := s.field("Email").Value()
	svc := s.env.Auth
	return func() tea.Msg {
		ctx, cancel := s.env.Context()
		defer cancel()
		msg, err := svc.ForgotPassword(ctx, email)
		if msg == "" {
			msg = "If the address is registered, a reset link is on its way."
		}
		return doneMsg{gen: gen, notice: msg, err: err}
	}
}

func (s *LoginScreen) resend() tea.Cmd {
	gen := s.start()
	email := s.field("Email").Value()
	svc := s.env.Auth
	return func() tea.Msg {
		ctx, cancel := s.env.Context()
		defer cancel()
		msg, err := svc.ResendVerification(ctx, email)
		if msg == "" {
			msg = "Verification email sent."
		}
		return doneMsg{gen: gen, notice: msg, err: err}
	}
}

func (s *LoginScreen) handleDone(msg doneMsg) (screen.Screen, tea.Cmd) {
	if msg.gen != s.gen.Current() {
		return s, nil
	}
	s.busy = false
	switch {
	case msg.err != nil:
		s.errMsg = env.Describe(msg.err)
		s.env.Log().Info("sign-in form failed", "error", msg.err)
		return s, nil
	case msg.verify:
		s.setMode(ModeLogin)
		s.notice = "Account created. Check your inbox to verify your email, then sign in."
		return s, s.fields[0].Focus()
	case msg.notice != "":
		s.notice = msg.notice
		return s, nil
	case msg.user != nil && s.env.Home != nil:
		home := s.env.Home()
		return s, func() tea.Msg { return router.ResetScreenMsg{Screen: home} }
	}
	return s, nil
}

func (s *LoginScreen) View(width, height int) string {
	cw := min(components.ContentWidth(width), 56)

	heading := "Welcome back"
	sub := "Sign in to continue practicing"
	if s.mode == ModeRegister {
		heading = "Create your account"
		sub = "Start improving your pronunciation"
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render(heading))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw - 6).Render(sub))
	b.WriteString("\n\n")
	for i, f := range s.fields {
		b.WriteString(f.View())
		if i < len(s.fields)-1 {
			b.WriteString("\n\n")
		}
	}

	status := ""
	switch {
	case s.busy:
		status = theme.Hint.Render("Please wait...")
	case s.errMsg != "":
		status = theme.ErrorText.Render(s.errMsg)
	case s.notice != "":
		status = theme.SuccessText.Render(s.notice)
	}
	if status != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Width(cw - 6).Render(status))
	}

	return components.Center(components.Card(b.String(), cw), width, height)
}
