// Package practice is the record, review and score screen for one material.
package practice

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "charm.land/bubbletea/v2"

	"github.com/linguaku/linguaku/internal/model"
	sess "github.com/linguaku/linguaku/internal/practice"
	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/ui/components"
	"github.com/linguaku/linguaku/internal/ui/layout"
)

// PracticeScreen drives a practice.Session for one material.
type PracticeScreen struct {
	env     *env.Env
	session *sess.Session
	snap    sess.Snapshot
	input   components.TextInput
	typing  io.Writer
	pending string // blocking call in flight: "start", "stop" or "analyze"
	errMsg  string
}

var (
	_ screen.Screen           = (*PracticeScreen)(nil)
	_ screen.KeyHintProvider  = (*PracticeScreen)(nil)
	_ screen.InputCapturer    = (*PracticeScreen)(nil)
	_ screen.Closer           = (*PracticeScreen)(nil)
	_ screen.ActivityProvider = (*PracticeScreen)(nil)
)

// New creates a PracticeScreen for material.
func New(e *env.Env, material model.Material) *PracticeScreen {
	s := sess.NewSession(material, e.Recognizer, e.API, e.Session,
		sess.WithLogger(e.Log()),
		sess.WithLanguage(e.Language),
	)
	return &PracticeScreen{
		env:     e,
		session: s,
		snap:    s.Snapshot(),
		input:   components.NewTextInput("", "Type what you said, Enter on an empty line to finish", false, 0),
		typing:  e.Typing,
	}
}

func (p *PracticeScreen) Init() tea.Cmd {
	return p.waitChange()
}

func (p *PracticeScreen) Title() string {
	return "Practice"
}

// CapturingInput is true while a typed transcript is being entered.
func (p *PracticeScreen) CapturingInput() bool {
	return p.typed() && p.snap.State == sess.Recording
}

// Close aborts recording and discards pending analysis.
func (p *PracticeScreen) Close() {
	p.session.Close()
}

func (p *PracticeScreen) typed() bool {
	return p.typing != nil
}

// waitChange blocks until the session signals a change.
func (p *PracticeScreen) waitChange() tea.Cmd {
	ch := p.session.Changes()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return closedMsg{}
		}
		return changedMsg{}
	}
}

func (p *PracticeScreen) Activity() string {
	switch {
	case p.pending == "start":
		return "Starting..."
	case p.pending == "stop":
		return "Finishing..."
	case p.pending == "analyze":
		return "Scoring..."
	}
	switch p.snap.State {
	case sess.Recording:
		return "● Recording"
	case sess.Analyzing:
		return "Scoring..."
	case sess.Completed:
		if p.snap.Result != nil {
			return fmt.Sprintf("Score %d", p.snap.Result.Score)
		}
	case sess.Errored:
		return "Needs attention"
	}
	return ""
}

func (p *PracticeScreen) KeyHints() []layout.KeyHint {
	back := layout.KeyHint{Key: "Esc", Description: "Back"}
	if p.pending != "" {
		return []layout.KeyHint{back}
	}
	switch p.snap.State {
	case sess.Idle:
		return []layout.KeyHint{{Key: "Space", Description: "Record"}, back}
	case sess.Recording:
		if p.typed() {
			return []layout.KeyHint{{Key: "Enter", Description: "Add line"}, {Key: "Enter on empty", Description: "Finish"}, back}
		}
		return []layout.KeyHint{{Key: "Space", Description: "Stop"}, back}
	case sess.Recognized:
		return []layout.KeyHint{{Key: "Enter", Description: "Analyze"}, {Key: "R", Description: "Record again"}, back}
	case sess.Completed:
		return []layout.KeyHint{{Key: "Space", Description: "Practice again"}, {Key: "N", Description: "Clear"}, back}
	case sess.Errored:
		if p.snap.NeedsLogin {
			return []layout.KeyHint{{Key: "L", Description: "Sign in"}, back}
		}
		return []layout.KeyHint{{Key: "R", Description: "Retry"}, back}
	}
	return []layout.KeyHint{back}
}

func (p *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		return p, tea.Batch(p.waitChange(), p.refresh())

	case closedMsg:
		return p, nil

	case opDoneMsg:
		return p.handleOpDone(msg)

	case typedMsg:
		if msg.err != nil {
			p.errMsg = env.Describe(msg.err)
		}
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if p.CapturingInput() {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		p.session.Close()
		return p, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if p.pending != "" {
		return p, nil
	}

	switch p.snap.State {
	case sess.Idle:
		if key == "space" || key == " " || key == "enter" {
			return p, p.run("start")
		}

	case sess.Recording:
		if p.typed() {
			if key == "enter" {
				line := p.input.Value()
				p.input.SetValue("")
				if line == "" {
					return p, p.run("stop")
				}
				return p, p.send(line)
			}
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return p, cmd
		}
		if key == "space" || key == " " || key == "enter" {
			return p, p.run("stop")
		}

	case sess.Recognized:
		switch key {
		case "enter", "a":
			return p, p.run("analyze")
		case "r":
			p.errMsg = ""
			if err := p.session.Reset(); err != nil {
				p.errMsg = env.Describe(err)
			}
			return p, p.refresh()
		}

	case sess.Completed:
		switch key {
		case "space", " ", "enter":
			return p, p.run("start")
		case "n":
			if err := p.session.Reset(); err != nil {
				p.errMsg = env.Describe(err)
			}
			return p, p.refresh()
		}

	case sess.Errored:
		switch {
		case key == "l" && p.snap.NeedsLogin && p.env.Login != nil:
			login := p.env.Login()
			return p, func() tea.Msg { return router.ResetScreenMsg{Screen: login} }
		case key == "r":
			p.errMsg = ""
			if err := p.session.Retry(); err != nil {
				p.errMsg = env.Describe(err)
			}
			return p, p.refresh()
		}
	}
	return p, nil
}

// run executes a blocking session call off the update loop.
func (p *PracticeScreen) run(op string) tea.Cmd {
	p.pending = op
	p.errMsg = ""
	s := p.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), env.RequestTimeout)
		defer cancel()
		switch op {
		case "start":
			return opDoneMsg{op: op, err: s.Start(ctx)}
		case "stop":
			return opDoneMsg{op: op, err: s.Stop(ctx)}
		default:
			r, err := s.Analyze(ctx)
			return opDoneMsg{op: op, result: r, err: err}
		}
	}
}

func (p *PracticeScreen) send(line string) tea.Cmd {
	w := p.typing
	return func() tea.Msg {
		_, err := fmt.Fprintln(w, line)
		return typedMsg{err: err}
	}
}

// refresh re-reads the session and moves input focus when recording
// starts or ends.
func (p *PracticeScreen) refresh() tea.Cmd {
	prev := p.snap.State
	p.snap = p.session.Snapshot()
	if p.snap.State != sess.Recording {
		p.input.Blur()
		return nil
	}
	if prev != sess.Recording && p.typed() {
		p.input.SetValue("")
		return p.input.Focus()
	}
	return nil
}

func (p *PracticeScreen) handleOpDone(msg opDoneMsg) (screen.Screen, tea.Cmd) {
	p.pending = ""
	focus := p.refresh()
	switch {
	case msg.err == nil:
		return p, focus
	case errors.Is(msg.err, sess.ErrDiscarded), errors.Is(msg.err, sess.ErrClosed):
	case errors.Is(msg.err, sess.ErrEmptyTranscript):
		p.errMsg = "Nothing was recognized. Press R to record again."
	case errors.Is(msg.err, sess.ErrNotAuthenticated):
		if p.env.Login != nil {
			login := p.env.Login()
			return p, func() tea.Msg { return router.ResetScreenMsg{Screen: login} }
		}
		p.errMsg = env.Describe(msg.err)
	case p.snap.State == sess.Errored:
		// Rendered from the snapshot.
	default:
		p.errMsg = env.Describe(msg.err)
	}
	return p, nil
}
