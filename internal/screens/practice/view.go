package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/analytics"
	"github.com/linguaku/linguaku/internal/model"
	sess "github.com/linguaku/linguaku/internal/practice"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/ui/components"
	"github.com/linguaku/linguaku/internal/ui/theme"
)

func (p *PracticeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	inner := cw - 6

	var sections []string
	sections = append(sections, p.renderTarget(inner, cw))

	switch {
	case p.pending == "start":
		sections = append(sections, theme.Hint.Render("Getting ready to record..."))
	case p.pending == "stop":
		sections = append(sections, theme.Hint.Render("Finishing recognition..."))
	case p.pending == "analyze" || p.snap.State == sess.Analyzing:
		sections = append(sections, p.renderTranscript(inner, cw), theme.Hint.Render("Analyzing your pronunciation..."))
	default:
		sections = append(sections, p.renderState(inner, cw)...)
	}

	if p.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Render(theme.ErrorText.Render(p.errMsg)))
	}
	if p.pending == "" {
		if row := components.ButtonRow(p.actions()...); row != "" {
			sections = append(sections, row)
		}
	}

	return components.CenterTop("\n"+strings.Join(sections, "\n\n"), width, height)
}

func (p *PracticeScreen) renderTarget(inner, cw int) string {
	m := p.snap.Material
	target := m.TargetText()
	var body string
	if p.snap.State == sess.Completed && p.snap.Result != nil {
		body = renderHighlighted(sess.Highlight(target, p.snap.Result), inner)
	} else {
		body = lipgloss.NewStyle().Width(inner).Foreground(theme.Text).Render(target)
	}
	title := m.Title
	if m.Level != "" {
		title += "  " + theme.Hint.Render(m.Level)
	}
	return components.TitledCard(title, body, cw)
}

func renderHighlighted(words []sess.Word, inner int) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = theme.WordStyle(w.Status).Render(w.Text)
	}
	return lipgloss.NewStyle().Width(inner).Render(strings.Join(parts, " "))
}

func (p *PracticeScreen) renderTranscript(inner, cw int) string {
	t := p.snap.Transcript
	if strings.TrimSpace(t) == "" {
		t = theme.Hint.Render("(nothing recognized)")
	}
	return components.TitledCard("You said", lipgloss.NewStyle().Width(inner).Render(t), cw)
}

func (p *PracticeScreen) renderState(inner, cw int) []string {
	switch p.snap.State {
	case sess.Idle:
		prompt := "Press Space and read the text above aloud."
		if p.typed() {
			prompt = "Press Space, then type what you read aloud."
		}
		return []string{theme.Hint.Render(prompt)}

	case sess.Recording:
		rec := lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("● Recording")
		out := []string{rec}
		if p.snap.Transcript != "" {
			out = append(out, p.renderTranscript(inner, cw))
		}
		if p.typed() {
			out = append(out, p.input.View())
		} else {
			out = append(out, theme.Hint.Render("Press Space when you are done."))
		}
		return out

	case sess.Recognized:
		return []string{p.renderTranscript(inner, cw)}

	case sess.Completed:
		return []string{p.renderTranscript(inner, cw), renderResult(p.snap.Result, inner, cw)}

	case sess.Errored:
		return p.renderError(inner, cw)
	}
	return nil
}

func renderResult(r *model.PracticeResult, inner, cw int) string {
	if r == nil {
		return ""
	}
	band := analytics.BandFor(r.Score)
	score := lipgloss.NewStyle().Foreground(theme.NamedColor(band.Color())).Bold(true).
		Render(fmt.Sprintf("%d / 100  %s", r.Score, band))

	lines := []string{
		score,
		theme.Hint.Render(fmt.Sprintf("%d of %d words correct · accuracy %.0f%%", r.CorrectWords, r.TotalWords, r.Accuracy)),
	}
	if len(r.MistakeWords) > 0 {
		lines = append(lines, theme.ErrorText.Render("Work on: "+strings.Join(r.MistakeWords, ", ")))
	}
	if r.Feedback != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(inner).Foreground(theme.Text).Render(r.Feedback))
	}
	return components.TitledCard("Your score", strings.Join(lines, "\n"), cw)
}

func (p *PracticeScreen) renderError(inner, cw int) []string {
	stage := "Recognition"
	if p.snap.FailedIn == sess.StageAnalysis {
		stage = "Analysis"
	}
	msg := theme.ErrorText.Render(fmt.Sprintf("%s failed: %s", stage, env.Describe(p.snap.Err)))
	hint := "Press R to try again."
	if p.snap.NeedsLogin {
		hint = "Your session has expired. Press L to sign in again."
	}
	out := []string{msg, theme.Hint.Render(hint)}
	if p.snap.FailedIn == sess.StageAnalysis && p.snap.Transcript != "" {
		out = append([]string{p.renderTranscript(inner, cw)}, out...)
	}
	return out
}

// actions lists the shortcuts available in the current state.
func (p *PracticeScreen) actions() []components.Button {
	st := p.snap.State
	return []components.Button{
		components.NewButton("Record", "space", st == sess.Idle),
		components.NewButton("Stop", "space", st == sess.Recording && !p.typed()),
		components.NewButton("Get score", "enter", st == sess.Recognized),
		components.NewButton("Record again", "r", st == sess.Recognized),
		components.NewButton("Practice again", "space", st == sess.Completed),
		components.NewButton("Clear", "n", st == sess.Completed),
		components.NewButton("Sign in", "l", st == sess.Errored && p.snap.NeedsLogin),
		components.NewButton("Retry", "r", st == sess.Errored && !p.snap.NeedsLogin),
	}
}
