// Package history lists past practice attempts and lets the learner delete
// them.
package history

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/analytics"
	"github.com/linguaku/linguaku/internal/generation"
	hist "github.com/linguaku/linguaku/internal/history"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/ui/layout"
	"github.com/linguaku/linguaku/internal/ui/theme"
)

type historyLoadedMsg struct {
	gen     uint64
	records []model.HistoryRecord
	err     error
}

// mutatedMsg reports a delete or clear. The list is re-read from the
// manager, which only changes after the server confirms.
type mutatedMsg struct {
	gen uint64
	err error
}

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmClear
)

// HistoryScreen displays past practice attempts.
type HistoryScreen struct {
	env      *env.Env
	records  []model.HistoryRecord
	selected int
	expanded map[string]bool
	confirm  confirmKind
	loaded   bool
	busy     bool
	errMsg   string
	gen      generation.Counter
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
	_ screen.Closer          = (*HistoryScreen)(nil)
)

// New creates a new HistoryScreen.
func New(e *env.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      e,
		expanded: make(map[string]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	gen := s.gen.Invalidate()
	m := s.env.History
	return func() tea.Msg {
		ctx, cancel := s.env.Context()
		defer cancel()
		records, err := m.Load(ctx)
		return historyLoadedMsg{gen: gen, records: records, err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) Close() { s.gen.Invalidate() }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.confirm != confirmNone {
		return []layout.KeyHint{
			{Key: "Y", Description: "Confirm"},
			{Key: "N", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Details"},
		{Key: "D", Description: "Delete"},
		{Key: "C", Description: "Clear all"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.gen != s.gen.Current() {
			return s, nil
		}
		s.loaded = true
		if msg.err != nil {
			return s, s.fail(msg.err)
		}
		s.records = msg.records
		s.clampSelection()
		return s, nil

	case mutatedMsg:
		if msg.gen != s.gen.Current() {
			return s, nil
		}
		s.busy = false
		if msg.err != nil {
			return s, s.fail(msg.err)
		}
		s.records = s.env.History.Records()
		s.clampSelection()
		return s, nil

	case tea.KeyMsg:
		if s.confirm != confirmNone {
			return s, s.handleConfirm(msg.String())
		}
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			if r := s.current(); r != nil {
				s.expanded[r.ID] = !s.expanded[r.ID]
			}
		case "d":
			if s.current() != nil && !s.busy {
				s.confirm = confirmDelete
			}
		case "c":
			if len(s.records) > 0 && !s.busy {
				s.confirm = confirmClear
			}
		case "r":
			s.errMsg = ""
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *HistoryScreen) fail(err error) tea.Cmd {
	if env.NeedsLogin(err) && s.env.Login != nil {
		login := s.env.Login()
		return func() tea.Msg { return router.ResetScreenMsg{Screen: login} }
	}
	s.errMsg = env.Describe(err)
	return nil
}

func (s *HistoryScreen) handleConfirm(key string) tea.Cmd {
	kind := s.confirm
	s.confirm = confirmNone
	if key != "y" {
		return nil
	}

	s.busy = true
	s.errMsg = ""
	gen := s.gen.Current()
	m := s.env.History
	var id string
	if r := s.current(); r != nil {
		id = r.ID
	}
	return func() tea.Msg {
		ctx, cancel := s.env.Context()
		defer cancel()
		var err error
		if kind == confirmClear {
			err = m.Clear(ctx)
		} else {
			err = m.Delete(ctx, id)
		}
		return mutatedMsg{gen: gen, err: err}
	}
}

func (s *HistoryScreen) current() *model.HistoryRecord {
	if s.selected < 0 || s.selected >= len(s.records) {
		return nil
	}
	return &s.records[s.selected]
}

func (s *HistoryScreen) clampSelection() {
	s.selected = max(min(s.selected, len(s.records)-1), 0)
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if s.errMsg != "" && len(s.records) == 0 {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s\n\nPress R to try again.", s.errMsg))
	}
	if len(s.records) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No practice yet. Pick a material and start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")
	switch {
	case s.confirm == confirmDelete:
		b.WriteString(center.Foreground(theme.Warning).Bold(true).Render("Delete this attempt? (y/n)"))
	case s.confirm == confirmClear:
		b.WriteString(center.Foreground(theme.Warning).Bold(true).
			Render(fmt.Sprintf("Delete all %d attempts? This cannot be undone. (y/n)", len(s.records))))
	case s.busy:
		b.WriteString(center.Foreground(theme.TextDim).Render("Deleting..."))
	case s.errMsg != "":
		b.WriteString(center.Foreground(theme.Error).Render(s.errMsg))
	default:
		b.WriteString(center.Foreground(theme.TextDim).Render(fmt.Sprintf("%d attempts", len(s.records))))
	}
	b.WriteString("\n\n")

	now := s.env.Clock()
	visible := max(height-4, 1)
	first := 0
	if s.selected >= visible {
		first = s.selected - visible + 1
	}
	for i := first; i < len(s.records) && i < first+visible; i++ {
		r := s.records[i]
		title := r.MaterialTitle
		if title == "" {
			title = "Practice"
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		score := lipgloss.NewStyle().Foreground(theme.NamedColor(analytics.BandFor(r.Score).Color())).Bold(true).
			Render(fmt.Sprintf("%3d", r.Score))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := style.Render(fmt.Sprintf("%s%-28s", prefix, title)) + "  " + score + "  " +
			theme.Hint.Render(hist.TimeAgo(r.CreatedAt, now))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")

		if s.expanded[r.ID] {
			b.WriteString(s.renderDetails(r, width))
		}
	}
	return b.String()
}

func (s *HistoryScreen) renderDetails(r model.HistoryRecord, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	lines := []string{dim.Render(hist.FormatDateTime(r.CreatedAt))}
	if r.ItemText != "" {
		lines = append(lines, "Text:     "+r.ItemText)
	}
	if r.Transcript != "" {
		lines = append(lines, "You said: "+r.Transcript)
	}
	body := lipgloss.NewStyle().Width(min(width-8, 70)).PaddingLeft(4).Render(strings.Join(lines, "\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, body) + "\n"
}
