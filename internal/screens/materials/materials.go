// Package materials lists practice materials grouped by level.
package materials

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/catalog"
	"github.com/linguaku/linguaku/internal/generation"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/screens/practice"
	"github.com/linguaku/linguaku/internal/ui/components"
	"github.com/linguaku/linguaku/internal/ui/layout"
	"github.com/linguaku/linguaku/internal/ui/theme"
)

// snapshotMsg delivers one report of the loader. next waits for the
// following report.
type snapshotMsg struct {
	gen  uint64
	snap catalog.Snapshot
	next tea.Cmd
}

type loadDoneMsg struct {
	gen uint64
	err error
}

// row is either a group heading or a material.
type row struct {
	group    *catalog.Group
	material *model.Material
}

// MaterialsScreen shows the catalog and opens a practice screen.
type MaterialsScreen struct {
	env      *env.Env
	rows     []row
	selected int
	snap     *catalog.Snapshot
	loading  bool
	errMsg   string
	gen      generation.Counter
	cancel   context.CancelFunc
}

var (
	_ screen.Screen           = (*MaterialsScreen)(nil)
	_ screen.KeyHintProvider  = (*MaterialsScreen)(nil)
	_ screen.Closer           = (*MaterialsScreen)(nil)
	_ screen.ActivityProvider = (*MaterialsScreen)(nil)
)

// New creates a MaterialsScreen.
func New(e *env.Env) *MaterialsScreen {
	return &MaterialsScreen{env: e}
}

func (s *MaterialsScreen) Init() tea.Cmd {
	return s.start(false)
}

func (s *MaterialsScreen) Title() string {
	return "Materials"
}

func (s *MaterialsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Practice"},
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

// Close drops any report still in flight.
func (s *MaterialsScreen) Close() {
	s.gen.Invalidate()
	if s.cancel != nil {
		s.cancel()
	}
}

// start runs Load (or Refresh) on a goroutine. Reports reach Update one at
// a time through a channel; reports issued after Close are dropped.
func (s *MaterialsScreen) start(refresh bool) tea.Cmd {
	if s.cancel != nil {
		s.cancel()
	}
	gen := s.gen.Invalidate()
	tok := s.gen.Token()
	ctx, cancel := context.WithTimeout(context.Background(), env.RequestTimeout)
	s.cancel = cancel
	s.loading = true
	s.errMsg = ""

	ch := make(chan tea.Msg, 3)
	var wait tea.Cmd
	wait = func() tea.Msg {
		m, ok := <-ch
		if !ok {
			return nil
		}
		return m
	}

	report := generation.Guard(tok, func(snap catalog.Snapshot) {
		ch <- snapshotMsg{gen: gen, snap: snap, next: wait}
	})
	loader := s.env.Catalog
	go func() {
		defer close(ch)
		defer cancel()
		var err error
		if refresh {
			err = loader.Refresh(ctx, func(snap catalog.Snapshot) { report(snap) })
		} else {
			err = loader.Load(ctx, func(snap catalog.Snapshot) { report(snap) })
		}
		ch <- loadDoneMsg{gen: gen, err: err}
	}()
	return wait
}

func (s *MaterialsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.gen != s.gen.Current() {
			return s, nil
		}
		s.apply(msg.snap)
		return s, msg.next

	case loadDoneMsg:
		if msg.gen != s.gen.Current() {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			if env.NeedsLogin(msg.err) && s.env.Login != nil {
				login := s.env.Login()
				return s, func() tea.Msg { return router.ResetScreenMsg{Screen: login} }
			}
			s.errMsg = env.Describe(msg.err)
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			return s, s.start(true)
		case "up", "k":
			s.move(-1)
		case "down", "j":
			s.move(1)
		case "enter":
			if m := s.current(); m != nil {
				p := practice.New(s.env, *m)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: p} }
			}
		}
	}
	return s, nil
}

func (s *MaterialsScreen) apply(snap catalog.Snapshot) {
	var prevID string
	if m := s.current(); m != nil {
		prevID = m.ID
	}

	s.snap = &snap
	s.rows = s.rows[:0]
	groups := catalog.GroupByLevel(snap.Materials)
	for gi := range groups {
		g := &groups[gi]
		s.rows = append(s.rows, row{group: g})
		for mi := range g.Materials {
			s.rows = append(s.rows, row{material: &g.Materials[mi]})
		}
	}

	s.selected = -1
	for i, r := range s.rows {
		if r.material == nil {
			continue
		}
		if s.selected < 0 || r.material.ID == prevID {
			s.selected = i
		}
		if r.material.ID == prevID {
			break
		}
	}
}

func (s *MaterialsScreen) current() *model.Material {
	if s.selected < 0 || s.selected >= len(s.rows) {
		return nil
	}
	return s.rows[s.selected].material
}

func (s *MaterialsScreen) move(delta int) {
	for i := s.selected + delta; i >= 0 && i < len(s.rows); i += delta {
		if s.rows[i].material != nil {
			s.selected = i
			return
		}
	}
}

func (s *MaterialsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	if s.snap == nil {
		switch {
		case s.errMsg != "":
			return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\n%s\n\nPress R to try again.", s.errMsg))
		default:
			return center.Foreground(theme.TextDim).Render("\n\nLoading materials...")
		}
	}
	if len(s.snap.Materials) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\nNo materials available yet.")
	}

	var b strings.Builder
	b.WriteString(s.statusLine())
	b.WriteString("\n")

	// Keep the selection visible.
	visible := max(height-4, 1)
	first := 0
	if s.selected >= visible {
		first = s.selected - visible + 1
	}
	for i := first; i < len(s.rows) && i < first+visible; i++ {
		r := s.rows[i]
		if r.group != nil {
			b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
				Render(fmt.Sprintf("%s %s (%d)", r.group.Category.Icon(), r.group.Level, len(r.group.Materials))) + "\n")
			continue
		}
		b.WriteString(renderMaterial(*r.material, i == s.selected, cw) + "\n")
	}

	return lipgloss.NewStyle().Width(width).PaddingLeft(max((width-cw)/2, 0)).Render(b.String())
}

func (s *MaterialsScreen) Activity() string {
	switch {
	case s.loading:
		return "Refreshing..."
	case s.snap != nil && s.snap.Source == catalog.SourceCache && s.snap.Stale:
		return "Offline copy"
	}
	return ""
}

func (s *MaterialsScreen) statusLine() string {
	stats := catalog.Summarize(s.snap.Materials)
	line := fmt.Sprintf("%d materials · %d items", stats.Materials, stats.Items)
	switch {
	case s.loading && s.snap.Stale:
		line += " · showing saved list, refreshing..."
	case s.loading:
		line += " · refreshing..."
	case s.errMsg != "":
		return theme.Hint.Render(line) + "  " + theme.ErrorText.Render(s.errMsg)
	case s.snap.Source == catalog.SourceCache && s.snap.Stale:
		line += " · saved list (offline)"
	}
	return theme.Hint.Render(line)
}

func renderMaterial(m model.Material, selected bool, cw int) string {
	items := m.ItemCount()
	label := m.Title
	if label == "" {
		label = m.ID
	}
	meta := fmt.Sprintf("%d item", items)
	if items != 1 {
		meta += "s"
	}
	if m.Category != "" {
		meta = m.Category + " · " + meta
	}

	title := theme.Unselected.Render("    " + label)
	if selected {
		title = theme.Selected.Render("  ▸ " + label)
	}
	gap := max(cw-lipgloss.Width(title)-lipgloss.Width(meta), 2)
	return title + strings.Repeat(" ", gap) + theme.Hint.Render(meta)
}
