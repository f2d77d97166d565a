// Package progress shows weekly performance, insight and lifetime stats.
package progress

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/analytics"
	"github.com/linguaku/linguaku/internal/generation"
	"github.com/linguaku/linguaku/internal/history"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/screens/env"
	"github.com/linguaku/linguaku/internal/ui/components"
	"github.com/linguaku/linguaku/internal/ui/layout"
	"github.com/linguaku/linguaku/internal/ui/theme"
)

// RecentLimit is how many recent activities are listed.
const RecentLimit = 5

type loadedMsg struct {
	gen    uint64
	report analytics.Report
	goal   analytics.DailyGoal
	stats  *model.UserStatistics
	recent []model.RecentActivity
	// fromServer is set when history was unavailable and the report
	// comes from the server's weekly aggregation.
	fromServer bool
	err        error
}

// ProgressScreen renders analytics computed from practice history.
type ProgressScreen struct {
	env    *env.Env
	data   *loadedMsg
	errMsg string
	gen    generation.Counter
}

var (
	_ screen.Screen          = (*ProgressScreen)(nil)
	_ screen.KeyHintProvider = (*ProgressScreen)(nil)
	_ screen.Closer          = (*ProgressScreen)(nil)
)

// New creates a ProgressScreen.
func New(e *env.Env) *ProgressScreen {
	return &ProgressScreen{env: e}
}

func (s *ProgressScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ProgressScreen) Title() string {
	return "Progress"
}

func (s *ProgressScreen) Close() { s.gen.Invalidate() }

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProgressScreen) load() tea.Cmd {
	gen := s.gen.Invalidate()
	e := s.env
	return func() tea.Msg {
		ctx, cancel := e.Context()
		defer cancel()

		goal, err := e.Prefs.DailyGoal(ctx)
		if err != nil {
			e.Log().Warn("read daily goal", "error", err)
		}

		msg := loadedMsg{gen: gen}
		records, err := e.History.Load(ctx)
		switch {
		case err == nil:
			now := e.Clock()
			msg.report = analytics.Weekly(records, now, analytics.DefaultWindow)
			msg.goal = analytics.GoalProgress(analytics.TodayCount(records, now), goal)
		case env.NeedsLogin(err):
			return loadedMsg{gen: gen, err: err}
		default:
			report, werr := analytics.ServerReport(ctx, e.API)
			if werr != nil {
				e.Log().Info("weekly report unavailable", "error", werr)
				return loadedMsg{gen: gen, err: err}
			}
			e.Log().Warn("history unavailable, using server report", "error", err)
			msg.report = report
			msg.fromServer = true
			msg.goal = analytics.GoalProgress(analytics.LastBucketCount(report.Current), goal)
		}

		// Server-side extras are optional.
		if st, err := e.API.UserStatistics(ctx); err == nil {
			msg.stats = st
		} else {
			e.Log().Info("user statistics unavailable", "error", err)
		}
		if recent, err := e.API.RecentActivity(ctx, RecentLimit); err == nil {
			msg.recent = recent
		} else {
			e.Log().Info("recent activity unavailable", "error", err)
		}
		return msg
	}
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.gen != s.gen.Current() {
			return s, nil
		}
		if msg.err != nil {
			if env.NeedsLogin(msg.err) && s.env.Login != nil {
				login := s.env.Login()
				return s, func() tea.Msg { return router.ResetScreenMsg{Screen: login} }
			}
			s.errMsg = env.Describe(msg.err)
			return s, nil
		}
		s.errMsg = ""
		s.data = &msg
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			s.errMsg = ""
			return s, s.load()
		}
	}
	return s, nil
}

func (s *ProgressScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.data == nil {
		if s.errMsg != "" {
			return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\n%s\n\nPress R to try again.", s.errMsg))
		}
		return center.Foreground(theme.TextDim).Render("\n\nLoading progress...")
	}

	cw := components.ContentWidth(width)
	d := s.data
	sections := []string{
		renderInsight(d.report.Insight, cw),
		components.TitledCard("This week", renderChart(d.report.Current, layout.IsCompactHeight(height+layout.HeaderHeight+layout.FooterHeight)), cw),
		renderSummary(d.report.Summary, d.goal, d.stats, cw),
	}
	if len(d.recent) > 0 {
		sections = append(sections, renderRecent(d.recent, s.env.Clock, cw))
	}
	if d.fromServer {
		sections = append(sections, theme.Hint.Render("History is unavailable; showing the server's weekly summary."))
	}
	return components.CenterTop(strings.Join(sections, "\n"), width, height)
}

func renderInsight(in model.WeeklyInsight, cw int) string {
	msg := in.Message
	if in.Emoji != "" {
		msg = in.Emoji + " " + msg
	}
	line := lipgloss.NewStyle().Foreground(theme.NamedColor(in.Color)).Bold(true).Render(msg)
	if in.HasPrior || in.Improvement != 0 {
		sign := "+"
		if in.Improvement < 0 {
			sign = ""
		}
		line += "\n" + theme.Hint.Render(fmt.Sprintf("%s%d points vs last week", sign, in.Improvement))
	}
	return components.Card(line, cw)
}

func renderChart(buckets []model.WeeklyBucket, compact bool) string {
	bars := make([]components.Bar, len(buckets))
	for i, b := range buckets {
		note := ""
		if b.PracticeCount > 0 {
			note = fmt.Sprint(b.AvgScore)
		}
		bars[i] = components.Bar{
			Label: b.Day,
			Value: b.AvgScore,
			Color: theme.NamedColor(analytics.BucketColor(b)),
			Note:  note,
		}
	}
	h := 6
	if compact {
		h = 3
	}

	legend := make([]string, 0, 4)
	for _, band := range []analytics.Band{analytics.Excellent, analytics.Good, analytics.Fair, analytics.NeedPractice} {
		legend = append(legend, lipgloss.NewStyle().Foreground(theme.NamedColor(band.Color())).Render("■")+
			theme.Hint.Render(fmt.Sprintf(" %s %s", band, band.Range())))
	}
	return components.BarChart(bars, h) + "\n\n" + strings.Join(legend, "  ")
}

func renderSummary(sum analytics.Summary, goal analytics.DailyGoal, stats *model.UserStatistics, cw int) string {
	lines := []string{
		fmt.Sprintf("Practices this week  %d", sum.TotalPractices),
		fmt.Sprintf("Average score        %d", sum.AverageScore),
		fmt.Sprintf("Best score           %d", sum.HighestScore),
		fmt.Sprintf("Active days          %d/%d", sum.DaysActive, analytics.DefaultWindow),
		fmt.Sprintf("Today                %d/%d", goal.Done, goal.Goal),
	}
	if stats != nil {
		lines = append(lines,
			"",
			fmt.Sprintf("All-time practices   %d", stats.TotalPractices),
			fmt.Sprintf("All-time average     %.1f", stats.AverageScore),
			fmt.Sprintf("Day streak           %d", stats.DayStreak),
		)
	}
	return components.TitledCard("Summary", theme.Body.Render(strings.Join(lines, "\n")), cw)
}

func renderRecent(recent []model.RecentActivity, now func() time.Time, cw int) string {
	lines := make([]string, 0, len(recent))
	for _, r := range recent {
		score := lipgloss.NewStyle().Foreground(theme.NamedColor(analytics.BandFor(r.Score).Color())).
			Render(fmt.Sprintf("%3d", r.Score))
		lines = append(lines, fmt.Sprintf("%s  %s  %s", score, r.LessonName,
			theme.Hint.Render(history.TimeAgo(r.CompletedAt, now()))))
	}
	return components.TitledCard("Recent activity", strings.Join(lines, "\n"), cw)
}
