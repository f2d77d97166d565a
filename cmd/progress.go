package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/linguaku/linguaku/internal/analytics"
	"github.com/linguaku/linguaku/internal/gateway"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show this week's practice and today's goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if err := d.requireSession(ctx); err != nil {
			return err
		}
		goal, err := d.prefs.DailyGoal(ctx)
		if err != nil {
			d.logger.Warn("read daily goal", "error", err)
		}

		out := cmd.OutOrStdout()
		var report analytics.Report
		var today analytics.DailyGoal
		records, err := d.history.Load(ctx)
		switch {
		case err == nil:
			now := time.Now()
			report = analytics.Weekly(records, now, analytics.DefaultWindow)
			today = analytics.GoalProgress(analytics.TodayCount(records, now), goal)
		case errors.Is(err, gateway.ErrAuthExpired), errors.Is(err, gateway.ErrNotAuthenticated):
			return err
		default:
			var werr error
			report, werr = analytics.ServerReport(ctx, d.api)
			if werr != nil {
				return err
			}
			fmt.Fprintln(out, "History is unavailable; showing the server's weekly summary.")
			today = analytics.GoalProgress(analytics.LastBucketCount(report.Current), goal)
		}

		fmt.Fprintf(out, "Today: %d/%d practices", today.Done, today.Goal)
		if today.Reached() {
			fmt.Fprint(out, ", goal reached!")
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "Last 7 days")
		fmt.Fprintln(out, strings.Repeat("─", 48))
		for _, b := range report.Current {
			bar := strings.Repeat("█", b.AvgScore/5)
			fmt.Fprintf(out, "%-3s %s  %3d  %-20s %d×\n", b.Day, b.Date.Format("01/02"), b.AvgScore, bar, b.PracticeCount)
		}
		fmt.Fprintln(out, strings.Repeat("─", 48))

		s := report.Summary
		fmt.Fprintf(out, "Practices: %d   Average: %d   Best: %d   Active days: %d\n",
			s.TotalPractices, s.AverageScore, s.HighestScore, s.DaysActive)

		in := report.Insight
		msg := in.Message
		if in.Improvement != 0 {
			msg = fmt.Sprintf("%s (%+d vs last week)", msg, in.Improvement)
		}
		fmt.Fprintf(out, "\n%s %s\n", in.Emoji, msg)

		if st, err := d.api.UserStatistics(ctx); err == nil {
			fmt.Fprintf(out, "\nAll time: %d practices, average %.0f, %d-day streak\n",
				st.TotalPractices, st.AverageScore, st.DayStreak)
		} else {
			d.logger.Info("user statistics unavailable", "error", err)
		}
		return nil
	},
}
