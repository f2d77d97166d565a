// Package analytics turns practice history into weekly statistics.
// Every function is pure; callers pass the current time.
package analytics

import (
	"math"
	"time"

	"github.com/linguaku/linguaku/internal/model"
)

// DefaultWindow is the number of days in a weekly report.
const DefaultWindow = 7

type dayKey struct {
	y int
	m time.Month
	d int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeeklyPerformance buckets records into the windowDays calendar days
// ending on now's day, oldest first. Days are taken in now's location.
// Days without practice keep a zero count and average.
func WeeklyPerformance(records []model.HistoryRecord, now time.Time, windowDays int) []model.WeeklyBucket {
	return bucketize(records, startOfDay(now), windowDays)
}

func bucketize(records []model.HistoryRecord, lastDay time.Time, windowDays int) []model.WeeklyBucket {
	if windowDays <= 0 {
		return nil
	}
	loc := lastDay.Location()

	buckets := make([]model.WeeklyBucket, windowDays)
	index := make(map[dayKey]int, windowDays)
	for i := range windowDays {
		day := lastDay.AddDate(0, 0, i-windowDays+1)
		buckets[i] = model.WeeklyBucket{Day: day.Format("Mon"), Date: day}
		index[keyOf(day)] = i
	}

	sums := make([]int, windowDays)
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			continue
		}
		i, ok := index[keyOf(r.CreatedAt.In(loc))]
		if !ok {
			continue
		}
		buckets[i].PracticeCount++
		sums[i] += r.Score
	}
	for i := range buckets {
		if n := buckets[i].PracticeCount; n > 0 {
			buckets[i].AvgScore = roundDiv(sums[i], n)
		}
	}
	return buckets
}

func roundDiv(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}

// Summary is derived from a bucket sequence.
type Summary struct {
	TotalPractices int
	// AverageScore is the mean of the daily averages of days with practice.
	AverageScore int
	HighestScore int
	DaysActive   int
}

// Summarize computes summary statistics. Empty days do not count towards
// the average.
func Summarize(buckets []model.WeeklyBucket) Summary {
	var s Summary
	sum := 0
	for _, b := range buckets {
		s.TotalPractices += b.PracticeCount
		s.HighestScore = max(s.HighestScore, b.AvgScore)
		if b.PracticeCount > 0 {
			s.DaysActive++
			sum += b.AvgScore
		}
	}
	if s.DaysActive > 0 {
		s.AverageScore = roundDiv(sum, s.DaysActive)
	}
	return s
}

// Report is everything the progress screen needs from history.
type Report struct {
	Current []model.WeeklyBucket
	Prior   []model.WeeklyBucket
	Summary Summary
	Insight model.WeeklyInsight
}

// Weekly builds the current window, the window before it, the summary of
// the current window and the insight comparing both.
func Weekly(records []model.HistoryRecord, now time.Time, windowDays int) Report {
	today := startOfDay(now)
	current := bucketize(records, today, windowDays)
	prior := bucketize(records, today.AddDate(0, 0, -windowDays), windowDays)
	return Report{
		Current: current,
		Prior:   prior,
		Summary: Summarize(current),
		Insight: ComputeInsight(current, prior),
	}
}

// TodayCount counts records made on now's calendar day.
func TodayCount(records []model.HistoryRecord, now time.Time) int {
	today := keyOf(now)
	n := 0
	for _, r := range records {
		if !r.CreatedAt.IsZero() && keyOf(r.CreatedAt.In(now.Location())) == today {
			n++
		}
	}
	return n
}

// DailyGoal is today's count measured against the daily goal.
type DailyGoal struct {
	Done    int
	Goal    int
	Percent int // capped at 100
}

// Reached reports whether the goal is met.
func (g DailyGoal) Reached() bool {
	return g.Goal > 0 && g.Done >= g.Goal
}

// Remaining is the number of practices left today.
func (g DailyGoal) Remaining() int {
	return max(g.Goal-g.Done, 0)
}

// GoalProgress measures done against goal.
func GoalProgress(done, goal int) DailyGoal {
	p := DailyGoal{Done: done, Goal: goal}
	if goal > 0 {
		p.Percent = min(done*100/goal, 100)
	}
	return p
}

