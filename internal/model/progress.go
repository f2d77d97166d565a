package model

import "time"

// WeeklyBucket aggregates one calendar day of practice.
type WeeklyBucket struct {
	Day           string    `json:"day"`
	Date          time.Time `json:"date"`
	PracticeCount int       `json:"practiceCount"`
	AvgScore      int       `json:"avgScore"`
}

// WeeklyInsight is a short summary of how this week compares to the last.
type WeeklyInsight struct {
	Message     string `json:"message"`
	Color       string `json:"color"`
	Improvement int    `json:"improvement"`
	Emoji       string `json:"emoji,omitempty"`

	// HasPrior is set by the local aggregation when the prior window has
	// data. The server does not send it.
	HasPrior bool `json:"-"`
}

// UserStatistics is the server-side lifetime summary for a user.
type UserStatistics struct {
	TotalPractices int     `json:"totalPractices"`
	AverageScore   float64 `json:"averageScore"`
	DayStreak      int     `json:"dayStreak"`
}
