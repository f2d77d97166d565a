package analytics

import "github.com/linguaku/linguaku/internal/model"

type insightText struct {
	message string
	emoji   string
}

var insightByBand = map[Band]insightText{
	Excellent:    {"Outstanding pronunciation this week. Keep it up!", "🏆"},
	Good:         {"Great progress! Your pronunciation is getting clearer.", "🌟"},
	Fair:         {"Good effort. A few more sessions will make a difference.", "💪"},
	NeedPractice: {"Keep practicing. Every session counts.", "📚"},
}

// ComputeInsight compares the current window with the prior one. The color
// follows the band of this window's average. Improvement is zero and
// HasPrior false when the prior window has no practice.
func ComputeInsight(current, prior []model.WeeklyBucket) model.WeeklyInsight {
	cur := Summarize(current)
	if cur.DaysActive == 0 {
		return model.WeeklyInsight{
			Message: "No practice this week yet. Start a session to see your insight.",
			Color:   ColorGray,
			Emoji:   "💡",
		}
	}

	band := BandFor(cur.AverageScore)
	text := insightByBand[band]
	in := model.WeeklyInsight{
		Message: text.message,
		Color:   band.Color(),
		Emoji:   text.emoji,
	}

	if prev := Summarize(prior); prev.DaysActive > 0 {
		in.HasPrior = true
		in.Improvement = cur.AverageScore - prev.AverageScore
	}
	return in
}
