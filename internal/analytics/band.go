package analytics

import "github.com/linguaku/linguaku/internal/model"

// Band is a named score range.
type Band int

const (
	NeedPractice Band = iota
	Fair
	Good
	Excellent
)

// BandFor maps a score to its band. Lower bounds are inclusive.
func BandFor(score int) Band {
	switch {
	case score >= 90:
		return Excellent
	case score >= 75:
		return Good
	case score >= 60:
		return Fair
	default:
		return NeedPractice
	}
}

func (b Band) String() string {
	switch b {
	case Excellent:
		return "Excellent"
	case Good:
		return "Good"
	case Fair:
		return "Fair"
	default:
		return "Need Practice"
	}
}

// Color names the display color of the band.
func (b Band) Color() string {
	switch b {
	case Excellent:
		return ColorGreen
	case Good:
		return ColorBlue
	case Fair:
		return ColorOrange
	default:
		return ColorRed
	}
}

// Range is the legend text for the band.
func (b Band) Range() string {
	switch b {
	case Excellent:
		return "90-100"
	case Good:
		return "75-89"
	case Fair:
		return "60-74"
	default:
		return "0-59"
	}
}

// Display colors.
const (
	ColorGreen  = "green"
	ColorBlue   = "blue"
	ColorOrange = "orange"
	ColorRed    = "red"
	ColorGray   = "gray"
)

// BucketColor is the bar color of a day: gray without practice, otherwise
// the color of its average score band.
func BucketColor(b model.WeeklyBucket) string {
	if b.PracticeCount == 0 {
		return ColorGray
	}
	return BandFor(b.AvgScore).Color()
}
