package catalog

import (
	"strings"

	"github.com/linguaku/linguaku/internal/model"
)

// Category is the difficulty class of a material level.
type Category int

const (
	Beginner Category = iota
	Intermediate
	Advanced
	Other
)

// CategoryOf classifies a level string, ignoring case and surrounding space.
func CategoryOf(level string) Category {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "beginner":
		return Beginner
	case "intermediate":
		return Intermediate
	case "advanced":
		return Advanced
	default:
		return Other
	}
}

func (c Category) String() string {
	switch c {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	default:
		return "Other"
	}
}

// Icon returns the glyph shown next to the category.
func (c Category) Icon() string {
	switch c {
	case Beginner:
		return "🌱"
	case Intermediate:
		return "⚡"
	case Advanced:
		return "🔥"
	default:
		return "📚"
	}
}

// Group is the materials of one level.
type Group struct {
	Level     string
	Category  Category
	Materials []model.Material
}

// GroupByLevel partitions materials by level. Known levels come first in
// difficulty order, then other levels in the order they first appear.
// Materials keep their relative order inside a group.
func GroupByLevel(materials []model.Material) []Group {
	var known [Other]*Group
	var others []*Group
	byLevel := map[string]*Group{}

	for _, m := range materials {
		cat := CategoryOf(m.Level)
		var g *Group
		if cat != Other {
			if known[cat] == nil {
				known[cat] = &Group{Level: cat.String(), Category: cat}
			}
			g = known[cat]
		} else {
			level := strings.TrimSpace(m.Level)
			if level == "" {
				level = Other.String()
			}
			g = byLevel[level]
			if g == nil {
				g = &Group{Level: level, Category: Other}
				byLevel[level] = g
				others = append(others, g)
			}
		}
		g.Materials = append(g.Materials, m)
	}

	out := make([]Group, 0, len(known)+len(others))
	for _, g := range known {
		if g != nil {
			out = append(out, *g)
		}
	}
	for _, g := range others {
		out = append(out, *g)
	}
	return out
}

// Stats summarises a material list for the settings screen.
type Stats struct {
	Materials  int
	Items      int
	ByCategory map[Category]int
}

// Summarize counts materials and practice items.
func Summarize(materials []model.Material) Stats {
	s := Stats{Materials: len(materials), ByCategory: map[Category]int{}}
	for _, m := range materials {
		s.Items += m.ItemCount()
		s.ByCategory[CategoryOf(m.Level)]++
	}
	return s
}
