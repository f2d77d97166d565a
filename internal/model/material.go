package model

import "strings"

// PracticeItem is one practicable sentence inside a material.
type PracticeItem struct {
	Text string `json:"text"`
}

// Material is a unit of practice content as served by the API.
type Material struct {
	ID       string         `json:"_id"`
	Title    string         `json:"title"`
	Category string         `json:"category,omitempty"`
	Level    string         `json:"level,omitempty"`
	Text     string         `json:"text,omitempty"`
	Items    []PracticeItem `json:"items,omitempty"`
}

// TargetText returns the text the learner is asked to read aloud.
// Older materials carry a single top-level text; newer ones an item list.
func (m Material) TargetText() string {
	if t := strings.TrimSpace(m.Text); t != "" {
		return t
	}
	for _, it := range m.Items {
		if t := strings.TrimSpace(it.Text); t != "" {
			return t
		}
	}
	return ""
}

// ItemCount returns the number of practice items, counting a bare text
// material as one item.
func (m Material) ItemCount() int {
	if len(m.Items) > 0 {
		return len(m.Items)
	}
	if m.Text != "" {
		return 1
	}
	return 0
}
