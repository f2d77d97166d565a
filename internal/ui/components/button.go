package components

import (
	"strings"

	"github.com/linguaku/linguaku/internal/ui/theme"
)

// Button is an action label with its shortcut key.
type Button struct {
	Label  string
	Key    string
	Active bool
}

// NewButton creates a button shown with key as its shortcut.
func NewButton(label, key string, active bool) Button {
	return Button{Label: label, Key: key, Active: active}
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Key != "" {
		label = "[" + b.Key + "] " + label
	}
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Foreground(theme.TextDim).Render(label)
}

// ButtonRow renders the active buttons of row side by side.
func ButtonRow(row ...Button) string {
	var parts []string
	for _, b := range row {
		if b.Active {
			parts = append(parts, b.View())
		}
	}
	return strings.Join(parts, "  ")
}
