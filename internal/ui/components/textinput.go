package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/linguaku/linguaku/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and optional masking.
type TextInput struct {
	Model textinput.Model
	Label string
}

// NewTextInput creates an unfocused input. Masked inputs echo bullets.
func NewTextInput(label, placeholder string, masked bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	if masked {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return TextInput{Model: ti, Label: label}
}

// Focus focuses the input.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update forwards msg to the underlying model.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label above the field.
func (t TextInput) View() string {
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if t.Focused() {
		style = theme.Selected
	}
	if t.Label == "" {
		return t.Model.View()
	}
	return style.Render(t.Label) + "\n" + t.Model.View()
}

// Value returns the current text.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the text.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}
