// Package screen defines the contract every page of the terminal UI meets.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/linguaku/linguaku/internal/ui/layout"
)

// Screen is one page of the app. The router owns the stack of screens and
// forwards messages to the one on top.
type Screen interface {
	// Init returns the command to run when the screen becomes active.
	Init() tea.Cmd

	// Update handles a message and returns the (possibly new) screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the body between header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens holding resources (recording sessions,
// in-flight loads) that must be released when the screen leaves the stack.
type Closer interface {
	Close()
}

// InputCapturer is implemented by screens with a focused text field. While
// it reports true, the app does not treat esc or q as navigation.
type InputCapturer interface {
	CapturingInput() bool
}

// StatusProvider lets a screen fill the right-hand side of the header.
type StatusProvider interface {
	Status() layout.Status
}

// ActivityProvider reports what the screen is busy with, for the footer.
// An empty string shows nothing.
type ActivityProvider interface {
	Activity() string
}

// Resumer is implemented by screens that refresh when they become active
// again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}
