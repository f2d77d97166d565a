package practice

import "github.com/linguaku/linguaku/internal/model"

// changedMsg is sent whenever the session snapshot changes.
type changedMsg struct{}

// closedMsg is sent once the session's change channel is closed.
type closedMsg struct{}

// opDoneMsg reports the outcome of a blocking session call.
type opDoneMsg struct {
	op     string
	result *model.PracticeResult
	err    error
}

// typedMsg confirms a typed line reached the recognizer.
type typedMsg struct {
	err error
}
