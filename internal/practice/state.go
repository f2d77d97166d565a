package practice

import (
	"errors"
	"fmt"

	"github.com/linguaku/linguaku/internal/gateway"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/speech"
)

var (
	// ErrPermissionDenied is returned by Start when the recognizer refuses.
	ErrPermissionDenied = speech.ErrPermissionDenied

	// ErrEmptyTranscript is returned by Analyze when nothing was recognized.
	ErrEmptyTranscript = errors.New("practice: transcript is empty")

	// ErrNotAuthenticated is returned by Analyze without a stored token.
	ErrNotAuthenticated = gateway.ErrNotAuthenticated

	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current state.
	ErrInvalidTransition = errors.New("practice: operation not allowed in current state")

	// ErrDiscarded is returned by Analyze when the session was reset or
	// closed while the request was in flight.
	ErrDiscarded = errors.New("practice: result discarded")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("practice: session closed")
)

// State is the phase of a practice attempt.
type State int

const (
	Idle State = iota
	Recording
	Recognized
	Analyzing
	Completed
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Recognized:
		return "recognized"
	case Analyzing:
		return "analyzing"
	case Completed:
		return "completed"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stage tells which step an Errored session failed in.
type Stage int

const (
	StageNone Stage = iota
	StageRecognition
	StageAnalysis
)

// Snapshot is a copy of the session state.
type Snapshot struct {
	State      State
	Material   model.Material
	AttemptID  string
	Transcript string
	Result     *model.PracticeResult
	Err        error
	FailedIn   Stage
	// NeedsLogin is set when analysis was rejected with an expired token.
	NeedsLogin bool
}

// CanAnalyze reports whether Analyze would be accepted, ignoring auth.
func (s Snapshot) CanAnalyze() bool {
	return s.State == Recognized && hasWords(s.Transcript)
}

func invalid(op string, s State) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, s)
}
