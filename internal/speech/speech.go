// Package speech turns the learner's voice (or a stand-in for it) into text.
//
// A Recognizer opens one Stream per recording. The stream reports progress
// as Events on a channel: zero or more partial transcripts, at most one final
// transcript, then exactly one End or Error, after which the channel is
// closed. Abort closes the channel without a terminal event.
package speech

import (
	"context"
	"errors"
)

// ErrPermissionDenied is returned by RequestPermission when recognition
// cannot be used (no microphone access, no audio source configured).
var ErrPermissionDenied = errors.New("speech: permission denied")

// Options configures one recognition run.
type Options struct {
	// Hint is the text the learner is expected to say. Providers that
	// support prompting use it to bias recognition.
	Hint string

	// Language is a BCP-47 or ISO-639-1 code. Empty uses the provider default.
	Language string
}

// Recognizer starts recognition streams.
type Recognizer interface {
	RequestPermission(ctx context.Context) error
	Start(ctx context.Context, opts Options) (Stream, error)
}

// Stream is a single recognition run.
type Stream interface {
	// Events delivers recognition progress in order.
	Events() <-chan Event

	// Stop asks the recognizer to finish with what it has. It returns once
	// the event channel is closed or ctx is done.
	Stop(ctx context.Context) error

	// Abort tears the stream down. Pending results are dropped.
	Abort()
}
