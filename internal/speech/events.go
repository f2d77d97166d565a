package speech

import "fmt"

// EventKind discriminates Event.
type EventKind int

const (
	EventPartial EventKind = iota
	EventFinal
	EventEnd
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventPartial:
		return "partial"
	case EventFinal:
		return "final"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a recognition update. Text is set for partial and final events,
// Err for error events.
type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// Terminal reports whether no further events follow.
func (e Event) Terminal() bool {
	return e.Kind == EventEnd || e.Kind == EventError
}

func Partial(text string) Event { return Event{Kind: EventPartial, Text: text} }
func Final(text string) Event   { return Event{Kind: EventFinal, Text: text} }
func End() Event                { return Event{Kind: EventEnd} }
func Failed(err error) Event    { return Event{Kind: EventError, Err: err} }
