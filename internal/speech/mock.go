package speech

import (
	"context"
	"sync"
)

// Mock is a scripted Recognizer for tests.
type Mock struct {
	mu      sync.Mutex
	deny    bool
	script  []Event
	streams []*MockStream
}

// NewMock returns a recognizer whose streams replay script. If the script
// has no terminal event the stream stays open until Stop, Abort or Emit.
func NewMock(script ...Event) *Mock {
	return &Mock{script: script}
}

// Deny makes RequestPermission fail.
func (m *Mock) Deny(deny bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deny = deny
}

// SetScript replaces the events replayed by future streams.
func (m *Mock) SetScript(script ...Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = script
}

func (m *Mock) RequestPermission(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deny {
		return ErrPermissionDenied
	}
	return nil
}

func (m *Mock) Start(ctx context.Context, opts Options) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	s := &MockStream{Opts: opts, events: make(chan Event, 64)}
	m.streams = append(m.streams, s)
	script := append([]Event(nil), m.script...)
	m.mu.Unlock()

	for _, ev := range script {
		s.Emit(ev)
	}
	return s, nil
}

// Starts returns the number of streams started so far.
func (m *Mock) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

// Last returns the most recently started stream, or nil.
func (m *Mock) Last() *MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.streams) == 0 {
		return nil
	}
	return m.streams[len(m.streams)-1]
}

// MockStream is a stream driven by the test.
type MockStream struct {
	Opts Options

	mu      sync.Mutex
	events  chan Event
	closed  bool
	aborted bool
	stopped bool
}

func (s *MockStream) Events() <-chan Event { return s.events }

// Emit delivers ev. Terminal events close the stream. Emitting on a closed
// stream is a no-op.
func (s *MockStream) Emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.events <- ev
	if ev.Terminal() {
		s.closed = true
		close(s.events)
	}
}

// Stop ends the stream with an End event if it is still open.
func (s *MockStream) Stop(context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.Emit(End())
	return nil
}

// Abort closes the stream without a terminal event.
func (s *MockStream) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = true
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// Aborted reports whether Abort was called.
func (s *MockStream) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Stopped reports whether Stop was called.
func (s *MockStream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
