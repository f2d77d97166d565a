package speech

import (
	"context"
	"sync"
)

const eventBuffer = 16

// producer does the recognition work for one stream. It calls partial for
// interim transcripts and returns the final transcript once stop is closed
// or the input is exhausted.
type producer func(ctx context.Context, stop <-chan struct{}, partial func(string)) (string, error)

// pipeStream runs a producer on its own goroutine and adapts it to Stream.
type pipeStream struct {
	events   chan Event
	stop     chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func startPipe(ctx context.Context, produce producer) *pipeStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &pipeStream{
		events: make(chan Event, eventBuffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go s.run(ctx, produce)
	return s
}

func (s *pipeStream) run(ctx context.Context, produce producer) {
	defer close(s.done)
	defer close(s.events)
	defer s.cancel()

	text, err := produce(ctx, s.stop, func(t string) { s.send(ctx, Partial(t)) })
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.send(ctx, Failed(err))
		return
	}
	if text != "" {
		s.send(ctx, Final(text))
	}
	s.send(ctx, End())
}

func (s *pipeStream) send(ctx context.Context, ev Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func (s *pipeStream) Events() <-chan Event { return s.events }

func (s *pipeStream) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

func (s *pipeStream) Abort() { s.cancel() }
