package speech

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// Typed stands in for a microphone in terminals: the learner types what
// they said. Each line extends the transcript; a blank line or end of
// input finishes the recording.
type Typed struct {
	in    io.Reader
	once  sync.Once
	lines chan string
	err   error
}

// NewTyped reads transcripts from in.
func NewTyped(in io.Reader) *Typed {
	return &Typed{in: in}
}

// RequestPermission always succeeds.
func (t *Typed) RequestPermission(context.Context) error { return nil }

// Start begins a recording that reads from the shared input.
func (t *Typed) Start(ctx context.Context, _ Options) (Stream, error) {
	t.once.Do(t.startReader)
	return startPipe(ctx, t.produce), nil
}

// startReader runs one reader for the lifetime of t so that lines typed
// after a stream ends are delivered to the next stream.
func (t *Typed) startReader() {
	t.lines = make(chan string)
	go func() {
		defer close(t.lines)
		sc := bufio.NewScanner(t.in)
		for sc.Scan() {
			t.lines <- sc.Text()
		}
		t.err = sc.Err()
	}()
}

func (t *Typed) produce(ctx context.Context, stop <-chan struct{}, partial func(string)) (string, error) {
	var words []string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-stop:
			return strings.Join(words, " "), nil
		case line, ok := <-t.lines:
			if !ok {
				if t.err != nil && len(words) == 0 {
					return "", t.err
				}
				return strings.Join(words, " "), nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				if len(words) > 0 {
					return strings.Join(words, " "), nil
				}
				continue
			}
			words = append(words, line)
			partial(strings.Join(words, " "))
		}
	}
}
