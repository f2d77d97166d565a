// Package practice runs one pronunciation attempt: record, recognize,
// submit for scoring, show the result.
package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/linguaku/linguaku/internal/gateway"
	"github.com/linguaku/linguaku/internal/generation"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/retry"
	"github.com/linguaku/linguaku/internal/speech"
)

// AnalyzeRetryDelay is the wait before the single automatic retry of a
// scoring request that failed at the network level.
const AnalyzeRetryDelay = time.Second

// Analyzer scores a transcript.
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.PracticeResult, error)
}

// Session is the practice state machine for one material. It is safe for
// concurrent use; observers wait on Changes and read Snapshot.
type Session struct {
	rec      speech.Recognizer
	api      Analyzer
	tokens   gateway.TokenSource
	logger   *slog.Logger
	sleep    retry.Sleeper
	delay    time.Duration
	language string

	ctx    context.Context
	cancel context.CancelFunc
	gen    generation.Counter

	changes chan struct{}

	mu       sync.Mutex
	closed   bool
	snap     Snapshot
	stream   speech.Stream
	pumpDone chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithSleeper replaces the wait before the automatic analysis retry.
func WithSleeper(sl retry.Sleeper) Option {
	return func(s *Session) { s.sleep = sl }
}

// WithRetryDelay overrides AnalyzeRetryDelay.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithLanguage sets the recognition language.
func WithLanguage(lang string) Option {
	return func(s *Session) { s.language = lang }
}

// NewSession creates an Idle session for material.
func NewSession(material model.Material, rec speech.Recognizer, api Analyzer, tokens gateway.TokenSource, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		rec:     rec,
		api:     api,
		tokens:  tokens,
		logger:  slog.New(slog.DiscardHandler),
		sleep:   retry.SleepContext,
		delay:   AnalyzeRetryDelay,
		ctx:     ctx,
		cancel:  cancel,
		changes: make(chan struct{}, 1),
		snap:    Snapshot{State: Idle, Material: material},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Changes signals after every state change. Signals are coalesced; read
// Snapshot for the current state. The channel is closed by Close.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// notify must be called with s.mu held.
func (s *Session) notify() {
	if s.closed {
		return
	}
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Start asks for recognition permission and begins recording. A refusal
// returns ErrPermissionDenied and leaves the session where it was.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if err := s.startable(); err != nil {
		s.mu.Unlock()
		return err
	}
	hint := s.snap.Material.TargetText()
	s.mu.Unlock()

	if err := s.rec.RequestPermission(ctx); err != nil {
		if errors.Is(err, speech.ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	stream, err := s.rec.Start(s.ctx, speech.Options{Hint: hint, Language: s.language})
	if err != nil {
		if errors.Is(err, speech.ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("start recognition: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.startable(); err != nil {
		stream.Abort()
		return err
	}

	s.gen.Invalidate()
	tok := s.gen.Token()
	done := make(chan struct{})
	s.stream = stream
	s.pumpDone = done
	s.snap = Snapshot{
		State:     Recording,
		Material:  s.snap.Material,
		AttemptID: uuid.NewString(),
	}
	s.logger.Debug("recording started", "attempt", s.snap.AttemptID, "material", s.snap.Material.ID)
	s.notify()

	go s.pump(tok, stream, done)
	return nil
}

func (s *Session) startable() error {
	if s.closed {
		return ErrClosed
	}
	switch s.snap.State {
	case Idle, Completed, Errored:
		return nil
	default:
		return invalid("start", s.snap.State)
	}
}

// pump applies recognition events in delivery order.
func (s *Session) pump(tok generation.Token, stream speech.Stream, done chan struct{}) {
	defer close(done)
	for ev := range stream.Events() {
		s.apply(tok, ev)
	}
	s.apply(tok, speech.End())
}

func (s *Session) apply(tok generation.Token, ev speech.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !tok.Valid() || s.snap.State != Recording {
		return
	}

	switch ev.Kind {
	case speech.EventPartial, speech.EventFinal:
		s.snap.Transcript = ev.Text
	case speech.EventEnd:
		s.snap.State = Recognized
		s.stream = nil
		s.logger.Debug("recognition finished", "attempt", s.snap.AttemptID, "words", len(strings.Fields(s.snap.Transcript)))
	case speech.EventError:
		s.snap.State = Errored
		s.snap.Err = ev.Err
		s.snap.FailedIn = StageRecognition
		s.stream = nil
		s.logger.Warn("recognition failed", "attempt", s.snap.AttemptID, "error", ev.Err)
	}
	s.notify()
}

// Stop ends recording. On return the session is Recognized (or Errored
// if the recognizer reported a failure).
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.snap.State != Recording {
		st := s.snap.State
		s.mu.Unlock()
		return invalid("stop", st)
	}
	stream, done := s.stream, s.pumpDone
	s.mu.Unlock()

	if err := stream.Stop(ctx); err != nil {
		s.logger.Warn("recognizer did not stop cleanly", "error", err)
		stream.Abort()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Analyze submits the recognized transcript for scoring. A network-level
// failure is retried once after AnalyzeRetryDelay.
func (s *Session) Analyze(ctx context.Context) (*model.PracticeResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.snap.State != Recognized {
		st := s.snap.State
		s.mu.Unlock()
		return nil, invalid("analyze", st)
	}
	if !hasWords(s.snap.Transcript) {
		s.mu.Unlock()
		return nil, ErrEmptyTranscript
	}
	s.mu.Unlock()

	if _, err := s.tokens.Token(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed || s.snap.State != Recognized {
		st := s.snap.State
		s.mu.Unlock()
		return nil, invalid("analyze", st)
	}
	s.snap.State = Analyzing
	tok := s.gen.Token()
	attempt := s.snap.AttemptID
	req := model.AnalyzeRequest{
		RecognizedText: strings.TrimSpace(s.snap.Transcript),
		MaterialID:     s.snap.Material.ID,
	}
	s.notify()
	s.mu.Unlock()

	var result *model.PracticeResult
	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: 2,
		Backoff:     retry.Constant(s.delay),
		IsRetryable: gateway.IsNetwork,
		Sleep:       s.sleep,
	}, func(ctx context.Context, n int) error {
		if n > 1 {
			s.logger.Info("retrying analysis", "attempt", attempt)
		}
		r, err := s.api.Analyze(ctx, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !tok.Valid() || s.snap.State != Analyzing {
		return nil, ErrDiscarded
	}
	if err != nil {
		s.snap.State = Errored
		s.snap.Err = err
		s.snap.FailedIn = StageAnalysis
		s.snap.NeedsLogin = errors.Is(err, gateway.ErrAuthExpired)
		s.logger.Warn("analysis failed", "attempt", attempt, "error", err)
		s.notify()
		return nil, err
	}
	s.snap.State = Completed
	s.snap.Result = result
	s.logger.Info("analysis completed", "attempt", attempt, "score", result.Score)
	s.notify()
	return result, nil
}

// Retry recovers from Errored: a recognition failure goes back to Idle, an
// analysis failure back to Recognized with the transcript kept.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.snap.State != Errored {
		return invalid("retry", s.snap.State)
	}

	if s.snap.FailedIn == StageAnalysis {
		s.snap.State = Recognized
	} else {
		s.snap.State = Idle
		s.snap.Transcript = ""
	}
	s.snap.Err = nil
	s.snap.FailedIn = StageNone
	s.snap.NeedsLogin = false
	s.notify()
	return nil
}

// Reset returns a finished session to Idle, clearing transcript, result
// and error.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	switch s.snap.State {
	case Idle:
		return nil
	case Recognized, Completed, Errored:
	default:
		return invalid("reset", s.snap.State)
	}
	s.snap = Snapshot{State: Idle, Material: s.snap.Material}
	s.notify()
	return nil
}

// Close aborts recognition and discards any pending analysis. It is safe
// to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen.Invalidate()
	if s.stream != nil {
		s.stream.Abort()
		s.stream = nil
	}
	s.cancel()
	s.closed = true
	close(s.changes)
}

func hasWords(s string) bool {
	return strings.TrimSpace(s) != ""
}
