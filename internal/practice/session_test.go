package practice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/gateway"
	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/speech"
)

type fakeAnalyzer struct {
	mu     sync.Mutex
	errs   []error
	result model.PracticeResult
	reqs   []model.AnalyzeRequest
	block  chan struct{}
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req model.AnalyzeRequest) (*model.PracticeResult, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	var err error
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	r := f.result
	return &r, nil
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type tokens struct{ err error }

func (t tokens) Token(context.Context) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return "tok", nil
}

type sleeps struct {
	mu sync.Mutex
	d  []time.Duration
}

func (s *sleeps) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d = append(s.d, d)
	return nil
}

var material = model.Material{ID: "m1", Title: "Greetings", Items: []model.PracticeItem{{Text: "Good morning everyone"}}}

var (
	errOffline = &gateway.NetworkError{Reason: gateway.ReasonTransport, Message: "offline"}
	errServer  = &gateway.ServerError{Status: 500, Message: "boom"}
)

type harness struct {
	rec     *speech.Mock
	api     *fakeAnalyzer
	sleeps  *sleeps
	session *Session
}

func newHarness(t *testing.T, tok tokens) *harness {
	t.Helper()
	h := &harness{
		rec:    speech.NewMock(),
		api:    &fakeAnalyzer{result: model.PracticeResult{Score: 80, Transcription: "good morning everyone"}},
		sleeps: &sleeps{},
	}
	h.session = NewSession(material, h.rec, h.api, tok, WithSleeper(h.sleeps.sleep))
	t.Cleanup(h.session.Close)
	return h
}

func (h *harness) state() State { return h.session.Snapshot().State }

// record runs Start, feeds text as the final transcript and stops.
func (h *harness) record(t *testing.T, text string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.session.Start(ctx))
	if text != "" {
		h.rec.Last().Emit(speech.Final(text))
	}
	require.NoError(t, h.session.Stop(ctx))
	require.Equal(t, Recognized, h.state())
}

func TestStart_PermissionDenied(t *testing.T) {
	h := newHarness(t, tokens{})
	h.rec.Deny(true)

	err := h.session.Start(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, Idle, h.state())
	assert.Equal(t, 0, h.rec.Starts())
}

func TestFullAttempt(t *testing.T) {
	h := newHarness(t, tokens{})
	ctx := context.Background()

	require.NoError(t, h.session.Start(ctx))
	assert.Equal(t, Recording, h.state())
	assert.Equal(t, "Good morning everyone", h.rec.Last().Opts.Hint)
	assert.NotEmpty(t, h.session.Snapshot().AttemptID)

	h.rec.Last().Emit(speech.Partial("good"))
	h.rec.Last().Emit(speech.Final("good morning everyone"))
	assert.Eventually(t, func() bool {
		return h.session.Snapshot().Transcript == "good morning everyone"
	}, time.Second, time.Millisecond)

	require.NoError(t, h.session.Stop(ctx))
	assert.Equal(t, Recognized, h.state())
	assert.True(t, h.session.Snapshot().CanAnalyze())

	res, err := h.session.Analyze(ctx)
	require.NoError(t, err)
	assert.Equal(t, 80, res.Score)

	snap := h.session.Snapshot()
	assert.Equal(t, Completed, snap.State)
	assert.Equal(t, "good morning everyone", snap.Transcript)
	assert.Equal(t, []model.AnalyzeRequest{{RecognizedText: "good morning everyone", MaterialID: "m1"}}, h.api.reqs)
}

func TestChangesSignalled(t *testing.T) {
	h := newHarness(t, tokens{})
	require.NoError(t, h.session.Start(context.Background()))

	select {
	case <-h.session.Changes():
	case <-time.After(time.Second):
		t.Fatal("no change signal")
	}

	h.session.Close()
	_, ok := <-h.session.Changes()
	assert.False(t, ok)
}

func TestRecognitionError(t *testing.T) {
	h := newHarness(t, tokens{})
	require.NoError(t, h.session.Start(context.Background()))
	h.rec.Last().Emit(speech.Partial("good"))
	h.rec.Last().Emit(speech.Failed(errors.New("mic unplugged")))

	assert.Eventually(t, func() bool { return h.state() == Errored }, time.Second, time.Millisecond)
	snap := h.session.Snapshot()
	assert.Equal(t, StageRecognition, snap.FailedIn)
	assert.EqualError(t, snap.Err, "mic unplugged")

	require.NoError(t, h.session.Retry())
	snap = h.session.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Transcript)
	assert.NoError(t, snap.Err)
}

func TestAnalyze_EmptyTranscript(t *testing.T) {
	h := newHarness(t, tokens{})
	h.record(t, "")

	_, err := h.session.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrEmptyTranscript)
	assert.Equal(t, Recognized, h.state())
	assert.Equal(t, 0, h.api.calls())
}

func TestAnalyze_WhitespaceTranscript(t *testing.T) {
	h := newHarness(t, tokens{})
	h.record(t, "   ")

	_, err := h.session.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrEmptyTranscript)
	assert.Equal(t, 0, h.api.calls())
}

func TestAnalyze_NotAuthenticated(t *testing.T) {
	h := newHarness(t, tokens{err: gateway.ErrNotAuthenticated})
	h.record(t, "good morning")

	_, err := h.session.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, Recognized, h.state())
	assert.Equal(t, 0, h.api.calls())
}

func TestAnalyze_RequiresRecognized(t *testing.T) {
	h := newHarness(t, tokens{})
	_, err := h.session.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAnalyze_NetworkRetriedOnce(t *testing.T) {
	h := newHarness(t, tokens{})
	h.api.errs = []error{errOffline}
	h.record(t, "good morning")

	_, err := h.session.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Completed, h.state())
	assert.Equal(t, 2, h.api.calls())
	assert.Equal(t, []time.Duration{time.Second}, h.sleeps.d)
}

func TestAnalyze_SecondNetworkFailure(t *testing.T) {
	h := newHarness(t, tokens{})
	h.api.errs = []error{errOffline, errOffline}
	h.record(t, "good morning")

	_, err := h.session.Analyze(context.Background())
	assert.True(t, gateway.IsNetwork(err))
	assert.Equal(t, 2, h.api.calls())

	snap := h.session.Snapshot()
	assert.Equal(t, Errored, snap.State)
	assert.Equal(t, StageAnalysis, snap.FailedIn)

	require.NoError(t, h.session.Retry())
	snap = h.session.Snapshot()
	assert.Equal(t, Recognized, snap.State)
	assert.Equal(t, "good morning", snap.Transcript)

	_, err = h.session.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Completed, h.state())
}

func TestAnalyze_ServerErrorNotRetried(t *testing.T) {
	h := newHarness(t, tokens{})
	h.api.errs = []error{errServer}
	h.record(t, "good morning")

	_, err := h.session.Analyze(context.Background())
	assert.ErrorIs(t, err, errServer)
	assert.Equal(t, 1, h.api.calls())
	assert.Empty(t, h.sleeps.d)
	assert.Equal(t, Errored, h.state())
	assert.False(t, h.session.Snapshot().NeedsLogin)
}

func TestAnalyze_ExpiredTokenNeedsLogin(t *testing.T) {
	h := newHarness(t, tokens{})
	h.api.errs = []error{gateway.ErrAuthExpired}
	h.record(t, "good morning")

	_, err := h.session.Analyze(context.Background())
	assert.ErrorIs(t, err, gateway.ErrAuthExpired)
	assert.Equal(t, 1, h.api.calls())
	assert.True(t, h.session.Snapshot().NeedsLogin)
}

func TestClose_DiscardsPendingAnalysis(t *testing.T) {
	h := newHarness(t, tokens{})
	h.api.block = make(chan struct{})
	h.record(t, "good morning")

	errc := make(chan error, 1)
	go func() {
		_, err := h.session.Analyze(context.Background())
		errc <- err
	}()
	assert.Eventually(t, func() bool { return h.api.calls() == 1 }, time.Second, time.Millisecond)

	h.session.Close()
	close(h.api.block)
	assert.ErrorIs(t, <-errc, ErrDiscarded)
	assert.Equal(t, Analyzing, h.state())
}

func TestClose_AbortsRecording(t *testing.T) {
	h := newHarness(t, tokens{})
	require.NoError(t, h.session.Start(context.Background()))

	h.session.Close()
	assert.True(t, h.rec.Last().Aborted())
	assert.ErrorIs(t, h.session.Start(context.Background()), ErrClosed)
}

func TestReset(t *testing.T) {
	h := newHarness(t, tokens{})
	ctx := context.Background()
	require.NoError(t, h.session.Reset())

	require.NoError(t, h.session.Start(ctx))
	assert.ErrorIs(t, h.session.Reset(), ErrInvalidTransition)
	require.NoError(t, h.session.Stop(ctx))

	h.session.Close()
	h = newHarness(t, tokens{})
	h.record(t, "good morning")
	_, err := h.session.Analyze(ctx)
	require.NoError(t, err)

	require.NoError(t, h.session.Reset())
	snap := h.session.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Transcript)
	assert.Nil(t, snap.Result)
	assert.Equal(t, material.ID, snap.Material.ID)
}

func TestStartAgainAfterCompleted(t *testing.T) {
	h := newHarness(t, tokens{})
	h.record(t, "good morning")
	_, err := h.session.Analyze(context.Background())
	require.NoError(t, err)

	require.NoError(t, h.session.Start(context.Background()))
	snap := h.session.Snapshot()
	assert.Equal(t, Recording, snap.State)
	assert.Nil(t, snap.Result)
	assert.Equal(t, 2, h.rec.Starts())
}

func TestStop_NotRecording(t *testing.T) {
	h := newHarness(t, tokens{})
	assert.ErrorIs(t, h.session.Stop(context.Background()), ErrInvalidTransition)
}

func TestHighlight(t *testing.T) {
	res := &model.PracticeResult{
		Transcription: "Good morning, every one",
		MistakeWords:  []string{"morning"},
	}
	words := Highlight("Good morning, everyone!", res)
	require.Len(t, words, 3)
	assert.Equal(t, Word{Text: "Good", Status: WordCorrect}, words[0])
	assert.Equal(t, Word{Text: "morning,", Status: WordMistake}, words[1])
	assert.Equal(t, Word{Text: "everyone!", Status: WordMissing}, words[2])

	assert.Nil(t, Highlight("   ", res))
	for _, w := range Highlight("a b", nil) {
		assert.Equal(t, WordMissing, w.Status)
	}
}
