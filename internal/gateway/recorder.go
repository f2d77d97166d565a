package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/linguaku/linguaku/internal/store"
)

// Attempt describes one try of one request.
type Attempt struct {
	RequestID string
	Method    string
	Path      string
	Status    int // 0 when no response arrived
	Number    int // 1-based
	Latency   time.Duration
	Started   time.Time
	Err       error
}

// Recorder observes every attempt the Client makes.
type Recorder interface {
	RecordAttempt(ctx context.Context, a Attempt)
}

type nopRecorder struct{}

func (nopRecorder) RecordAttempt(context.Context, Attempt) {}

// StoreRecorder persists attempts as request events.
type StoreRecorder struct {
	repo   store.EventRepo
	logger *slog.Logger
}

// NewStoreRecorder creates a recorder writing to repo. Persistence failures
// are logged as warnings and never fail the request.
func NewStoreRecorder(repo store.EventRepo, logger *slog.Logger) *StoreRecorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StoreRecorder{repo: repo, logger: logger}
}

func (r *StoreRecorder) RecordAttempt(ctx context.Context, a Attempt) {
	data := store.RequestEventData{
		RequestID: a.RequestID,
		Method:    a.Method,
		Path:      a.Path,
		Status:    a.Status,
		Attempt:   a.Number,
		LatencyMs: a.Latency.Milliseconds(),
		Success:   a.Err == nil && a.Status > 0 && a.Status < 400,
		Timestamp: a.Started,
	}
	if a.Err != nil {
		data.ErrorMessage = a.Err.Error()
	}

	// The caller's context may already be cancelled; the record still lands.
	if err := r.repo.AppendRequest(context.WithoutCancel(ctx), data); err != nil {
		r.logger.Warn("failed to record request event",
			"request_id", a.RequestID, "path", a.Path, "error", err)
	}
}
