package store

import (
	"context"
	"errors"
	"time"
)

// Keys of the well-known key/value slots.
const (
	KeyAuthToken      = "auth_token"
	KeyUserData       = "user_data"
	KeyDailyGoal      = "daily_goal"
	KeyMaterialsCache = "materials_cache"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: not found")

// KVRepo is durable string key/value storage.
type KVRepo interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Apply writes every entry of puts and removes every key of deletes in a
	// single transaction.
	Apply(ctx context.Context, puts map[string]string, deletes []string) error
}

// CacheRepo stores opaque payloads together with the time they were fetched.
type CacheRepo interface {
	// Load returns the raw payload and its fetch time, or ErrNotFound.
	Load(ctx context.Context, key string) (payload []byte, fetchedAt time.Time, err error)

	// Save replaces the payload stored under key.
	Save(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error

	// Remove drops the entry for key.
	Remove(ctx context.Context, key string) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	Path  string    // exact path match when non-empty
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

// RequestEventData captures one attempt of one gateway request.
type RequestEventData struct {
	RequestID    string
	Method       string
	Path         string
	Status       int // 0 when no response was received
	Attempt      int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	Timestamp    time.Time
}

// RequestEvent is a persisted RequestEventData.
type RequestEvent struct {
	ID int
	RequestEventData
}

// PathUsage aggregates request events for one path.
type PathUsage struct {
	Method       string
	Path         string
	Attempts     int
	Failures     int
	Requests     int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to request events.
type EventRepo interface {
	// AppendRequest records a gateway attempt.
	AppendRequest(ctx context.Context, data RequestEventData) error

	// QueryRequests returns events newest first.
	QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error)

	// GetRequest returns a single event by ID, or nil if absent.
	GetRequest(ctx context.Context, id int) (*RequestEvent, error)

	// UsageByPath aggregates events grouped by method and path.
	UsageByPath(ctx context.Context) ([]PathUsage, error)
}
