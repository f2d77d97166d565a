// Package gateway talks to the Linguaku HTTP API. Every call goes through
// Client.Do, which applies a per-attempt timeout, retries network failures
// with linear backoff, attaches the bearer token and records each attempt.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/linguaku/linguaku/internal/retry"
)

// TokenSource supplies the bearer token for authenticated calls. It returns
// ErrNotAuthenticated when the user is signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Request describes one logical API call.
type Request struct {
	Method string
	Path   string // relative to Config.BaseURL
	Body   any    // JSON-encoded when non-nil
	Auth   bool   // attach the bearer token

	// Timeout overrides Config.Timeout for each attempt when > 0.
	Timeout time.Duration

	// Retries overrides Config.Retries when > 0. Negative disables retries.
	Retries int
}

// Response is a received HTTP response with its body fully read.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
	Attempts  int

	authenticated bool
}

// Client is the request layer over the remote API.
type Client struct {
	cfg      Config
	http     *http.Client
	tokens   TokenSource
	recorder Recorder
	sleep    retry.Sleeper
	newID    func() string
	now      func() time.Time
	logger   *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRecorder sets the per-attempt recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithSleeper replaces the wait used between retries.
func WithSleeper(s retry.Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client.
func New(cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = def.RetryBase
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	c := &Client{
		cfg:      cfg,
		http:     &http.Client{},
		recorder: nopRecorder{},
		sleep:    retry.SleepContext,
		newID:    uuid.NewString,
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Do performs req. Timeouts and transport failures are retried; any
// received response is returned as is, whatever its status.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var token string
	if req.Auth {
		t, err := c.token(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}

	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.Method, req.Path, err)
		}
		body = b
	}

	timeout := c.cfg.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	retries := c.cfg.Retries
	switch {
	case req.Retries > 0:
		retries = req.Retries
	case req.Retries < 0:
		retries = 0
	}

	requestID := c.newID()
	policy := retry.Policy{
		MaxAttempts: retries + 1,
		Backoff:     retry.Linear(c.cfg.RetryBase),
		IsRetryable: IsNetwork,
		Sleep:       c.sleep,
	}

	var resp *Response
	err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		r, err := c.attempt(ctx, req, token, body, requestID, attempt, timeout)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", ErrNotAuthenticated
	}
	t, err := c.tokens.Token(ctx)
	if errors.Is(err, ErrNotAuthenticated) || (err == nil && t == "") {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return t, nil
}

func (c *Client) attempt(ctx context.Context, req Request, token string, body []byte, requestID string, n int, timeout time.Duration) (*Response, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(actx, req.Method, c.cfg.url(req.Path), rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := c.now()
	var (
		status int
		header http.Header
		data   []byte
	)
	res, err := c.http.Do(httpReq)
	if err == nil {
		status = res.StatusCode
		header = res.Header
		data, err = io.ReadAll(res.Body)
		res.Body.Close()
	}
	latency := c.now().Sub(start)

	if err != nil {
		err = classify(ctx, actx, err)
	}

	c.recorder.RecordAttempt(ctx, Attempt{
		RequestID: requestID,
		Method:    req.Method,
		Path:      req.Path,
		Status:    status,
		Number:    n,
		Latency:   latency,
		Started:   start,
		Err:       err,
	})

	if err != nil {
		c.logger.Debug("request attempt failed",
			"request_id", requestID, "method", req.Method, "path", req.Path,
			"attempt", n, "error", err)
		return nil, err
	}

	c.logger.Debug("request completed",
		"request_id", requestID, "method", req.Method, "path", req.Path,
		"attempt", n, "status", status, "latency", latency)

	return &Response{
		Status:        status,
		Header:        header,
		Body:          data,
		RequestID:     requestID,
		Attempts:      n,
		authenticated: req.Auth,
	}, nil
}

// classify maps a failed round trip to a NetworkError, unless the caller's
// own context ended, in which case its error is returned unchanged.
func classify(parent, attempt context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return &NetworkError{
			Reason:  ReasonTimeout,
			Message: "Request timeout. Please check your internet connection and try again.",
			Err:     err,
		}
	}
	return &NetworkError{Reason: ReasonTransport, Err: err}
}
