// Package env carries the services every screen is built from.
package env

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/linguaku/linguaku/internal/auth"
	"github.com/linguaku/linguaku/internal/catalog"
	"github.com/linguaku/linguaku/internal/gateway"
	"github.com/linguaku/linguaku/internal/history"
	"github.com/linguaku/linguaku/internal/prefs"
	"github.com/linguaku/linguaku/internal/screen"
	"github.com/linguaku/linguaku/internal/speech"
)

// RequestTimeout bounds one screen-initiated load.
const RequestTimeout = 2 * time.Minute

// Env is shared by all screens of one app run.
type Env struct {
	Auth       *auth.Service
	Session    *auth.SessionContext
	API        *gateway.Client
	Catalog    *catalog.Loader
	History    *history.Manager
	Prefs      *prefs.Prefs
	Recognizer speech.Recognizer
	// Typing feeds a typed recognizer from the practice screen's input
	// field. Nil when a speech provider records audio instead.
	Typing     io.Writer
	Language   string
	Logger     *slog.Logger
	Now        func() time.Time

	// Screen factories break the import cycle between sign-in and home.
	Home  func() screen.Screen
	Login func() screen.Screen
}

// Clock returns Now, defaulting to time.Now.
func (e *Env) Clock() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Log returns the logger, never nil.
func (e *Env) Log() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// Context returns a context bounded by RequestTimeout.
func (e *Env) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), RequestTimeout)
}

// Describe turns an error into a line fit for the screen.
func Describe(err error) string {
	var ve *auth.ValidationError
	var se *gateway.ServerError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, gateway.ErrAuthExpired):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, gateway.ErrNotAuthenticated):
		return "Please sign in first."
	case errors.Is(err, gateway.ErrVerificationRequired):
		return "Please verify your email before signing in."
	case errors.Is(err, speech.ErrPermissionDenied):
		return "Microphone access is not available."
	case gateway.IsNetwork(err):
		var ne *gateway.NetworkError
		if errors.As(err, &ne) && ne.Timeout() {
			return "The request timed out. Check your connection and try again."
		}
		return "Could not reach the server. Check your connection and try again."
	case errors.As(err, &se):
		if se.Message != "" {
			return se.Message
		}
		return "The server could not complete the request."
	default:
		return err.Error()
	}
}

// NeedsLogin reports whether err means the stored session is gone.
func NeedsLogin(err error) bool {
	return errors.Is(err, gateway.ErrAuthExpired) || errors.Is(err, gateway.ErrNotAuthenticated)
}
