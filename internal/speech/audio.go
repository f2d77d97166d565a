package speech

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linguaku/linguaku/internal/retry"
)

// audioMIME covers recording formats mime.TypeByExtension may not know.
var audioMIME = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
	".aiff": "audio/aiff",
}

// AudioMIMEType guesses the MIME type of a recording from its extension.
func AudioMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioMIME[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "audio/") {
		return t
	}
	return "application/octet-stream"
}

// checkAudioFile is the permission check of the file-backed providers.
func checkAudioFile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no recording configured (set LINGUAKU_AUDIO_FILE)", ErrPermissionDenied)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrPermissionDenied, path)
	}
	return nil
}

// FileRecognizer transcribes an existing recording with a remote model.
// A stream is one transcription call; Stop waits for it to finish.
type FileRecognizer struct {
	path       string
	policy     retry.Policy
	timeout    time.Duration
	transcribe func(ctx context.Context, opts Options) (string, error)
}

func (f *FileRecognizer) RequestPermission(context.Context) error {
	return checkAudioFile(f.path)
}

func (f *FileRecognizer) Start(ctx context.Context, opts Options) (Stream, error) {
	if err := checkAudioFile(f.path); err != nil {
		return nil, err
	}
	return startPipe(ctx, func(ctx context.Context, _ <-chan struct{}, _ func(string)) (string, error) {
		if f.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.timeout)
			defer cancel()
		}
		var text string
		err := retry.Do(ctx, f.policy, func(ctx context.Context, _ int) error {
			t, err := f.transcribe(ctx, opts)
			if err != nil {
				return err
			}
			text = strings.TrimSpace(t)
			return nil
		})
		return text, err
	}), nil
}

func retryPolicy(cfg RetryConfig, retryable func(error) bool) retry.Policy {
	return retry.Policy{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     retry.Exponential(cfg.InitialWait, cfg.MaxWait, cfg.Multiplier),
		IsRetryable: retryable,
	}
}

// transientHTTP reports whether an HTTP status is worth retrying.
func transientHTTP(status int) bool {
	return status == 429 || status >= 500
}
