package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/genai"
)

const geminiPrompt = "Transcribe the speech in this recording verbatim. " +
	"Reply with the transcript only, without quotes or commentary."

// NewGemini creates a recognizer that sends the recording to Gemini for
// transcription.
func NewGemini(ctx context.Context, cfg Config, logger *slog.Logger) (*FileRecognizer, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	model := cfg.Gemini.Model
	return &FileRecognizer{
		path:    cfg.AudioFile,
		policy:  retryPolicy(cfg.Retry, isTransientGemini),
		timeout: cfg.Timeout,
		transcribe: func(ctx context.Context, opts Options) (string, error) {
			data, err := os.ReadFile(cfg.AudioFile)
			if err != nil {
				return "", fmt.Errorf("read recording: %w", err)
			}
			contents := []*genai.Content{{
				Role: "user",
				Parts: []*genai.Part{
					{InlineData: &genai.Blob{Data: data, MIMEType: AudioMIMEType(cfg.AudioFile)}},
					{Text: geminiInstruction(opts)},
				},
			}}
			result, err := client.Models.GenerateContent(ctx, model, contents, nil)
			if err != nil {
				logger.Warn("gemini transcription failed", "error", err)
				return "", fmt.Errorf("gemini: %w", err)
			}
			return cleanTranscript(result.Text()), nil
		},
	}, nil
}

func geminiInstruction(opts Options) string {
	var b strings.Builder
	b.WriteString(geminiPrompt)
	if opts.Language != "" {
		fmt.Fprintf(&b, " The speaker is using language %q.", opts.Language)
	}
	if opts.Hint != "" {
		fmt.Fprintf(&b, " They were asked to read: %q. Transcribe what was actually said, including mistakes.", opts.Hint)
	}
	return b.String()
}

// cleanTranscript strips wrapping quotes and whitespace models tend to add.
func cleanTranscript(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, "'", "`"} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

func isTransientGemini(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return transientHTTP(apiErr.Code)
	}
	return true
}
