package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// NewOpenAI creates a Whisper-backed recognizer for the recording at path.
func NewOpenAI(cfg Config, logger *slog.Logger) (*FileRecognizer, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	config := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		config.BaseURL = cfg.OpenAI.BaseURL
	}
	return newWhisper(openai.NewClientWithConfig(config), cfg, logger), nil
}

func newWhisper(client *openai.Client, cfg Config, logger *slog.Logger) *FileRecognizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	model := cfg.OpenAI.Model
	if model == "" {
		model = openai.Whisper1
	}
	lang := cfg.Language
	return &FileRecognizer{
		path:    cfg.AudioFile,
		policy:  retryPolicy(cfg.Retry, isTransientOpenAI),
		timeout: cfg.Timeout,
		transcribe: func(ctx context.Context, opts Options) (string, error) {
			l := opts.Language
			if l == "" {
				l = lang
			}
			resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
				Model:    model,
				FilePath: cfg.AudioFile,
				Prompt:   opts.Hint,
				Language: l,
				Format:   openai.AudioResponseFormatJSON,
			})
			if err != nil {
				logger.Warn("whisper transcription failed", "error", err)
				return "", fmt.Errorf("whisper: %w", err)
			}
			return resp.Text, nil
		},
	}
}

func isTransientOpenAI(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return transientHTTP(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return transientHTTP(reqErr.HTTPStatusCode)
	}
	return true
}
