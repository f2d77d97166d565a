package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// NewRecognizer creates the Recognizer selected by cfg. Typed recognition
// reads from in.
func NewRecognizer(ctx context.Context, cfg Config, in io.Reader, logger *slog.Logger) (Recognizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "typed":
		return NewTyped(in), nil
	case "mock":
		return NewMock(), nil
	case "openai":
		r, err := NewOpenAI(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing openai recognizer: %w", err)
		}
		return r, nil
	case "gemini":
		r, err := NewGemini(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini recognizer: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown speech provider: %q", cfg.Provider)
	}
}
