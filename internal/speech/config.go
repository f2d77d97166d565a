package speech

import (
	"fmt"
	"os"
	"time"
)

// Config holds recognizer configuration.
type Config struct {
	// Provider selects the recognizer.
	// Values: "typed", "openai", "gemini", "mock"
	Provider string

	// Language is passed to providers that accept one. Default: "en".
	Language string

	// AudioFile is the recording transcribed by the openai and gemini
	// providers.
	AudioFile string

	OpenAI OpenAIConfig
	Gemini GeminiConfig
	Retry  RetryConfig

	// Timeout bounds one transcription, retries included. Default: 60s.
	Timeout time.Duration
}

// OpenAIConfig holds Whisper configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "whisper-1"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-2.0-flash"
}

// RetryConfig configures retries of remote transcription calls.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "typed",
		Language: "en",
		OpenAI: OpenAIConfig{
			Model: "whisper-1",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("LINGUAKU_STT_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if l := os.Getenv("LINGUAKU_STT_LANGUAGE"); l != "" {
		cfg.Language = l
	}
	if f := os.Getenv("LINGUAKU_AUDIO_FILE"); f != "" {
		cfg.AudioFile = f
	}

	if k := os.Getenv("LINGUAKU_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("LINGUAKU_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("LINGUAKU_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("LINGUAKU_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("LINGUAKU_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	return cfg
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case "typed", "mock":
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("LINGUAKU_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("LINGUAKU_GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown speech provider: %q", c.Provider)
	}
	return nil
}
