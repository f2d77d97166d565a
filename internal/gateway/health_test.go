package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/gateway/fakeapi"
)

func TestCanonicalVersion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"1.2.0", "v1.2.0"},
		{"v1.2", "v1.2.0"},
		{" 2.0.1 ", "v2.0.1"},
		{"banana", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalVersion(tt.in), "input %q", tt.in)
	}
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible(""))
	assert.True(t, Compatible("v1.0.0"))
	assert.True(t, Compatible("v2.3.1"))
	assert.False(t, Compatible("v0.9.9"))
}

func TestHealth(t *testing.T) {
	api := fakeapi.New(t)
	cfg := DefaultConfig()
	cfg.BaseURL = api.URL()
	c := New(cfg)

	hs, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, hs.OK)
	assert.Equal(t, "OK", hs.Status)
	assert.Equal(t, "v1.2.0", hs.Version)
	assert.True(t, hs.Compatible)

	api.SetVersion("0.5.0")
	hs, err = c.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, hs.Compatible)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LINGUAKU_API_URL", "http://localhost:5000/api")
	t.Setenv("LINGUAKU_API_TIMEOUT", "5s")
	t.Setenv("LINGUAKU_API_RETRIES", "4")

	cfg := ConfigFromEnv()
	assert.Equal(t, "http://localhost:5000/api", cfg.BaseURL)
	assert.Equal(t, "5s", cfg.Timeout.String())
	assert.Equal(t, 4, cfg.Retries)

	t.Setenv("LINGUAKU_API_RETRIES", "-3")
	t.Setenv("LINGUAKU_API_TIMEOUT", "soon")
	cfg = ConfigFromEnv()
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, DefaultConfig().Timeout, cfg.Timeout)
}

func TestConfigURL(t *testing.T) {
	cfg := Config{BaseURL: "http://x/api/"}
	assert.Equal(t, "http://x/api/materials", cfg.url("/materials"))
	assert.Equal(t, "https://other/h", cfg.url("https://other/h"))
}
