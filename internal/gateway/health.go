package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// MinServerVersion is the oldest API version this client understands.
const MinServerVersion = "v1.0.0"

// HealthStatus is the result of probing the API.
type HealthStatus struct {
	OK         bool
	Status     string
	Version    string // canonical semver, empty when the server sends none
	Compatible bool
	Latency    time.Duration
}

// Health probes the API. It does not retry and does not require auth.
// The body may be a bare {status, version} object or the usual envelope.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathHealth, Retries: -1})
	if err != nil {
		return nil, err
	}

	hs := &HealthStatus{
		OK:      resp.Status < 400,
		Latency: time.Since(start),
	}

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Version string `json:"version"`
		Data    struct {
			Status  string `json:"status"`
			Version string `json:"version"`
		} `json:"data"`
	}
	_ = json.Unmarshal(resp.Body, &body)

	hs.Status = firstNonEmpty(body.Status, body.Data.Status, body.Message, http.StatusText(resp.Status))
	hs.Version = CanonicalVersion(firstNonEmpty(body.Version, body.Data.Version))
	hs.Compatible = Compatible(hs.Version)
	return hs, nil
}

// CanonicalVersion normalizes "1.2", "v1.2.3" and similar to semver form.
// It returns "" for anything that is not a valid version.
func CanonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// Compatible reports whether a server at version v can be used. Servers
// that do not report a version are assumed compatible.
func Compatible(v string) bool {
	if v == "" {
		return true
	}
	return semver.Compare(v, MinServerVersion) >= 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
