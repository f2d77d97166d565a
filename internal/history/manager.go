// Package history keeps the learner's list of past attempts in sync with
// the server.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/linguaku/linguaku/internal/model"
)

// API is the server side of the history list.
type API interface {
	History(ctx context.Context) ([]model.HistoryRecord, error)
	DeleteHistory(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
}

// Manager holds the loaded history. Local changes are applied only after
// the server confirms them.
type Manager struct {
	api    API
	logger *slog.Logger

	mu      sync.Mutex
	records []model.HistoryRecord
	loaded  bool
}

// NewManager creates a Manager.
func NewManager(api API, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{api: api, logger: logger}
}

// Load replaces the local list with the server's, newest first.
func (m *Manager) Load(ctx context.Context) ([]model.HistoryRecord, error) {
	records, err := m.api.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	records = slices.Clone(records)
	slices.SortStableFunc(records, func(a, b model.HistoryRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
	m.loaded = true
	return slices.Clone(records), nil
}

// Delete removes one record on the server, then locally.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.api.DeleteHistory(ctx, id); err != nil {
		return fmt.Errorf("delete history %s: %w", id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.DeleteFunc(m.records, func(r model.HistoryRecord) bool { return r.ID == id })
	m.logger.Info("history record deleted", "id", id)
	return nil
}

// Clear removes every record on the server, then locally.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.api.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.logger.Info("history cleared")
	return nil
}

// Records returns a copy of the local list.
func (m *Manager) Records() []model.HistoryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}

// Loaded reports whether Load has succeeded at least once.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}
