// Package catalog loads practice materials cache-first and groups them for
// display.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linguaku/linguaku/internal/model"
	"github.com/linguaku/linguaku/internal/store"
)

// Source identifies where a Snapshot came from.
type Source int

const (
	SourceCache Source = iota
	SourceNetwork
)

func (s Source) String() string {
	if s == SourceNetwork {
		return "network"
	}
	return "cache"
}

// Snapshot is one delivery of the material list.
type Snapshot struct {
	Materials []model.Material
	Source    Source
	// Stale is set for cached data older than the TTL. A network refresh
	// is on its way unless it fails.
	Stale     bool
	FetchedAt time.Time
}

// Fetcher is the remote side of the loader.
type Fetcher interface {
	Materials(ctx context.Context) ([]model.Material, error)
	Material(ctx context.Context, id string) (*model.Material, error)
}

// Loader implements stale-while-revalidate over the material cache.
type Loader struct {
	api    Fetcher
	cache  store.CacheRepo
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithTTL overrides store.MaterialsTTL.
func WithTTL(ttl time.Duration) Option {
	return func(l *Loader) { l.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader.
func NewLoader(api Fetcher, cache store.CacheRepo, opts ...Option) *Loader {
	l := &Loader{
		api:    api,
		cache:  cache,
		ttl:    store.MaterialsTTL,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reports cached materials first, whatever their age, then fetches
// from the network when the cache is missing or stale. report is called
// at most twice, cache before network. An error is returned only if
// nothing could be reported.
func (l *Loader) Load(ctx context.Context, report func(Snapshot)) error {
	entry := l.readCache(ctx)
	if entry != nil {
		fresh := entry.IsFresh(l.now(), l.ttl)
		report(Snapshot{
			Materials: entry.Payload,
			Source:    SourceCache,
			Stale:     !fresh,
			FetchedAt: entry.FetchedAt,
		})
		if fresh {
			return nil
		}
	}

	err := l.fetch(ctx, report)
	if err != nil && entry != nil {
		l.logger.Warn("material refresh failed, keeping cached list", "error", err)
		return nil
	}
	return err
}

// Refresh skips the cache and fetches from the network.
func (l *Loader) Refresh(ctx context.Context, report func(Snapshot)) error {
	return l.fetch(ctx, report)
}

// Find returns one material, from the cache when present.
func (l *Loader) Find(ctx context.Context, id string) (*model.Material, error) {
	if entry := l.readCache(ctx); entry != nil {
		for _, m := range entry.Payload {
			if m.ID == id {
				return &m, nil
			}
		}
	}
	m, err := l.api.Material(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch material %s: %w", id, err)
	}
	return m, nil
}

// Invalidate drops the cached list.
func (l *Loader) Invalidate(ctx context.Context) error {
	return l.cache.Remove(ctx, store.KeyMaterialsCache)
}

func (l *Loader) readCache(ctx context.Context) *store.CacheEntry[[]model.Material] {
	entry, err := store.ReadCache[[]model.Material](ctx, l.cache, store.KeyMaterialsCache)
	switch {
	case err == nil:
		return entry
	case errors.Is(err, store.ErrNotFound):
	case errors.Is(err, store.ErrCacheCorrupt):
		l.logger.Warn("ignoring corrupt material cache", "error", err)
	default:
		l.logger.Warn("material cache unreadable", "error", err)
	}
	return nil
}

func (l *Loader) fetch(ctx context.Context, report func(Snapshot)) error {
	materials, err := l.api.Materials(ctx)
	if err != nil {
		return fmt.Errorf("fetch materials: %w", err)
	}
	now := l.now()
	if len(materials) > 0 {
		if err := store.WriteCache(ctx, l.cache, store.KeyMaterialsCache, materials, now); err != nil {
			l.logger.Warn("failed to cache materials", "error", err)
		}
	}
	report(Snapshot{Materials: materials, Source: SourceNetwork, FetchedAt: now})
	return nil
}
