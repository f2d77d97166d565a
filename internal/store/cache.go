package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// MaterialsTTL is how long a cached material list stays fresh.
const MaterialsTTL = 24 * time.Hour

// ErrCacheCorrupt is returned when a cached payload cannot be decoded.
// Callers treat it as a cache miss.
var ErrCacheCorrupt = errors.New("store: cache entry corrupt")

// CacheEntry is a decoded cache payload with the time it was fetched.
type CacheEntry[T any] struct {
	Payload   T
	FetchedAt time.Time
}

// IsFresh reports whether the entry is younger than ttl at now.
func (e CacheEntry[T]) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}

// Age returns how old the entry is at now.
func (e CacheEntry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// ReadCache loads and decodes the entry stored under key. It returns
// ErrNotFound when nothing is stored and ErrCacheCorrupt when the payload
// does not decode into T.
func ReadCache[T any](ctx context.Context, repo CacheRepo, key string) (*CacheEntry[T], error) {
	raw, fetchedAt, err := repo.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheCorrupt, key, err)
	}
	return &CacheEntry[T]{Payload: payload, FetchedAt: fetchedAt}, nil
}

// WriteCache encodes payload and stores it under key stamped with fetchedAt.
func WriteCache[T any](ctx context.Context, repo CacheRepo, key string, payload T, fetchedAt time.Time) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", key, err)
	}
	return repo.Save(ctx, key, raw, fetchedAt)
}

// cacheRepo implements CacheRepo on the cache_entries table.
type cacheRepo struct {
	db *sql.DB
}

func (r *cacheRepo) Load(ctx context.Context, key string) ([]byte, time.Time, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(colPayload, colFetchedAt).
		From(b.Table(tableCache)).
		Where(entsql.EQ(colKey, key)).
		Query()

	var (
		payload string
		millis  int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&payload, &millis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load cache %s: %w", key, err)
	}
	return []byte(payload), time.UnixMilli(millis), nil
}

func (r *cacheRepo) Save(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableCache).
		Columns(colKey, colPayload, colFetchedAt).
		Values(key, string(payload), fetchedAt.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns(colKey),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save cache %s: %w", key, err)
	}
	return nil
}

func (r *cacheRepo) Remove(ctx context.Context, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableCache).
		Where(entsql.EQ(colKey, key)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove cache %s: %w", key, err)
	}
	return nil
}
