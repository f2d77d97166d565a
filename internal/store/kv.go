package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// kvRepo implements KVRepo on the kv_entries table.
type kvRepo struct {
	db *sql.DB
}

func (r *kvRepo) Get(ctx context.Context, key string) (string, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(colVal).
		From(b.Table(tableKV)).
		Where(entsql.EQ(colKey, key)).
		Query()

	var value string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (r *kvRepo) Put(ctx context.Context, key, value string) error {
	if err := putKV(ctx, r.db, key, value, time.Now()); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (r *kvRepo) Delete(ctx context.Context, key string) error {
	if err := deleteKV(ctx, r.db, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (r *kvRepo) Apply(ctx context.Context, puts map[string]string, deletes []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Deterministic write order.
	keys := make([]string, 0, len(puts))
	for k := range puts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now()
	for _, k := range keys {
		if err := putKV(ctx, tx, k, puts[k], now); err != nil {
			return fmt.Errorf("put %q: %w", k, err)
		}
	}
	for _, k := range deletes {
		if err := deleteKV(ctx, tx, k); err != nil {
			return fmt.Errorf("delete %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func putKV(ctx context.Context, ex execer, key, value string, now time.Time) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableKV).
		Columns(colKey, colVal, colMod).
		Values(key, value, now.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns(colKey),
			entsql.ResolveWithNewValues(),
		).
		Query()
	_, err := ex.ExecContext(ctx, query, args...)
	return err
}

func deleteKV(ctx context.Context, ex execer, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableKV).
		Where(entsql.EQ(colKey, key)).
		Query()
	_, err := ex.ExecContext(ctx, query, args...)
	return err
}
