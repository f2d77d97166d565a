package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on the request_events table.
type eventRepo struct {
	db *sql.DB
}

var eventColumns = []string{
	colID, colRequestID, colMethod, colPath, colStatus, colAttempt,
	colLatency, colSuccess, colErrMsg, colTimestamp,
}

func (r *eventRepo) AppendRequest(ctx context.Context, data RequestEventData) error {
	ts := data.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	attempt := data.Attempt
	if attempt < 1 {
		attempt = 1
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableEvents).
		Columns(colRequestID, colMethod, colPath, colStatus, colAttempt,
			colLatency, colSuccess, colErrMsg, colTimestamp).
		Values(data.RequestID, data.Method, data.Path, data.Status, attempt,
			data.LatencyMs, data.Success, data.ErrorMessage, ts.UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select(eventColumns...).From(b.Table(tableEvents))

	var preds []*entsql.Predicate
	if opts.Path != "" {
		preds = append(preds, entsql.EQ(colPath, opts.Path))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(colTimestamp, opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE(colTimestamp, opts.To.UnixMilli()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc(colID))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var events []RequestEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetRequest(ctx context.Context, id int) (*RequestEvent, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(eventColumns...).
		From(b.Table(tableEvents)).
		Where(entsql.EQ(colID, id)).
		Query()

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get request event %d: %w", id, err)
	}
	return e, nil
}

func (r *eventRepo) UsageByPath(ctx context.Context) ([]PathUsage, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(
		colMethod,
		colPath,
		entsql.Count("*"),
		"SUM(CASE WHEN `"+colSuccess+"` THEN 0 ELSE 1 END)",
		entsql.Count(entsql.Distinct(colRequestID)),
		entsql.Avg(colLatency),
	).
		From(b.Table(tableEvents)).
		GroupBy(colMethod, colPath).
		OrderBy(colPath, colMethod).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage by path: %w", err)
	}
	defer rows.Close()

	var out []PathUsage
	for rows.Next() {
		var (
			u   PathUsage
			avg sql.NullFloat64
		)
		if err := rows.Scan(&u.Method, &u.Path, &u.Attempts, &u.Failures, &u.Requests, &avg); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg.Float64)
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*RequestEvent, error) {
	var (
		e      RequestEvent
		millis int64
	)
	err := row.Scan(&e.ID, &e.RequestID, &e.Method, &e.Path, &e.Status, &e.Attempt,
		&e.LatencyMs, &e.Success, &e.ErrorMessage, &millis)
	if err != nil {
		return nil, err
	}
	e.Timestamp = time.UnixMilli(millis)
	return &e, nil
}
