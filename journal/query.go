package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rustyeddy/agentvault/vaulterr"
)

// Filter narrows ListEvents. Zero fields match everything.
type Filter struct {
	Entity string
	Kinds  []Kind
	Since  time.Time // inclusive
	Until  time.Time // exclusive
	Limit  int
}

// Apply filters events in memory with the same rules ListEvents uses.
func (f Filter) Apply(events []Event) []Event {
	var out []Event
	for _, e := range events {
		if f.Entity != "" && e.Entity != f.Entity {
			continue
		}
		if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, e.Kind) {
			continue
		}
		if !f.Since.IsZero() && e.Time.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && !e.Time.Before(f.Until) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

const selectEvents = `SELECT id, time, kind, entity, actor, asset, amount, attrs FROM events`

// GetEvent returns a single event by ID.
func (j *SQLite) GetEvent(ctx context.Context, eventID string) (Event, error) {
	row := j.db.QueryRowContext(ctx, selectEvents+` WHERE id = ?`, eventID)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, fmt.Errorf("event %q: %w", eventID, vaulterr.ErrNotFound)
		}
		return Event{}, err
	}
	return e, nil
}

// ListEvents returns matching events in commit order.
func (j *SQLite) ListEvents(ctx context.Context, f Filter) ([]Event, error) {
	var (
		where []string
		args  []any
	)
	if f.Entity != "" {
		where = append(where, "entity = ?")
		args = append(args, f.Entity)
	}
	if len(f.Kinds) > 0 {
		marks := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			marks[i] = "?"
			args = append(args, string(k))
		}
		where = append(where, "kind IN ("+strings.Join(marks, ", ")+")")
	}
	if !f.Since.IsZero() {
		where = append(where, "time >= ?")
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		where = append(where, "time < ?")
		args = append(args, f.Until.UTC())
	}

	q := selectEvents
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY seq ASC"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (Event, error) {
	var (
		e      Event
		kind   string
		amount string
		attrs  string
	)
	if err := s.Scan(&e.ID, &e.Time, &kind, &e.Entity, &e.Actor, &e.Asset, &amount, &attrs); err != nil {
		return Event{}, err
	}
	e.Kind = Kind(kind)

	var err error
	if e.Amount, err = parseAmount(amount); err != nil {
		return Event{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	if e.Attrs, err = decodeAttrs(attrs); err != nil {
		return Event{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	return e, nil
}
