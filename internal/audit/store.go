package audit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/transitdesk/console/internal/platform/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS console_audit (
	id          BIGSERIAL PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	actor_id    TEXT NOT NULL DEFAULT '',
	actor       TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	entity      TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS console_audit_occurred_idx ON console_audit (occurred_at DESC);`

// Store keeps entries in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the audit table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("audit: ensure schema: %w", err)
	}
	return nil
}

// Insert persists entry. A zero At defaults to the database clock.
func (s *Store) Insert(ctx context.Context, entry Entry) error {
	var at any
	if !entry.At.IsZero() {
		at = entry.At
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO console_audit (occurred_at, actor_id, actor, action, entity, entity_id, detail)
		 VALUES (COALESCE($1, NOW()), $2, $3, $4, $5, $6, $7)`,
		at, entry.ActorID, entry.Actor, entry.Action, entry.Entity, entry.EntityID, entry.Detail)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// Page returns one window of entries, newest first, and the matching count.
// Both queries run in one snapshot so the count agrees with the rows.
func (s *Store) Page(ctx context.Context, filters Filters) ([]Entry, int, error) {
	where, args := filters.clause()
	var (
		entries []Entry
		total   int
	)
	err := db.ReadOnly(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM console_audit"+where, args...).Scan(&total); err != nil {
			return err
		}
		n := len(args)
		query := "SELECT id, occurred_at, actor_id, actor, action, entity, entity_id, detail FROM console_audit" +
			where + " ORDER BY occurred_at DESC, id DESC LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)
		rows, err := tx.Query(ctx, query, append(args, filters.Limit, filters.Offset)...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var e Entry
			if err := rows.Scan(&e.ID, &e.At, &e.ActorID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &e.Detail); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, fmt.Errorf("audit: page: %w", err)
	}
	return entries, total, nil
}

func (f Filters) clause() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond, value string) {
		if value = strings.TrimSpace(value); value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	add("actor ILIKE '%' || ? || '%'", f.Actor)
	add("entity = ?", f.Entity)
	add("action = ?", f.Action)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
