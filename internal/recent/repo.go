package recent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/pastebin/internal/apperr"
	"github.com/starford/pastebin/internal/models"
)

// Record inserts or refreshes the entry for e.Key. A zero SeenAt means now.
func (db *DB) Record(ctx context.Context, e models.RecentEntry) error {
	if e.SeenAt.IsZero() {
		e.SeenAt = time.Now().UTC()
	}
	if e.Action == "" {
		e.Action = models.ActionLoaded
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO recent (key, action, preview, seen_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			action  = excluded.action,
			preview = excluded.preview,
			seen_at = excluded.seen_at
	`, e.Key, e.Action, e.Preview, e.SeenAt)
	if err != nil {
		return fmt.Errorf("recent: record: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 means 20.
func (db *DB) List(ctx context.Context, limit int) ([]models.RecentEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT key, action, preview, seen_at
		FROM recent
		ORDER BY seen_at DESC, key
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent: list: %w", err)
	}
	defer rows.Close()

	var out []models.RecentEntry
	for rows.Next() {
		var e models.RecentEntry
		if err := rows.Scan(&e.Key, &e.Action, &e.Preview, &e.SeenAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns the entry for key, or apperr.ErrNotFound.
func (db *DB) Get(ctx context.Context, key string) (*models.RecentEntry, error) {
	var e models.RecentEntry
	err := db.conn.QueryRowContext(ctx,
		`SELECT key, action, preview, seen_at FROM recent WHERE key = ?`, key,
	).Scan(&e.Key, &e.Action, &e.Preview, &e.SeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recent: get: %w", err)
	}
	return &e, nil
}

// Forget removes the entry for key. Missing keys are not an error.
func (db *DB) Forget(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM recent WHERE key = ?`, key); err != nil {
		return fmt.Errorf("recent: forget: %w", err)
	}
	return nil
}
