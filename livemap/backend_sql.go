// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLBackend stores entries in a DuckDB table through database/sql.
type SQLBackend struct {
	db    *sql.DB
	limit int
}

// NewSQLBackend creates a backend over db. limit <= 0 means DefaultListLimit.
func NewSQLBackend(db *sql.DB, limit int) *SQLBackend {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	return &SQLBackend{db: db, limit: limit}
}

// CreateSchema creates the kv_entries table.
func (b *SQLBackend) CreateSchema(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key VARCHAR PRIMARY KEY,
			value VARCHAR NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating kv_entries: %w", err)
	}

	return nil
}

func (b *SQLBackend) Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	res, err := b.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, key, string(value), expiresAt.UTC())
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrKeyExists
	}

	return nil
}

func (b *SQLBackend) Get(ctx context.Context, key string, asOf time.Time) (*Entry, error) {
	var (
		value     string
		expiresAt time.Time
	)

	err := b.db.QueryRowContext(ctx, `
		SELECT value, expires_at
		FROM kv_entries
		WHERE key = ? AND expires_at > ?
	`, key, asOf.UTC()).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &Entry{Key: key, Value: []byte(value), ExpiresAt: expiresAt.UTC()}, nil
}

func (b *SQLBackend) List(ctx context.Context, asOf time.Time) (*Page, error) {
	// One extra row tells a full page from a truncated one.
	rows, err := b.db.QueryContext(ctx, `
		SELECT key, value, expires_at
		FROM kv_entries
		WHERE expires_at > ?
		ORDER BY key
		LIMIT ?
	`, asOf.UTC(), b.limit+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := &Page{}

	for rows.Next() {
		var (
			e     Entry
			value string
		)

		if err := rows.Scan(&e.Key, &value, &e.ExpiresAt); err != nil {
			return nil, err
		}

		if len(page.Entries) == b.limit {
			page.Truncated = true

			break
		}

		e.Value = []byte(value)
		page.Entries = append(page.Entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return page, nil
}

// Sweep deletes the entries that expired at or before asOf and returns how
// many rows were removed. Reads never depend on it.
func (b *SQLBackend) Sweep(ctx context.Context, asOf time.Time) (int64, error) {
	res, err := b.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE expires_at <= ?`, asOf.UTC())
	if err != nil {
		return 0, fmt.Errorf("sweeping expired entries: %w", err)
	}

	return res.RowsAffected()
}
