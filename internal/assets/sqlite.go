/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "inkboard/internal/log"
	"inkboard/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the blob cache layout.
const schemaVersion = 1

// tsLayout is fixed width so access times sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps encoded assets in a local SQLite file so dropped images
// survive restarts and can be evicted by access time.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	maxBytes int64
}

// OpenSQLite opens (creating if needed) the blob cache at path. maxBytes <= 0
// disables eviction.
func OpenSQLite(ctx context.Context, path string, maxBytes int64) (*SQLiteStore, error) {
	l := applog.WithOperation(applog.WithComponent("assets"), "open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("asset cache ready")
	return &SQLiteStore{db: db, path: path, maxBytes: maxBytes}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id         INTEGER PRIMARY KEY CHECK(id=1),
			schema     INTEGER NOT NULL,
			app        TEXT,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS assets (
			ref         TEXT PRIMARY KEY,
			mime        TEXT    NOT NULL,
			w           INTEGER NOT NULL DEFAULT 0,
			h           INTEGER NOT NULL DEFAULT 0,
			data        BLOB    NOT NULL,
			size        INTEGER NOT NULL DEFAULT 0,
			updated_at  TEXT    NOT NULL,
			last_access TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assets_access ON assets(last_access);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `INSERT INTO version(id, schema, app, updated_at) VALUES(1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET app=excluded.app, updated_at=excluded.updated_at`,
		schemaVersion, version.String(), now)
	if err != nil {
		return fmt.Errorf("seed version: %w", err)
	}
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if cur > schemaVersion {
		return fmt.Errorf("asset cache schema %d is newer than supported %d", cur, schemaVersion)
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Put upserts a blob and evicts least recently used rows over the cap.
func (s *SQLiteStore) Put(ctx context.Context, b Blob) error {
	if b.Ref == "" {
		return errors.New("blob without ref")
	}
	now := time.Now().UTC().Format(tsLayout)
	_, err := s.db.ExecContext(ctx, `INSERT INTO assets(ref, mime, w, h, data, size, updated_at, last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(ref) DO UPDATE SET mime=excluded.mime, w=excluded.w, h=excluded.h, data=excluded.data,
			size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		b.Ref, b.Mime, b.Width, b.Height, b.Data, len(b.Data), now, now)
	if err != nil {
		return fmt.Errorf("upsert asset: %w", err)
	}
	if s.maxBytes > 0 {
		return s.EvictToFit(ctx, s.maxBytes)
	}
	return nil
}

// Get returns a blob and refreshes its access time.
func (s *SQLiteStore) Get(ctx context.Context, ref string) (Blob, error) {
	b := Blob{Ref: ref}
	err := s.db.QueryRowContext(ctx, `SELECT mime, w, h, data FROM assets WHERE ref=?`, ref).
		Scan(&b.Mime, &b.Width, &b.Height, &b.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Blob{}, ErrUnknownAsset
	}
	if err != nil {
		return Blob{}, fmt.Errorf("query asset: %w", err)
	}
	now := time.Now().UTC().Format(tsLayout)
	_, _ = s.db.ExecContext(ctx, `UPDATE assets SET last_access=? WHERE ref=?`, now, ref)
	return b, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, ref string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE ref=?`, ref); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// TotalBytes sums the stored blob sizes.
func (s *SQLiteStore) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM assets`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum asset size: %w", err)
	}
	return total, nil
}

// EvictToFit deletes least recently used rows until the total is <= capBytes.
func (s *SQLiteStore) EvictToFit(ctx context.Context, capBytes int64) error {
	total, err := s.TotalBytes(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT ref, size FROM assets ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	cur := total
	for cur > capBytes && rows.Next() {
		var ref string
		var sz int64
		if err := rows.Scan(&ref, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, ref)
		cur -= sz
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// the single connection must be free before writing
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM assets WHERE ref IN (?` + strings.Repeat(",?", len(victims)-1) + `)`
	if _, err := s.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	applog.WithComponent("assets").Debug("evicted assets", slog.Int("count", len(victims)), slog.Int64("bytes", total-cur))
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
