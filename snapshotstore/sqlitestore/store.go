// Package sqlitestore is a reference Snapshot Store (C9) backend, backed
// by github.com/mattn/go-sqlite3, exercising the same getBefore/listFrom/
// replaceSuffix contract as the default in-memory snapshotstore.Store.
//
// Grounded on aristath-sentinel's internal/database package (WAL mode,
// one *sql.DB per store, structured zerolog logging on every query
// failure) and its internal/modules/universe/history_db.go (prepared
// query shape, rows.Scan loops, %w-wrapped errors). Unlike the teacher's
// float64 OHLCV rows, a snapshot payload is an arbitrary Go struct, so
// rows are stored as JSON blobs and the versioned replaceSuffix below
// implements the optimistic-concurrency path that can genuinely race
// across OS processes sharing one SQLite file — the case the in-memory
// store's plain mutex cannot model.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engineerr"
)

// Open opens (creating if absent) a WAL-mode SQLite database at path and
// ensures the snapshot-store schema exists. path may be ":memory:" or a
// "file::memory:?cache=shared" URI for tests.
func Open(path string, log zerolog.Logger) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&" // path is a URI that already carries query parameters.
	}
	connStr := path + sep + "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // mattn/go-sqlite3 serializes writers anyway; avoid SQLITE_BUSY churn.

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite store schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("snapshot store opened")
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	store_key     TEXT NOT NULL,
	snapshot_date TEXT NOT NULL,
	payload       BLOB NOT NULL,
	PRIMARY KEY (store_key, snapshot_date)
);
CREATE TABLE IF NOT EXISTS key_versions (
	store_key TEXT PRIMARY KEY,
	version   INTEGER NOT NULL DEFAULT 0
);
`

// Store is a sqlite-backed Snapshot Store for one key space, generic over
// its payload type, mirroring snapshotstore.Store's API plus optimistic
// versioning on ReplaceSuffix.
type Store[V any] struct {
	db    *sql.DB
	table string // logical name, used only for logging.
	log   zerolog.Logger
}

// New wraps an open *sql.DB (see Open) as a Store for one logical table
// name, used only to tag log lines when multiple stores share a database.
func New[V any](db *sql.DB, table string, log zerolog.Logger) *Store[V] {
	return &Store[V]{db: db, table: table, log: log.With().Str("store", table).Logger()}
}

// GetBefore returns the snapshot at or before on, per spec §4.9.
func (s *Store[V]) GetBefore(ctx context.Context, key string, on date.Date) (V, bool, error) {
	var zero V
	row := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots
		WHERE store_key = ? AND snapshot_date <= ?
		ORDER BY snapshot_date DESC LIMIT 1`, key, on.Format(date.DateFormat))

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return zero, false, nil
		}
		s.log.Error().Err(err).Str("key", key).Msg("getBefore query failed")
		return zero, false, fmt.Errorf("%s getBefore(%s): %w", s.table, key, err)
	}
	var v V
	if err := json.Unmarshal(payload, &v); err != nil {
		return zero, false, fmt.Errorf("%s getBefore(%s): decode payload: %w", s.table, key, err)
	}
	return v, true, nil
}

// ListFrom returns every snapshot on or after from, ascending by date.
func (s *Store[V]) ListFrom(ctx context.Context, key string, from date.Date) ([]V, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM snapshots
		WHERE store_key = ? AND snapshot_date >= ?
		ORDER BY snapshot_date ASC`, key, from.Format(date.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("%s listFrom(%s): %w", s.table, key, err)
	}
	defer rows.Close()

	var out []V
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%s listFrom(%s): scan: %w", s.table, key, err)
		}
		var v V
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("%s listFrom(%s): decode payload: %w", s.table, key, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Version returns the key's current write version, for a caller that
// wants to pass it to a subsequent ReplaceSuffix as an optimistic-lock
// token.
func (s *Store[V]) Version(ctx context.Context, key string) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM key_versions WHERE store_key = ?`, key).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s version(%s): %w", s.table, key, err)
	}
	return version, nil
}

// Dated pairs one payload value with its snapshot date, since V carries no
// common interface this package can call generically.
type Dated[V any] struct {
	Date  date.Date
	Value V
}

// ReplaceSuffix atomically deletes every row of key dated >= fromDate and
// inserts newSeq in its place, bumping the key's version, per spec §4.9.
// expectedVersion must match the key's current version (from a prior
// Version call) or the whole call fails with engineerr.StoreConflict and
// no change is made — the path a concurrent writer process can actually
// hit against a shared SQLite file, which the in-memory store's mutex
// cannot model.
func (s *Store[V]) ReplaceSuffix(ctx context.Context, key string, fromDate date.Date, newSeq []Dated[V], expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s replaceSuffix(%s): begin: %w", s.table, key, err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM key_versions WHERE store_key = ?`, key).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("%s replaceSuffix(%s): read version: %w", s.table, key, err)
	}
	if current != expectedVersion {
		return engineerr.New(engineerr.StoreConflict, "%s replaceSuffix(%s): version %d, expected %d", s.table, key, current, expectedVersion)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE store_key = ? AND snapshot_date >= ?`, key, fromDate.Format(date.DateFormat)); err != nil {
		return fmt.Errorf("%s replaceSuffix(%s): delete suffix: %w", s.table, key, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshots (store_key, snapshot_date, payload) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%s replaceSuffix(%s): prepare insert: %w", s.table, key, err)
	}
	defer stmt.Close()

	for _, d := range newSeq {
		payload, err := json.Marshal(d.Value)
		if err != nil {
			return fmt.Errorf("%s replaceSuffix(%s): encode payload: %w", s.table, key, err)
		}
		if _, err := stmt.ExecContext(ctx, key, d.Date.Format(date.DateFormat), payload); err != nil {
			return fmt.Errorf("%s replaceSuffix(%s): insert row: %w", s.table, key, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO key_versions (store_key, version) VALUES (?, 1)
		ON CONFLICT(store_key) DO UPDATE SET version = version + 1`, key); err != nil {
		return fmt.Errorf("%s replaceSuffix(%s): bump version: %w", s.table, key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s replaceSuffix(%s): commit: %w", s.table, key, err)
	}
	s.log.Debug().Str("key", key).Int("rows", len(newSeq)).Msg("replaceSuffix committed")
	return nil
}
