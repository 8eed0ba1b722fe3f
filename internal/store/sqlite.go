package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBlob keeps the document in a single-row table and counts revisions.
type SQLiteBlob struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteBlob, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open watchlist db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate watchlist db: %w", err)
	}

	return &SQLiteBlob{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS watchlist_document (
		id         INTEGER PRIMARY KEY CHECK(id = 1),
		body       TEXT NOT NULL,
		revision   INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create watchlist_document table: %w", err)
	}
	return nil
}

func (s *SQLiteBlob) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM watchlist_document WHERE id = 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select watchlist document: %w", err)
	}
	return []byte(body), nil
}

func (s *SQLiteBlob) Save(ctx context.Context, data []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin watchlist tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO watchlist_document (id, body, revision, updated_at) VALUES (1, ?, 1, ?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body, revision = revision + 1, updated_at = excluded.updated_at`,
		string(data), now,
	)
	if err != nil {
		return fmt.Errorf("upsert watchlist document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit watchlist tx: %w", err)
	}
	return nil
}

// Revision returns how many times the document has been saved, 0 if never.
func (s *SQLiteBlob) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT revision FROM watchlist_document WHERE id = 1`).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select watchlist revision: %w", err)
	}
	return rev, nil
}

func (s *SQLiteBlob) Close() error {
	return s.db.Close()
}
