package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	table_name TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS records_table_idx ON records (table_name, seq);
CREATE TABLE IF NOT EXISTS sheet_headers (
	table_name TEXT PRIMARY KEY,
	columns    TEXT NOT NULL
);`

// SQLite is the single-file backend used for local runs and tests.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("open sqlite database", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable("ping sqlite database", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Append(ctx context.Context, table string, row Record) error {
	return s.AppendMany(ctx, table, []Record{row})
}

func (s *SQLite) AppendMany(ctx context.Context, table string, rows []Record) error {
	if len(rows) == 0 {
		return nil
	}
	return s.inTx(ctx, "append "+table, func(tx *sql.Tx) error {
		return insertSQLite(ctx, tx, table, rows)
	})
}

func (s *SQLite) ReadAll(ctx context.Context, table string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM records WHERE table_name = ? ORDER BY seq`, table)
	if err != nil {
		return nil, unavailable("read "+table, err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, unavailable("scan "+table, err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("read "+table, err)
	}
	return out, nil
}

func (s *SQLite) Overwrite(ctx context.Context, table string, header []string, rows [][]any) error {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	records := make([]Record, 0, len(rows))
	for _, v := range rows {
		records = append(records, rowFromValues(header, v))
	}
	return s.inTx(ctx, "overwrite "+table, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE table_name = ?`, table); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_headers (table_name, columns) VALUES (?, ?)
			 ON CONFLICT(table_name) DO UPDATE SET columns = excluded.columns`,
			table, string(headerJSON)); err != nil {
			return err
		}
		return insertSQLite(ctx, tx, table, records)
	})
}

func (s *SQLite) Header(ctx context.Context, table string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT columns FROM sheet_headers WHERE table_name = ?`, table).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("header "+table, err)
	}
	var header []string
	if err := json.Unmarshal([]byte(raw), &header); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	return header, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return unavailable(op, err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func insertSQLite(ctx context.Context, tx *sql.Tx, table string, rows []Record) error {
	for _, r := range rows {
		data, err := encodeRecord(r)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (id, table_name, data) VALUES (?, ?, ?)`,
			uuid.NewString(), table, data); err != nil {
			return err
		}
	}
	return nil
}

var _ Store = (*SQLite)(nil)
