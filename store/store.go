// Package store persists the logs as append-only tables of loosely-typed
// records. Columns may differ from row to row; readers must tolerate that.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Logical table names.
const (
	TableWorkouts = "workout_log"
	TableMeals    = "meal_log"
	TableSummary  = "daily_summary"
	TableProfile  = "user_profile"
)

// ErrUnavailable wraps any failure to reach or talk to the backing store.
var ErrUnavailable = errors.New("record store unavailable")

// Record is one row: column name -> value.
type Record = map[string]any

// Store is the persistence contract for the logs and derived tables.
type Store interface {
	// Append adds one row to table.
	Append(ctx context.Context, table string, row Record) error
	// AppendMany adds rows to table in order.
	AppendMany(ctx context.Context, table string, rows []Record) error
	// ReadAll returns every row of table in append order.
	ReadAll(ctx context.Context, table string) ([]Record, error)
	// Overwrite clears table, then writes header and rows.
	Overwrite(ctx context.Context, table string, header []string, rows [][]any) error
	// Header returns the header last written by Overwrite, or nil.
	Header(ctx context.Context, table string) ([]string, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend    string // "sqlite" or "postgres"
	DSN        string
	SQLitePath string
	CacheTTL   time.Duration
}

// Open builds the configured backend, wrapped in a read-through cache when
// CacheTTL > 0.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case "postgres":
		s, err = NewPostgres(ctx, opts.DSN)
	case "sqlite", "":
		s, err = NewSQLite(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	if opts.CacheTTL > 0 {
		s = NewCache(s, opts.CacheTTL)
	}
	return s, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// rowFromValues zips a header with one row of values. Extra values are
// dropped; missing ones are left out so they read back as absent.
func rowFromValues(header []string, values []any) Record {
	r := make(Record, len(header))
	for i, col := range header {
		if i < len(values) {
			r[col] = values[i]
		}
	}
	return r
}

func encodeRecord(r Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(b), nil
}

func decodeRecord(data string) (Record, error) {
	r := Record{}
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}
