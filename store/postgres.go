package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps every logical table in one records table (see db/*.sql).
type Postgres struct {
	pool *pgxpool.Pool
}

// recordRow is the scan target for record reads.
type recordRow struct {
	Data string `db:"data"`
}

// NewPostgres creates a connection pool. A pool (not a single conn) is used
// because hosted Postgres closes idle connections.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" errors
	// from server-side statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable("ping", err)
	}
	return &Postgres{pool: pool}, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, q pgxQuerier, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (p *Postgres) Append(ctx context.Context, table string, row Record) error {
	return p.AppendMany(ctx, table, []Record{row})
}

func (p *Postgres) AppendMany(ctx context.Context, table string, rows []Record) error {
	if len(rows) == 0 {
		return nil
	}
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		return insertRecords(ctx, tx, table, rows)
	})
	if err != nil {
		return unavailable("append "+table, err)
	}
	return nil
}

func (p *Postgres) ReadAll(ctx context.Context, table string) ([]Record, error) {
	rows, err := queryMany[recordRow](ctx, p.pool,
		`SELECT data::text AS data FROM records
		 WHERE table_name = @table
		 ORDER BY seq`,
		pgx.NamedArgs{"table": table})
	if err != nil {
		return nil, unavailable("read "+table, err)
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		rec, err := decodeRecord(r.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *Postgres) Overwrite(ctx context.Context, table string, header []string, rows [][]any) error {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	records := make([]Record, 0, len(rows))
	for _, v := range rows {
		records = append(records, rowFromValues(header, v))
	}

	err = pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM records WHERE table_name = @table",
			pgx.NamedArgs{"table": table}); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO sheet_headers (table_name, columns)
			 VALUES (@table, @columns::jsonb)
			 ON CONFLICT (table_name) DO UPDATE SET columns = EXCLUDED.columns`,
			pgx.NamedArgs{"table": table, "columns": string(headerJSON)}); err != nil {
			return err
		}
		return insertRecords(ctx, tx, table, records)
	})
	if err != nil {
		return unavailable("overwrite "+table, err)
	}
	return nil
}

func (p *Postgres) Header(ctx context.Context, table string) ([]string, error) {
	var raw string
	err := p.pool.QueryRow(ctx,
		"SELECT columns::text FROM sheet_headers WHERE table_name = @table",
		pgx.NamedArgs{"table": table}).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func insertRecords(ctx context.Context, tx pgx.Tx, table string, rows []Record) error {
	for _, r := range rows {
		data, err := encodeRecord(r)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO records (id, table_name, data)
			 VALUES (@id, @table, @data::jsonb)`,
			pgx.NamedArgs{"id": uuid.NewString(), "table": table, "data": data}); err != nil {
			return err
		}
	}
	return nil
}

var _ Store = (*Postgres)(nil)
