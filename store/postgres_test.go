package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPostgres connects to TEST_DB_URL, which must point at a database
// migrated with cmd/migrate. Tests are skipped when it is unset.
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set")
	}
	ctx := context.Background()
	p, err := NewPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPostgres_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestPostgres(t)
	table := "test_" + t.Name()
	t.Cleanup(func() {
		_, _ = p.pool.Exec(ctx, "DELETE FROM records WHERE table_name = @table", pgx.NamedArgs{"table": table})
		_, _ = p.pool.Exec(ctx, "DELETE FROM sheet_headers WHERE table_name = @table", pgx.NamedArgs{"table": table})
	})

	require.NoError(t, p.Append(ctx, table, Record{"menu_name": "Oats", "calories": 350.0}))
	require.NoError(t, p.AppendMany(ctx, table, []Record{{"menu_name": "Rice"}}))
	rows, err := p.ReadAll(ctx, table)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Oats", rows[0]["menu_name"])

	require.NoError(t, p.Overwrite(ctx, table, []string{"day", "intake"}, [][]any{{"2024-01-01", 1800}}))
	rows, err = p.ReadAll(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"day": "2024-01-01", "intake": 1800.0}}, rows)

	header, err := p.Header(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, []string{"day", "intake"}, header)
}
