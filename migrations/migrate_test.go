package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestNamesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"010_late.sql":  {Data: []byte("SELECT 1")},
		"001_init.sql":  {Data: []byte("SELECT 1")},
		"README.md":     {Data: []byte("notes")},
		"002_b.sql":     {Data: []byte("SELECT 1")},
		"sub/003_x.sql": {Data: []byte("SELECT 1")},
	}
	got, err := names(fsys)
	require.NoError(t, err)
	require.Equal(t, []string{"001_init.sql", "002_b.sql", "010_late.sql"}, got)
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := Names()
	require.NoError(t, err)
	require.Equal(t, []string{"001_init.sql", "002_backfill_total.sql"}, got)

	for _, name := range got {
		data, err := migrationFiles.ReadFile(name)
		require.NoError(t, err)
		require.NotEmpty(t, data, name)
	}
	schema, err := migrationFiles.ReadFile("001_init.sql")
	require.NoError(t, err)
	for _, table := range []string{"enquiries", "bookings", "booking_payments", "idempotency_keys"} {
		require.Contains(t, string(schema), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
