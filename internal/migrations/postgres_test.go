package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaFilesArePaired(t *testing.T) {
	entries, err := sqlMigrations.ReadDir("sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := 0, 0
	for _, e := range entries {
		switch f := e.Name(); {
		case strings.HasSuffix(f, ".up.sql"):
			ups++
		case strings.HasSuffix(f, ".down.sql"):
			downs++
		}
	}
	require.Equal(t, ups, downs)

	body, err := sqlMigrations.ReadFile("sql/0001_create_runs.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS runs")
}
