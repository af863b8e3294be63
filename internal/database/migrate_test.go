package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestUserTableIsQuoted(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/000001_create_hr_tables.up.sql")
	require.NoError(t, err)

	sql := string(data)
	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "user"`)
	assert.Contains(t, sql, "UNIQUE (name, job_id, department_id)")
}
