package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_SortsAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"003_dispensations.sql": {Data: []byte("CREATE TABLE c (id INT);")},
		"001_core.sql":          {Data: []byte("CREATE TABLE a (id INT);")},
		"002_clinical.sql":      {Data: []byte("CREATE TABLE b (id INT);")},
		"README.md":             {Data: []byte("docs")},
		"seed.sql":              {Data: []byte("INSERT INTO a VALUES (1);")},
		"abc_notes.sql":         {Data: []byte("SELECT 1;")},
	}

	migrations, err := NewMigratorFS(nil, fsys).LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_core.sql", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE a (id INT);", migrations[0].SQL)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Equal(t, 3, migrations[2].Version)
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_core.sql": {Data: []byte("SELECT 1;")},
		"01_other.sql": {Data: []byte("SELECT 2;")},
	}
	_, err := NewMigratorFS(nil, fsys).LoadMigrations()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate migration version 1")
}

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := NewMigrator(nil).LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].Version)
	var all string
	for _, m := range migrations {
		all += m.SQL
	}
	for _, table := range []string{
		"stock_records", "dispensations", "derivations", "referrals",
		"consultation_derivations", "consultation_referrals", "emergency_cares", "warehouse_requests",
	} {
		assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, all, "CHECK (quantity >= 0)")
}
