package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biogate/migrations"
)

func TestUpMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_index.up.sql":   {Data: []byte("CREATE INDEX x ON t (c);")},
		"000001_init.up.sql":        {Data: []byte("CREATE TABLE t (c INT);")},
		"000001_init.down.sql":      {Data: []byte("DROP TABLE t;")},
		"README.md":                 {Data: []byte("notes")},
		"archive/000000_old.up.sql": {Data: []byte("SELECT 1;")},
	}

	files, err := upMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init.up.sql", "000002_add_index.up.sql"}, files)
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	files, err := upMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "000001_biometric_templates.up.sql", files[0])
}
