package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionsInSortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_b.sql":   {Data: []byte("select 2")},
		"migrations/0001_a.sql":   {Data: []byte("select 1")},
		"migrations/README.md":    {Data: []byte("notes")},
		"migrations/nested/x.sql": {Data: []byte("select 3")},
	}

	got, err := versionsIn(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a", "0002_b"}, got)
}

func TestVersionsInMissingDir(t *testing.T) {
	_, err := versionsIn(fstest.MapFS{})
	require.Error(t, err)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	got, err := versionsIn(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_users", "0002_properties"}, got)
}

func TestPending(t *testing.T) {
	versions := []string{"0001", "0002", "0003"}

	assert.Equal(t, versions, pending(versions, nil))
	assert.Equal(t, []string{"0003"}, pending(versions, map[string]bool{"0001": true, "0002": true}))
	assert.Empty(t, pending(versions, map[string]bool{"0001": true, "0002": true, "0003": true}))
}
