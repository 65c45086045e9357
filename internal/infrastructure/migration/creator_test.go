package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add spaces table", "add_spaces_table"},
		{"Add-Space-Type", "add_space_type"},
		{"ADD__FAVORITES", "add_favorites"},
		{"   budget   ", "budget"},
		{"special!@#$chars", "specialchars"},
		{"_leading_and_trailing_", "leading_and_trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add documents")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_documents.up.sql"), first.UpPath)

	body, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "add_documents (down)")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "000041_manual.up.sql"), nil, 0o644))
	next, err := CreateMigration(dir, "Index Tags")
	require.NoError(t, err)
	assert.Equal(t, uint(42), next.Version)
	assert.FileExists(t, filepath.Join(dir, "000042_index_tags.down.sql"))

	_, err = CreateMigration(dir, "!!!")
	require.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, names)

	dir := t.TempDir()
	for _, f := range []string{"000002_b.up.sql", "000002_b.down.sql", "000001_a.up.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
	}
	names, err = ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a", "000002_b"}, names)
}

// The shipped schema must parse as a golang-migrate source with an up and
// down file for every version.
func TestShippedMigrations(t *testing.T) {
	drv, err := (&file.File{}).Open("file://../../../migrations")
	require.NoError(t, err)
	t.Cleanup(func() { _ = drv.Close() })

	v, err := drv.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	count := 0
	for {
		count++
		up, _, err := drv.ReadUp(v)
		require.NoError(t, err, "version %d up", v)
		_ = up.Close()
		down, _, err := drv.ReadDown(v)
		require.NoError(t, err, "version %d down", v)
		_ = down.Close()

		v, err = drv.Next(v)
		if err != nil {
			require.ErrorIs(t, err, os.ErrNotExist)
			break
		}
	}
	assert.Equal(t, 6, count)
}
