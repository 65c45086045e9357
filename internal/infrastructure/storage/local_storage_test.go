package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalObjectStorage(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalObjectStorage(root, "")
	require.NoError(t, err)
	ctx := t.Context()

	t.Run("put writes below root", func(t *testing.T) {
		err := s.Put(ctx, "uploads/spaces/s1/a.txt", strings.NewReader("hello"), 5, "text/plain")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(root, "uploads", "spaces", "s1", "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		assert.Equal(t, "/uploads/spaces/s1/a.txt", s.URL("uploads/spaces/s1/a.txt"))
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "uploads/spaces/s1/a.txt", strings.NewReader("bye"), 3, "text/plain"))
		data, err := os.ReadFile(filepath.Join(root, "uploads", "spaces", "s1", "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "bye", string(data))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "uploads/spaces/s1/a.txt"))
		require.NoError(t, s.Delete(ctx, "uploads/spaces/s1/a.txt"))
		_, err := os.Stat(filepath.Join(root, "uploads", "spaces", "s1", "a.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("rejects traversal", func(t *testing.T) {
		err := s.Put(ctx, "../outside.txt", strings.NewReader("x"), 1, "text/plain")
		assert.ErrorContains(t, err, "escapes")
		assert.Error(t, s.Delete(ctx, ""))
	})

	t.Run("public base url", func(t *testing.T) {
		withBase, err := NewLocalObjectStorage(root, "https://files.example.com/")
		require.NoError(t, err)
		assert.Equal(t, "https://files.example.com/uploads/x.pdf", withBase.URL("uploads/x.pdf"))
	})
}
