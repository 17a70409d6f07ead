package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesAndIsIdempotent(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "uploads")

	first, err := EnsureDir(target)
	require.NoError(t, err)

	fi, err := os.Stat(first)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	second, err := EnsureDir(target)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, RemoveIfExists(path))
	assert.False(t, Exists(path))

	// second removal of the same path is not an error
	require.NoError(t, RemoveIfExists(path))
}
