package hashx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgrelay/internal/common"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFileSHA256_Deterministic(t *testing.T) {
	path := writeFile(t, "a.bin", []byte("hello world"))

	first, err := FileSHA256(path)
	require.NoError(t, err)
	second, err := FileSHA256(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "hex-encoded sha256")
}

func TestFileSHA256_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty", nil)

	got, err := FileSHA256(path)
	require.NoError(t, err)
	// well-known digest of the empty input
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got)
}

func TestFileSHA256_SingleByteMutationChangesDigest(t *testing.T) {
	a := writeFile(t, "a", []byte("payload-0"))
	b := writeFile(t, "b", []byte("payload-1"))

	ha, err := FileSHA256(a)
	require.NoError(t, err)
	hb, err := FileSHA256(b)
	require.NoError(t, err)

	assert.NotEqual(t, ha, hb)
}

func TestFileSHA256_UnreadablePath(t *testing.T) {
	_, err := FileSHA256(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrIO))
}

func TestVerifyFileSHA256(t *testing.T) {
	path := writeFile(t, "v.bin", []byte("verify me"))

	digest, err := FileSHA256(path)
	require.NoError(t, err)

	ok, err := VerifyFileSHA256(path, digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyFileSHA256(path, "deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)
}
