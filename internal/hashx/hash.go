// Package hashx computes content digests of files on disk.
//
// The same streaming SHA-256 is used when a file is first ingested and later
// when its integrity is re-verified, so byte-for-byte equality is the
// correctness criterion.
package hashx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"tgrelay/internal/common"
)

// FileSHA256 streams the file at path through SHA-256 and returns the
// hex-encoded digest. The file is never buffered whole, so multi-gigabyte
// uploads hash in constant memory.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", common.ErrIO, path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: hash %s: %w", common.ErrIO, path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyFileSHA256 recomputes the digest of path and reports whether it
// equals expected.
func VerifyFileSHA256(path string, expected string) (bool, error) {
	actual, err := FileSHA256(path)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}
