// Package fingerprint computes content fingerprints used for change detection.
//
// Fingerprints are xxhash-64 digests of a file's full byte content. They are
// change-detection keys, not cryptographic integrity checks: equal digests
// are treated as equal content.
package fingerprint

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// File computes the fingerprint of a file by streaming its contents,
// so large files are never held fully in memory.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Bytes computes the fingerprint of in-memory content.
func Bytes(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// Reader computes the fingerprint of everything readable from r.
func Reader(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash stream: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
