// Package fingerprint computes content hashes used for staleness detection
// and content-addressed cache keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/codelore/codelore/internal/domain"
)

// Fingerprint pairs a file path with the hash of its content at read time.
type Fingerprint struct {
	FilePath    string `json:"file_path"`
	ContentHash string `json:"content_hash"`
}

// Bytes returns the hex-encoded SHA-256 digest of content. Byte-identical
// content always yields the same digest, so cache keys derived from it are
// stable across renames and moves.
func Bytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// File reads path in full and returns its fingerprint. Any read failure is
// reported as a *domain.FileAccessError so batch callers can exclude the
// file and continue.
func File(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, &domain.FileAccessError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Fingerprint{}, &domain.FileAccessError{Path: path, Err: err}
	}

	return Fingerprint{
		FilePath:    path,
		ContentHash: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
