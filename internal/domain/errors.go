// Package domain provides shared domain-level sentinel errors.
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotScanned indicates a codebase analysis was requested before the
// codebase was scanned. The caller must run a scan first.
var ErrNotScanned = errors.New("codebase not scanned")

// FileAccessError reports a file that could not be read (missing,
// permission denied, deleted mid-read). It carries the offending path so
// batch callers can exclude the file and continue.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("file access %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }
