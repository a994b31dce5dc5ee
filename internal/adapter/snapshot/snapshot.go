// Package snapshot persists the durable baseline of a codebase analysis:
// the last full result and the file-hash map used for incremental diffing.
// The two are versioned and persisted as a pair; loading ever yields both
// or neither.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codelore/codelore/internal/domain/analysis"
)

// SchemaVersion tags both persisted files. A mismatch on load is treated
// as "no previous state", forcing a full recompute instead of pairing a
// stale hash map with a newly-shaped result.
const SchemaVersion = 1

const (
	hashFileName   = "hashes.json"
	resultFileName = "result.json"
)

// Store reads and writes per-codebase snapshot directories under root.
type Store struct {
	root string
}

// New creates a snapshot store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

type hashFile struct {
	SchemaVersion int               `json:"schema_version"`
	CodebaseID    string            `json:"codebase_id"`
	Hashes        map[string]string `json:"hashes"`
	SavedAt       time.Time         `json:"saved_at"`
}

type resultFile struct {
	SchemaVersion int                      `json:"schema_version"`
	Result        *analysis.CodebaseResult `json:"result"`
}

// Load returns the previous hash map and result for the codebase, or
// (nil, nil, nil) when no usable pair exists: first run, unreadable or
// corrupt files, or a schema version mismatch on either half.
func (s *Store) Load(codebaseID string) (map[string]string, *analysis.CodebaseResult, error) {
	dir := filepath.Join(s.root, codebaseID)

	var hf hashFile
	if !readJSON(filepath.Join(dir, hashFileName), &hf) || hf.SchemaVersion != SchemaVersion {
		return nil, nil, nil
	}

	var rf resultFile
	if !readJSON(filepath.Join(dir, resultFileName), &rf) || rf.SchemaVersion != SchemaVersion || rf.Result == nil {
		return nil, nil, nil
	}

	return hf.Hashes, rf.Result, nil
}

// Save persists the hash map and result as a pair, atomically per file
// (tmp write + rename). The result is written first so a crash in between
// leaves an old hash map with a new result, which at worst causes
// re-analysis, never a stale reuse.
func (s *Store) Save(codebaseID string, hashes map[string]string, result *analysis.CodebaseResult) error {
	dir := filepath.Join(s.root, codebaseID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: create dir: %w", err)
	}

	rf := resultFile{SchemaVersion: SchemaVersion, Result: result}
	if err := writeJSON(filepath.Join(dir, resultFileName), rf); err != nil {
		return fmt.Errorf("snapshot: write result: %w", err)
	}

	hf := hashFile{
		SchemaVersion: SchemaVersion,
		CodebaseID:    codebaseID,
		Hashes:        hashes,
		SavedAt:       time.Now().UTC(),
	}
	if err := writeJSON(filepath.Join(dir, hashFileName), hf); err != nil {
		return fmt.Errorf("snapshot: write hashes: %w", err)
	}

	return nil
}

// readJSON reports whether path held valid JSON for dst. Missing and
// malformed files both read as absent.
func readJSON(path string, dst any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Join(err, os.Remove(tmp))
	}
	return nil
}
