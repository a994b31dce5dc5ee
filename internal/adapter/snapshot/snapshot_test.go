package snapshot_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/codelore/codelore/internal/adapter/snapshot"
	"github.com/codelore/codelore/internal/domain/analysis"
)

func sampleResult(id string) *analysis.CodebaseResult {
	return &analysis.CodebaseResult{
		CodebaseID: id,
		RunID:      "run-1",
		Files: map[string]*analysis.FileResult{
			"main.go": {FilePath: "main.go", ContentHash: "abc", TeachingValue: 0.5},
		},
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store := snapshot.New(t.TempDir())
	hashes := map[string]string{"main.go": "abc", "util.go": "def"}

	if err := store.Save("cb-1", hashes, sampleResult("cb-1")); err != nil {
		t.Fatal(err)
	}

	gotHashes, gotResult, err := store.Load("cb-1")
	if err != nil {
		t.Fatal(err)
	}
	if gotResult == nil {
		t.Fatal("expected a result")
	}
	if gotResult.CodebaseID != "cb-1" {
		t.Fatalf("expected cb-1, got %s", gotResult.CodebaseID)
	}
	if len(gotHashes) != 2 || gotHashes["main.go"] != "abc" {
		t.Fatalf("unexpected hashes: %v", gotHashes)
	}
	if gotResult.Files["main.go"].ContentHash != "abc" {
		t.Fatal("file result did not round-trip")
	}
}

func TestLoadFirstRunYieldsNothing(t *testing.T) {
	store := snapshot.New(t.TempDir())

	hashes, result, err := store.Load("never-saved")
	if err != nil {
		t.Fatal(err)
	}
	if hashes != nil || result != nil {
		t.Fatal("expected no previous state on first run")
	}
}

func TestLoadMissingHalfYieldsNothing(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	if err := store.Save("cb-2", map[string]string{"a.go": "h"}, sampleResult("cb-2")); err != nil {
		t.Fatal(err)
	}
	// Remove one half of the pair; the other must not load alone.
	if err := os.Remove(filepath.Join(dir, "cb-2", "result.json")); err != nil {
		t.Fatal(err)
	}

	hashes, result, err := store.Load("cb-2")
	if err != nil {
		t.Fatal(err)
	}
	if hashes != nil || result != nil {
		t.Fatal("a half pair must load as no previous state")
	}
}

func TestLoadCorruptFileYieldsNothing(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	if err := store.Save("cb-3", map[string]string{"a.go": "h"}, sampleResult("cb-3")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cb-3", "hashes.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	hashes, result, err := store.Load("cb-3")
	if err != nil {
		t.Fatal(err)
	}
	if hashes != nil || result != nil {
		t.Fatal("corrupt state must load as no previous state")
	}
}

func TestLoadVersionMismatchYieldsNothing(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	if err := store.Save("cb-4", map[string]string{"a.go": "h"}, sampleResult("cb-4")); err != nil {
		t.Fatal(err)
	}

	// Rewrite the hash file under a future schema version.
	path := filepath.Join(dir, "cb-4", "hashes.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	doc["schema_version"] = snapshot.SchemaVersion + 1
	raw, err = json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	hashes, result, err := store.Load("cb-4")
	if err != nil {
		t.Fatal(err)
	}
	if hashes != nil || result != nil {
		t.Fatal("schema version mismatch must load as no previous state")
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	store := snapshot.New(t.TempDir())

	if err := store.Save("cb-5", map[string]string{"a.go": "v1"}, sampleResult("cb-5")); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("cb-5", map[string]string{"a.go": "v2"}, sampleResult("cb-5")); err != nil {
		t.Fatal(err)
	}

	hashes, _, err := store.Load("cb-5")
	if err != nil {
		t.Fatal(err)
	}
	if hashes["a.go"] != "v2" {
		t.Fatalf("expected v2, got %s", hashes["a.go"])
	}
}
