// Package service implements the scanning and analysis business logic on
// top of the cache, snapshot, and parser adapters.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	otelx "github.com/codelore/codelore/internal/adapter/otel"
	"github.com/codelore/codelore/internal/domain/codebase"
)

// ScanService scans source trees and keeps the per-codebase file lists
// that codebase-level analysis depends on.
type ScanService struct {
	maxFileSize int64
	log         *slog.Logger

	mu   sync.RWMutex
	byID map[string]*codebase.Codebase
}

// NewScanService creates a ScanService. maxFileSize bounds individual
// files in bytes; zero selects the scanner default.
func NewScanService(maxFileSize int64, log *slog.Logger) *ScanService {
	if log == nil {
		log = slog.Default()
	}
	return &ScanService{
		maxFileSize: maxFileSize,
		log:         log,
		byID:        make(map[string]*codebase.Codebase),
	}
}

// Scan walks root and registers the resulting codebase under a fresh ID.
func (s *ScanService) Scan(ctx context.Context, root string) (*codebase.Codebase, error) {
	_, span := otelx.StartScanSpan(ctx, root)
	defer span.End()

	files, languages, err := codebase.ScanRoot(root, codebase.ScanOptions{MaxFileSize: s.maxFileSize})
	if err != nil {
		return nil, err
	}

	cb := &codebase.Codebase{
		ID:        uuid.NewString(),
		Root:      root,
		Files:     files,
		Languages: languages,
		ScannedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.byID[cb.ID] = cb
	s.mu.Unlock()

	s.log.Info("codebase scanned",
		"codebase_id", cb.ID,
		"root", root,
		"files", len(files),
		"languages", len(languages),
	)
	return cb, nil
}

// Get returns the scanned codebase for id, if any.
func (s *ScanService) Get(id string) (*codebase.Codebase, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cb, ok := s.byID[id]
	return cb, ok
}
