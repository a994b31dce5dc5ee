package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	otelx "github.com/codelore/codelore/internal/adapter/otel"
	"github.com/codelore/codelore/internal/adapter/snapshot"
	"github.com/codelore/codelore/internal/domain"
	"github.com/codelore/codelore/internal/domain/analysis"
	"github.com/codelore/codelore/internal/domain/codebase"
	"github.com/codelore/codelore/internal/fingerprint"
	"github.com/codelore/codelore/internal/port/cache"
)

// cacheKeyPrefix is the content-addressed cache key namespace. External
// inspection tooling depends on this convention.
const cacheKeyPrefix = "analysis:"

// CacheKey returns the cache key for a file content hash.
func CacheKey(contentHash string) string {
	return cacheKeyPrefix + contentHash
}

// Parser turns raw file content into parsed source structure.
type Parser interface {
	Parse(ctx context.Context, filePath string, content []byte) (*analysis.Structure, error)
}

// Engine orchestrates file and codebase analysis: fingerprint → cache
// lookup → (on miss) parse + detect + score → cache store → persist.
// Cache correctness follows from content-addressing, so unchanged content
// always hits regardless of renames; no manual invalidation exists.
type Engine struct {
	cache       cache.Cache
	parser      Parser
	snapshots   *snapshot.Store
	scans       *ScanService
	detectors   *analysis.Registry
	metrics     *otelx.Metrics
	cacheTTL    time.Duration
	topN        int
	maxParallel int64
	log         *slog.Logger
}

// EngineOptions tunes an Engine. Zero values select defaults.
type EngineOptions struct {
	Detectors   *analysis.Registry
	Metrics     *otelx.Metrics
	CacheTTL    time.Duration
	TopRankings int
	MaxParallel int
	Logger      *slog.Logger
}

// NewEngine creates an analysis engine over the given collaborators. The
// cache is injected; its lifecycle belongs to whoever assembles the process.
func NewEngine(c cache.Cache, parser Parser, snapshots *snapshot.Store, scans *ScanService, opts EngineOptions) *Engine {
	if opts.Detectors == nil {
		opts.Detectors = analysis.DefaultRegistry()
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.TopRankings <= 0 {
		opts.TopRankings = 20
	}
	if opts.MaxParallel < 1 {
		opts.MaxParallel = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		cache:       c,
		parser:      parser,
		snapshots:   snapshots,
		scans:       scans,
		detectors:   opts.Detectors,
		metrics:     opts.Metrics,
		cacheTTL:    opts.CacheTTL,
		topN:        opts.TopRankings,
		maxParallel: int64(opts.MaxParallel),
		log:         opts.Logger,
	}
}

// AnalyzeFile analyzes a single file. Unless force is set, a prior result
// for identical content is served from the cache with CacheHit=true and no
// recomputation. Only unreadable files fail; malformed source yields a
// result with HasErrors set.
func (e *Engine) AnalyzeFile(ctx context.Context, filePath string, force bool) (*analysis.FileResult, error) {
	ctx, span := otelx.StartFileSpan(ctx, filePath, force)
	defer span.End()

	e.inc(func(m *otelx.Metrics) { m.AnalysesStarted.Add(ctx, 1) })

	content, err := os.ReadFile(filePath)
	if err != nil {
		e.inc(func(m *otelx.Metrics) { m.AnalysesFailed.Add(ctx, 1) })
		return nil, &domain.FileAccessError{Path: filePath, Err: err}
	}
	contentHash := fingerprint.Bytes(content)
	key := CacheKey(contentHash)

	if !force {
		if res, ok := e.cachedResult(ctx, key); ok {
			res.CacheHit = true
			// Content-addressed keys survive renames; report the path the
			// caller asked about, not the one the entry was computed under.
			res.FilePath = filePath
			e.inc(func(m *otelx.Metrics) { m.CacheHits.Add(ctx, 1) })
			return res, nil
		}
		e.inc(func(m *otelx.Metrics) { m.CacheMisses.Add(ctx, 1) })
	}

	res := e.compute(ctx, filePath, contentHash, content)

	if data, err := json.Marshal(res); err == nil {
		_ = e.cache.Set(ctx, key, data, e.cacheTTL)
	} else {
		e.log.Warn("analysis result not cacheable", "file", filePath, "error", err)
	}

	e.inc(func(m *otelx.Metrics) { m.AnalysesCompleted.Add(ctx, 1) })
	return res, nil
}

// cachedResult decodes a cached payload. Corrupt payloads read as misses.
func (e *Engine) cachedResult(ctx context.Context, key string) (*analysis.FileResult, bool) {
	data, ok, err := e.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var res analysis.FileResult
	if err := json.Unmarshal(data, &res); err != nil {
		e.log.Warn("corrupt cache entry ignored", "key", key, "error", err)
		return nil, false
	}
	return &res, true
}

// compute runs the full analysis pipeline. It never fails: collaborator
// errors and panics are folded into the result's error fields.
func (e *Engine) compute(ctx context.Context, filePath, contentHash string, content []byte) *analysis.FileResult {
	res := &analysis.FileResult{
		FilePath:    filePath,
		ContentHash: contentHash,
		AnalyzedAt:  time.Now().UTC(),
	}

	st, err := e.safeParse(ctx, filePath, content)
	if err != nil {
		st = &analysis.Structure{}
		res.HasErrors = true
		res.Errors = append(res.Errors, err.Error())
	}
	if len(st.ParseErrors) > 0 {
		res.HasErrors = true
		res.Errors = append(res.Errors, st.ParseErrors...)
	}

	res.Language = st.Language
	if res.Language == "" {
		res.Language, _ = codebase.LanguageForPath(filePath)
	}
	res.Symbols = st.Symbols
	res.Imports = st.Imports

	res.Patterns = e.safeDetect(st, content, res)
	res.Complexity = analysis.ComputeComplexity(content, st.Symbols)
	res.DocCoverage = analysis.DocumentationCoverage(st.Symbols)
	res.TeachingValue = analysis.TeachingValue(res.DocCoverage, res.Complexity, res.Patterns, st.Symbols)

	return res
}

func (e *Engine) safeParse(ctx context.Context, filePath string, content []byte) (st *analysis.Structure, err error) {
	defer func() {
		if r := recover(); r != nil {
			st, err = nil, fmt.Errorf("parser panic: %v", r)
		}
	}()
	return e.parser.Parse(ctx, filePath, content)
}

func (e *Engine) safeDetect(st *analysis.Structure, content []byte, res *analysis.FileResult) (patterns []analysis.Pattern) {
	defer func() {
		if r := recover(); r != nil {
			res.HasErrors = true
			res.Errors = append(res.Errors, fmt.Sprintf("pattern detection panic: %v", r))
			patterns = nil
		}
	}()
	return e.detectors.Detect(st, content)
}

// AnalyzeCodebase runs the incremental batch analysis for a previously
// scanned codebase. One file's failure never aborts the batch; the new
// hash map and result are persisted as a pair only on full completion, so
// a cancelled run never becomes an incremental baseline.
func (e *Engine) AnalyzeCodebase(ctx context.Context, codebaseID string, incremental bool) (*analysis.CodebaseResult, error) {
	ctx, span := otelx.StartCodebaseSpan(ctx, codebaseID, incremental)
	defer span.End()
	started := time.Now()

	cb, ok := e.scans.Get(codebaseID)
	if !ok {
		return nil, fmt.Errorf("codebase %s: %w", codebaseID, domain.ErrNotScanned)
	}

	var prevHashes map[string]string
	var prevResult *analysis.CodebaseResult
	if incremental {
		var err error
		prevHashes, prevResult, err = e.snapshots.Load(codebaseID)
		if err != nil {
			// Unreadable baseline degrades to a full run.
			e.log.Warn("previous snapshot unavailable", "codebase_id", codebaseID, "error", err)
			prevHashes, prevResult = nil, nil
		}
	}

	// Fingerprint every analyzable file; unreadable files are excluded
	// from this run and retried next time.
	currentHashes := make(map[string]string, len(cb.Files))
	var fileErrors []analysis.FileError
	var work []string
	reused := make(map[string]*analysis.FileResult)

	for _, path := range cb.Files {
		fp, err := fingerprint.File(path)
		if err != nil {
			fileErrors = append(fileErrors, analysis.FileError{FilePath: path, Message: err.Error()})
			continue
		}
		currentHashes[path] = fp.ContentHash

		if incremental && prevResult != nil && prevHashes[path] == fp.ContentHash {
			if prev, ok := prevResult.Files[path]; ok {
				reused[path] = prev
				continue
			}
		}
		work = append(work, path)
	}

	e.inc(func(m *otelx.Metrics) { m.FilesReused.Add(ctx, int64(len(reused))) })

	computed, workErrors := e.analyzeBatch(ctx, work)
	fileErrors = append(fileErrors, workErrors...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files := make(map[string]*analysis.FileResult, len(reused)+len(computed))
	for path, res := range reused {
		files[path] = res
	}
	for path, res := range computed {
		files[path] = res
	}

	result := e.aggregate(codebaseID, files, fileErrors, len(reused), len(cb.Files))

	// Persist only hashes of files that made it into the result, so failed
	// files re-enter the work list on the next incremental run.
	persisted := make(map[string]string, len(files))
	for path := range files {
		persisted[path] = currentHashes[path]
	}
	if err := e.snapshots.Save(codebaseID, persisted, result); err != nil {
		// The result is still valid; the next run just recomputes more.
		e.log.Warn("snapshot save failed", "codebase_id", codebaseID, "error", err)
	}

	e.observeBatch(ctx, time.Since(started))
	e.log.Info("codebase analyzed",
		"codebase_id", codebaseID,
		"files", len(files),
		"reused", len(reused),
		"computed", len(computed),
		"failed", len(fileErrors),
		"duration", time.Since(started),
	)
	return result, nil
}

// analyzeBatch fans out AnalyzeFile with bounded parallelism and fans in
// per-file results or errors. Sibling failures never propagate.
func (e *Engine) analyzeBatch(ctx context.Context, work []string) (map[string]*analysis.FileResult, []analysis.FileError) {
	computed := make(map[string]*analysis.FileResult, len(work))
	var fileErrors []analysis.FileError

	sem := semaphore.NewWeighted(e.maxParallel)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, path := range work {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				fileErrors = append(fileErrors, analysis.FileError{FilePath: path, Message: err.Error()})
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			res, err := e.AnalyzeFile(ctx, path, false)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fileErrors = append(fileErrors, analysis.FileError{FilePath: path, Message: err.Error()})
				return
			}
			computed[path] = res
		}(path)
	}
	wg.Wait()

	return computed, fileErrors
}

// aggregate derives the codebase-level views over the merged file results.
func (e *Engine) aggregate(codebaseID string, files map[string]*analysis.FileResult, fileErrors []analysis.FileError, reusedCount, totalConsidered int) *analysis.CodebaseResult {
	cacheHits := 0
	scoreSum := 0.0
	languages := make(map[string]int)
	for _, fr := range files {
		if fr.CacheHit {
			cacheHits++
		}
		scoreSum += fr.TeachingValue
		if fr.Language != "" {
			languages[fr.Language]++
		}
	}

	metrics := analysis.Summary{
		TotalFiles:    totalConsidered,
		AnalyzedFiles: len(files) - reusedCount,
		ReusedFiles:   reusedCount,
		FailedFiles:   len(fileErrors),
		Languages:     languages,
	}
	if totalConsidered > 0 {
		metrics.CacheHitRate = float64(reusedCount+cacheHits) / float64(totalConsidered)
	}
	if len(files) > 0 {
		metrics.AvgTeachingValue = scoreSum / float64(len(files))
	}

	return &analysis.CodebaseResult{
		CodebaseID:     codebaseID,
		RunID:          uuid.NewString(),
		Files:          files,
		Graph:          analysis.BuildGraph(files),
		Rankings:       analysis.Rank(files, e.topN),
		GlobalPatterns: analysis.CountPatterns(files),
		Metrics:        metrics,
		Errors:         fileErrors,
		AnalyzedAt:     time.Now().UTC(),
	}
}

// Rankings returns the persisted teaching-value ranking for a codebase.
func (e *Engine) Rankings(codebaseID string, limit int) ([]analysis.RankedFile, error) {
	_, prev, err := e.snapshots.Load(codebaseID)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, fmt.Errorf("rankings for %s: %w", codebaseID, domain.ErrNotFound)
	}
	if limit <= 0 || limit > len(prev.Rankings) {
		limit = len(prev.Rankings)
	}
	return prev.Rankings[:limit], nil
}

func (e *Engine) inc(record func(*otelx.Metrics)) {
	if e.metrics != nil {
		record(e.metrics)
	}
}

func (e *Engine) observeBatch(ctx context.Context, d time.Duration) {
	if e.metrics != nil {
		e.metrics.BatchDuration.Record(ctx, d.Seconds())
	}
}
