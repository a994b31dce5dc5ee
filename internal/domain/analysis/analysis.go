// Package analysis defines the analysis result model and the pure
// derivation functions (scoring, pattern detection, graph building)
// that operate on parsed source structure.
package analysis

import "time"

// Symbol is a named declaration extracted from a source file.
type Symbol struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"` // "function", "method", "type", "class", "interface"
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Documented bool   `json:"documented"`
}

// Pattern is a recognized design or teaching pattern in a file.
type Pattern struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Complexity holds per-file complexity metrics.
type Complexity struct {
	LineCount      int     `json:"line_count"`
	CodeLineCount  int     `json:"code_line_count"`
	DecisionPoints int     `json:"decision_points"`
	MaxNesting     int     `json:"max_nesting"`
	AvgSymbolSpan  float64 `json:"avg_symbol_span"`
}

// Structure is the parsed shape of a single source file, produced by the
// parser adapter and consumed by the derivation functions. ParseErrors is
// non-empty when the source was malformed; partial structure is still usable.
type Structure struct {
	Language    string
	Symbols     []Symbol
	Imports     []string
	ParseErrors []string
}

// FileResult is the immutable per-file analysis payload. It is produced
// once per distinct file content and cached under a content-addressed key;
// re-analysis produces a new value, never an in-place mutation.
type FileResult struct {
	FilePath      string     `json:"file_path"`
	Language      string     `json:"language"`
	ContentHash   string     `json:"content_hash"`
	Symbols       []Symbol   `json:"symbols"`
	Patterns      []Pattern  `json:"patterns"`
	Imports       []string   `json:"imports,omitempty"`
	TeachingValue float64    `json:"teaching_value_score"`
	Complexity    Complexity `json:"complexity_metrics"`
	DocCoverage   float64    `json:"documentation_coverage"`
	HasErrors     bool       `json:"has_errors"`
	Errors        []string   `json:"errors,omitempty"`
	AnalyzedAt    time.Time  `json:"analyzed_at"`
	CacheHit      bool       `json:"cache_hit"`
}

// FileError records a file that failed during a batch analysis.
type FileError struct {
	FilePath string `json:"file_path"`
	Message  string `json:"message"`
}

// RankedFile is one entry in the teaching-value ranking.
type RankedFile struct {
	FilePath string  `json:"file_path"`
	Score    float64 `json:"score"`
}

// PatternCount aggregates a pattern across a codebase.
type PatternCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary holds codebase-level aggregate metrics for one analysis run.
type Summary struct {
	TotalFiles       int            `json:"total_files"`
	AnalyzedFiles    int            `json:"analyzed_files"`
	ReusedFiles      int            `json:"reused_files"`
	FailedFiles      int            `json:"failed_files"`
	CacheHitRate     float64        `json:"cache_hit_rate"`
	AvgTeachingValue float64        `json:"avg_teaching_value"`
	Languages        map[string]int `json:"languages"`
}

// CodebaseResult is the aggregate outcome of one codebase analysis run.
// Files maps file path to its result; entries for files that vanished since
// the previous run are dropped, and failed files are listed in Errors only.
type CodebaseResult struct {
	CodebaseID     string                 `json:"codebase_id"`
	RunID          string                 `json:"run_id"`
	Files          map[string]*FileResult `json:"file_results"`
	Graph          *DependencyGraph       `json:"derived_graph"`
	Rankings       []RankedFile           `json:"derived_rankings"`
	GlobalPatterns []PatternCount         `json:"global_patterns"`
	Metrics        Summary                `json:"metrics"`
	Errors         []FileError            `json:"errors,omitempty"`
	AnalyzedAt     time.Time              `json:"analyzed_at"`
}
