package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	clmcp "github.com/codelore/codelore/internal/adapter/mcp"
	"github.com/codelore/codelore/internal/domain/analysis"
	"github.com/codelore/codelore/internal/domain/codebase"
)

// --- Mocks ---

type mockScanner struct {
	cb  *codebase.Codebase
	err error
}

func (m *mockScanner) Scan(_ context.Context, _ string) (*codebase.Codebase, error) {
	return m.cb, m.err
}

type mockAnalyzer struct {
	fileRes     *analysis.FileResult
	codebaseRes *analysis.CodebaseResult
	ranked      []analysis.RankedFile
	err         error

	lastForce       bool
	lastIncremental bool
	lastLimit       int
}

func (m *mockAnalyzer) AnalyzeFile(_ context.Context, _ string, force bool) (*analysis.FileResult, error) {
	m.lastForce = force
	return m.fileRes, m.err
}

func (m *mockAnalyzer) AnalyzeCodebase(_ context.Context, _ string, incremental bool) (*analysis.CodebaseResult, error) {
	m.lastIncremental = incremental
	return m.codebaseRes, m.err
}

func (m *mockAnalyzer) Rankings(_ string, limit int) ([]analysis.RankedFile, error) {
	m.lastLimit = limit
	return m.ranked, m.err
}

func newTestServer(deps clmcp.Deps) *clmcp.Server {
	return clmcp.NewServer("0.1.0", deps, nil)
}

func callTool(t *testing.T, s *clmcp.Server, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	tools := s.MCPServer().ListTools()
	tool, ok := tools[name]
	if !ok {
		t.Fatalf("tool %s not registered", name)
	}
	result, err := tool.Handler(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return result
}

func decodeText(t *testing.T, result *mcplib.CallToolResult, dst any) {
	t.Helper()
	text, ok := result.Content[0].(mcplib.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	if err := json.Unmarshal([]byte(text.Text), dst); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
}

// --- Tests ---

func TestNewServer(t *testing.T) {
	s := newTestServer(clmcp.Deps{})
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
	if s.MCPServer() == nil {
		t.Fatal("MCPServer() returned nil")
	}
}

func TestToolRegistration(t *testing.T) {
	s := newTestServer(clmcp.Deps{})

	tools := s.MCPServer().ListTools()
	if len(tools) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(tools))
	}

	expectedTools := map[string]bool{
		"scan_codebase":         false,
		"analyze_file":          false,
		"analyze_codebase":      false,
		"get_teaching_rankings": false,
	}
	for name := range tools {
		if _, ok := expectedTools[name]; ok {
			expectedTools[name] = true
		} else {
			t.Errorf("unexpected tool: %s", name)
		}
	}
	for name, found := range expectedTools {
		if !found {
			t.Errorf("expected tool %q not registered", name)
		}
	}
}

func TestHandleScanCodebase(t *testing.T) {
	scanner := &mockScanner{
		cb: &codebase.Codebase{ID: "cb-1", Root: "/repo", Files: []string{"/repo/main.go"}},
	}
	s := newTestServer(clmcp.Deps{Scanner: scanner})

	result := callTool(t, s, "scan_codebase", map[string]any{"root": "/repo"})
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}

	var cb codebase.Codebase
	decodeText(t, result, &cb)
	if cb.ID != "cb-1" {
		t.Fatalf("expected cb-1, got %s", cb.ID)
	}
	if len(cb.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(cb.Files))
	}
}

func TestHandleScanCodebase_MissingRoot(t *testing.T) {
	s := newTestServer(clmcp.Deps{Scanner: &mockScanner{}})

	result := callTool(t, s, "scan_codebase", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error result for missing root")
	}
}

func TestHandleAnalyzeFile(t *testing.T) {
	analyzer := &mockAnalyzer{
		fileRes: &analysis.FileResult{FilePath: "/repo/main.go", TeachingValue: 0.42, CacheHit: true},
	}
	s := newTestServer(clmcp.Deps{Analyzer: analyzer})

	result := callTool(t, s, "analyze_file", map[string]any{"file_path": "/repo/main.go", "force": true})
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}
	if !analyzer.lastForce {
		t.Fatal("force flag not forwarded")
	}

	var res analysis.FileResult
	decodeText(t, result, &res)
	if res.TeachingValue != 0.42 {
		t.Fatalf("expected 0.42, got %v", res.TeachingValue)
	}
	if !res.CacheHit {
		t.Fatal("cache_hit not round-tripped")
	}
}

func TestHandleAnalyzeFile_MissingPath(t *testing.T) {
	s := newTestServer(clmcp.Deps{Analyzer: &mockAnalyzer{}})

	result := callTool(t, s, "analyze_file", map[string]any{"force": true})
	if !result.IsError {
		t.Fatal("expected error result for missing file_path")
	}
}

func TestHandleAnalyzeCodebase_IncrementalDefaultsTrue(t *testing.T) {
	analyzer := &mockAnalyzer{
		codebaseRes: &analysis.CodebaseResult{CodebaseID: "cb-1"},
	}
	s := newTestServer(clmcp.Deps{Analyzer: analyzer})

	result := callTool(t, s, "analyze_codebase", map[string]any{"codebase_id": "cb-1"})
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}
	if !analyzer.lastIncremental {
		t.Fatal("incremental must default to true")
	}

	result = callTool(t, s, "analyze_codebase", map[string]any{"codebase_id": "cb-1", "incremental": false})
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}
	if analyzer.lastIncremental {
		t.Fatal("explicit incremental=false not forwarded")
	}
}

func TestHandleAnalyzeCodebase_FailurePropagatedAsErrorResult(t *testing.T) {
	analyzer := &mockAnalyzer{err: errors.New("not scanned")}
	s := newTestServer(clmcp.Deps{Analyzer: analyzer})

	result := callTool(t, s, "analyze_codebase", map[string]any{"codebase_id": "nope"})
	if !result.IsError {
		t.Fatal("expected error result")
	}
}

func TestHandleTeachingRankings(t *testing.T) {
	analyzer := &mockAnalyzer{
		ranked: []analysis.RankedFile{
			{FilePath: "a.go", Score: 0.9},
			{FilePath: "b.go", Score: 0.5},
		},
	}
	s := newTestServer(clmcp.Deps{Analyzer: analyzer})

	result := callTool(t, s, "get_teaching_rankings", map[string]any{"codebase_id": "cb-1", "limit": float64(2)})
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}
	if analyzer.lastLimit != 2 {
		t.Fatalf("limit not forwarded, got %d", analyzer.lastLimit)
	}

	var ranked []analysis.RankedFile
	decodeText(t, result, &ranked)
	if len(ranked) != 2 || ranked[0].FilePath != "a.go" {
		t.Fatalf("unexpected rankings: %v", ranked)
	}
}
