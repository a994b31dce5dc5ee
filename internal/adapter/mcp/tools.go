package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.scanCodebaseTool(),
		s.analyzeFileTool(),
		s.analyzeCodebaseTool(),
		s.teachingRankingsTool(),
	)
}

func (s *Server) scanCodebaseTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("scan_codebase",
		mcplib.WithDescription("Scan a source tree and register its analyzable file list; returns the codebase id used by analyze_codebase"),
		mcplib.WithString("root",
			mcplib.Required(),
			mcplib.Description("Absolute path of the directory to scan"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleScanCodebase}
}

func (s *Server) analyzeFileTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("analyze_file",
		mcplib.WithDescription("Analyze a single source file: symbols, patterns, complexity, teaching value"),
		mcplib.WithString("file_path",
			mcplib.Required(),
			mcplib.Description("Absolute path of the file to analyze"),
		),
		mcplib.WithBoolean("force",
			mcplib.Description("Bypass the content-addressed cache and recompute"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleAnalyzeFile}
}

func (s *Server) analyzeCodebaseTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("analyze_codebase",
		mcplib.WithDescription("Analyze a scanned codebase incrementally: reuses results for unchanged files"),
		mcplib.WithString("codebase_id",
			mcplib.Required(),
			mcplib.Description("Codebase id returned by scan_codebase"),
		),
		mcplib.WithBoolean("incremental",
			mcplib.Description("Reuse the previous run's results for unchanged files (default true)"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleAnalyzeCodebase}
}

func (s *Server) teachingRankingsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_teaching_rankings",
		mcplib.WithDescription("Get the teaching-value ranking from the last analysis of a codebase"),
		mcplib.WithString("codebase_id",
			mcplib.Required(),
			mcplib.Description("Codebase id returned by scan_codebase"),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum entries to return"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleTeachingRankings}
}

func (s *Server) handleScanCodebase(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	root, ok := req.GetArguments()["root"].(string)
	if !ok || root == "" {
		return mcplib.NewToolResultError("root is required"), nil
	}
	cb, err := s.deps.Scanner.Scan(ctx, root)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to scan %s", root), err,
		), nil
	}
	return s.toolResultJSON(cb)
}

func (s *Server) handleAnalyzeFile(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	args := req.GetArguments()
	filePath, ok := args["file_path"].(string)
	if !ok || filePath == "" {
		return mcplib.NewToolResultError("file_path is required"), nil
	}
	force, _ := args["force"].(bool)

	res, err := s.deps.Analyzer.AnalyzeFile(ctx, filePath, force)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to analyze %s", filePath), err,
		), nil
	}
	return s.toolResultJSON(res)
}

func (s *Server) handleAnalyzeCodebase(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	args := req.GetArguments()
	codebaseID, ok := args["codebase_id"].(string)
	if !ok || codebaseID == "" {
		return mcplib.NewToolResultError("codebase_id is required"), nil
	}
	incremental := true
	if v, ok := args["incremental"].(bool); ok {
		incremental = v
	}

	res, err := s.deps.Analyzer.AnalyzeCodebase(ctx, codebaseID, incremental)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to analyze codebase %s", codebaseID), err,
		), nil
	}
	return s.toolResultJSON(res)
}

func (s *Server) handleTeachingRankings(_ context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	args := req.GetArguments()
	codebaseID, ok := args["codebase_id"].(string)
	if !ok || codebaseID == "" {
		return mcplib.NewToolResultError("codebase_id is required"), nil
	}
	limit := 0
	if v, ok := args["limit"].(float64); ok {
		limit = int(v)
	}

	ranked, err := s.deps.Analyzer.Rankings(codebaseID, limit)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to load rankings for %s", codebaseID), err,
		), nil
	}
	return s.toolResultJSON(ranked)
}

// toolResultJSON marshals v into a JSON text tool result.
func (s *Server) toolResultJSON(v any) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal result", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}
