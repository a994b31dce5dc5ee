// Package mcp exposes the scan and analysis services as Model Context
// Protocol tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/codelore/codelore/internal/domain/analysis"
	"github.com/codelore/codelore/internal/domain/codebase"
)

// Scanner is the scan capability the tools need.
type Scanner interface {
	Scan(ctx context.Context, root string) (*codebase.Codebase, error)
}

// Analyzer is the analysis capability the tools need.
type Analyzer interface {
	AnalyzeFile(ctx context.Context, filePath string, force bool) (*analysis.FileResult, error)
	AnalyzeCodebase(ctx context.Context, codebaseID string, incremental bool) (*analysis.CodebaseResult, error)
	Rankings(codebaseID string, limit int) ([]analysis.RankedFile, error)
}

// Deps holds the services the MCP tools delegate to.
type Deps struct {
	Scanner  Scanner
	Analyzer Analyzer
}

// Server wraps the mcp-go server with codelore's tool set.
type Server struct {
	mcpServer *mcpserver.MCPServer
	deps      Deps
	log       *slog.Logger
}

// NewServer creates the MCP server and registers all tools.
func NewServer(version string, deps Deps, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		mcpServer: mcpserver.NewMCPServer(
			"codelore",
			version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithRecovery(),
		),
		deps: deps,
		log:  log,
	}
	s.registerTools()
	return s
}

// MCPServer exposes the underlying mcp-go server, mainly for tests.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("mcp server starting", "transport", "stdio")
	return mcpserver.ServeStdio(s.mcpServer)
}
