package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/microsoft/amplifier-sub003/internal/analyzer"
	"github.com/microsoft/amplifier-sub003/internal/consolidator"
	"github.com/microsoft/amplifier-sub003/internal/tokenizer"
)

const (
	// ServerName is the MCP server name
	ServerName = "amplifier-context-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	analyzer analyzer.Analyzer
	engine   *consolidator.Engine

	// counters caches one TokenCounter per encoding for the process
	// lifetime; loading a BPE vocabulary per request is too expensive.
	countersMu sync.Mutex
	counters   map[string]*tokenizer.TokenCounter
}

// NewServer creates a new MCP server instance. The analyzer provider is
// selected from the environment.
func NewServer() (*Server, error) {
	an, err := analyzer.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	engine, err := consolidator.New(an, consolidator.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize consolidation engine: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		analyzer: an,
		engine:   engine,
		counters: make(map[string]*tokenizer.TokenCounter),
	}

	s.registerTools()

	return s, nil
}

// counterFor returns the shared token counter for an encoding, constructing
// it on first use.
func (s *Server) counterFor(encoding string) *tokenizer.TokenCounter {
	s.countersMu.Lock()
	defer s.countersMu.Unlock()

	if counter, ok := s.counters[encoding]; ok {
		return counter
	}
	counter := tokenizer.NewTokenCounter(encoding)
	s.counters[encoding] = counter
	return counter
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.analyzer.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(chunkDocumentTool(), s.handleChunkDocument)
	s.mcp.AddTool(analyzeDocumentTool(), s.handleAnalyzeDocument)
	s.mcp.AddTool(estimateTokensTool(), s.handleEstimateTokens)
}
