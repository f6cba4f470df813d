package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/microsoft/amplifier-sub003/internal/analyzer"
	"github.com/microsoft/amplifier-sub003/internal/chunker"
	"github.com/microsoft/amplifier-sub003/internal/consolidator"
	"github.com/microsoft/amplifier-sub003/internal/tokenizer"
	"github.com/microsoft/amplifier-sub003/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyContent   = -32001 // Content parameter is empty
	ErrorCodeChunkingFailed = -32002 // Chunking could not complete
	ErrorCodeUnknownModel   = -32003 // No pricing profile for the requested model
)

// handleChunkDocument handles the chunk_document tool invocation
func (s *Server) handleChunkDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content, ok := args["content"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "content parameter is required", map[string]interface{}{
			"param":  "content",
			"reason": "missing",
		})
	}

	includeContent := getBoolDefault(args, "include_content", false)

	mgr, err := s.chunkManagerFromArgs(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking configuration", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	result, err := mgr.CreateChunks(content)
	if err != nil {
		return nil, newMCPError(ErrorCodeChunkingFailed, "chunking failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	chunks := make([]map[string]interface{}, 0, len(result.Chunks))
	for _, chunk := range result.Chunks {
		chunks = append(chunks, chunkSummary(chunk, includeContent))
	}

	response := map[string]interface{}{
		"chunks":            chunks,
		"total_chunks":      result.TotalChunks,
		"total_tokens":      result.TotalTokens,
		"total_files":       result.TotalFiles,
		"average_chunk":     result.AverageChunkSize,
		"max_chunk":         result.MaxChunkSize,
		"min_chunk":         result.MinChunkSize,
		"target_chunk_size": result.TargetChunkSize,
		"overlap_size":      result.OverlapSize,
		"strategy":          result.ChunkingStrategy,
		"metadata":          result.Metadata,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAnalyzeDocument handles the analyze_document tool invocation: chunk,
// fan analysis out across chunks, then consolidate.
func (s *Server) handleAnalyzeDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, newMCPError(ErrorCodeEmptyContent, "content parameter is required and cannot be empty", map[string]interface{}{
			"param":  "content",
			"reason": "missing or empty",
		})
	}

	analysisRequest, ok := args["request"].(string)
	if !ok || analysisRequest == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "request parameter is required and cannot be empty", map[string]interface{}{
			"param":  "request",
			"reason": "missing or empty",
		})
	}

	mgr, err := s.chunkManagerFromArgs(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking configuration", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	chunking, err := mgr.CreateChunks(content)
	if err != nil {
		return nil, newMCPError(ErrorCodeChunkingFailed, "chunking failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	analyses := s.analyzeChunks(ctx, chunking, analysisRequest)

	engine := s.engine
	if window := getIntDefault(args, "context_window", 0); window > 0 {
		cfg := consolidator.DefaultConfig()
		cfg.ContextWindow = window
		engine, err = consolidator.New(s.analyzer, cfg)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid context_window", map[string]interface{}{
				"reason": err.Error(),
			})
		}
	}

	consolidated, err := engine.Consolidate(ctx, chunking, analyses, analysisRequest)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "consolidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"result": consolidated,
		"chunking": map[string]interface{}{
			"total_chunks": chunking.TotalChunks,
			"total_tokens": chunking.TotalTokens,
			"strategy":     chunking.ChunkingStrategy,
		},
		"provider": s.analyzer.Provider(),
		"model":    s.analyzer.Model(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// analyzeChunks runs the per-chunk analysis fan-out. A chunk whose analysis
// fails is logged and left out of the map; consolidation treats it as
// unanalyzed.
func (s *Server) analyzeChunks(ctx context.Context, chunking *types.ChunkingResult, request string) map[int]*analyzer.Result {
	results := make([]*analyzer.Result, len(chunking.Chunks))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, chunk := range chunking.Chunks {
		g.Go(func() error {
			res, err := s.analyzer.Analyze(ctx, analyzer.AnalyzeRequest{
				Context: chunk.Content,
				Request: request,
			})
			if err != nil {
				log.Printf("mcp: analysis of chunk %d failed: %v", chunk.Index, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	analyses := make(map[int]*analyzer.Result, len(results))
	for i, res := range results {
		if res != nil {
			analyses[chunking.Chunks[i].Index] = res
		}
	}
	return analyses
}

// handleEstimateTokens handles the estimate_tokens tool invocation
func (s *Server) handleEstimateTokens(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content, ok := args["content"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "content parameter is required", map[string]interface{}{
			"param":  "content",
			"reason": "missing",
		})
	}

	encoding := getStringDefault(args, "encoding", tokenizer.DefaultEncoding)
	model := getStringDefault(args, "model", tokenizer.ProfileGPT4oMini.Name)

	profile, ok := tokenizer.ProfileFor(model)
	if !ok {
		return nil, newMCPError(ErrorCodeUnknownModel, "no pricing profile for model", map[string]interface{}{
			"param": "model",
			"value": model,
		})
	}

	counter := s.counterFor(encoding)
	tokens := counter.CountTokens(content)

	estimate := tokenizer.EstimateCost(tokens, profile)
	if out := getIntDefault(args, "expected_output_tokens", 0); out > 0 {
		estimate.OutputCost = tokenizer.EstimateCost(out, profile).OutputCost
		estimate.TotalCost = estimate.InputCost + estimate.OutputCost
	}

	response := map[string]interface{}{
		"token_count": tokens,
		"encoding":    counter.Encoding(),
		"fallback":    counter.UsingFallback(),
		"model":       profile.Name,
		"estimate":    estimate,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// chunkManagerFromArgs builds a chunk manager from the shared chunking
// parameters, reusing the server's per-encoding counter.
func (s *Server) chunkManagerFromArgs(args map[string]interface{}) (*chunker.Manager, error) {
	cfg := chunker.DefaultConfig()
	cfg.TargetChunkSize = getIntDefault(args, "target_chunk_size", cfg.TargetChunkSize)
	cfg.OverlapSize = getIntDefault(args, "overlap_size", cfg.OverlapSize)
	cfg.Encoding = getStringDefault(args, "encoding", cfg.Encoding)

	return chunker.New(s.counterFor(cfg.Encoding), cfg)
}

// chunkSummary renders one chunk for the tool response.
func chunkSummary(chunk *types.Chunk, includeContent bool) map[string]interface{} {
	summary := map[string]interface{}{
		"index":          chunk.Index,
		"token_count":    chunk.TokenCount,
		"start_position": chunk.StartPosition,
		"end_position":   chunk.EndPosition,
		"overlap_tokens": chunk.OverlapTokens,
		"complete_unit":  chunk.IsCompleteUnit,
	}
	if len(chunk.FilesIncluded) > 0 {
		summary["files_included"] = chunk.FilesIncluded
	}
	if includeContent {
		summary["content"] = chunk.Content
	}
	return summary
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
