package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// chunkDocumentTool returns the tool definition for chunk_document
func chunkDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "chunk_document",
		Description: "Split a large document into token-bounded chunks with overlap and boundary preservation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Document text to chunk. File sections may be wrapped in <file path=\"...\">...</file> markers to keep files whole",
				},
				"target_chunk_size": map[string]interface{}{
					"type":        "integer",
					"description": "Target tokens per chunk",
					"default":     10000,
					"minimum":     1,
				},
				"overlap_size": map[string]interface{}{
					"type":        "integer",
					"description": "Tokens of trailing context carried into the next chunk",
					"default":     1000,
					"minimum":     0,
				},
				"encoding": map[string]interface{}{
					"type":        "string",
					"description": "Token encoding to count with",
					"enum":        []string{"cl100k_base", "words"},
					"default":     "cl100k_base",
				},
				"include_content": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include each chunk's full content in the response; otherwise only metadata",
					"default":     false,
				},
			},
			Required: []string{"content"},
		},
	}
}

// analyzeDocumentTool returns the tool definition for analyze_document
func analyzeDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "analyze_document",
		Description: "Chunk a document, analyze every chunk, and consolidate the findings into one deduplicated report",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Document text to analyze",
				},
				"request": map[string]interface{}{
					"type":        "string",
					"description": "What to look for (e.g. 'find performance problems')",
				},
				"target_chunk_size": map[string]interface{}{
					"type":        "integer",
					"description": "Target tokens per chunk",
					"default":     10000,
					"minimum":     1,
				},
				"overlap_size": map[string]interface{}{
					"type":        "integer",
					"description": "Tokens of trailing context carried into the next chunk",
					"default":     1000,
					"minimum":     0,
				},
				"encoding": map[string]interface{}{
					"type":        "string",
					"description": "Token encoding to count with",
					"enum":        []string{"cl100k_base", "words"},
					"default":     "cl100k_base",
				},
				"context_window": map[string]interface{}{
					"type":        "integer",
					"description": "Neighbor chunks on each side folded into a relevant chunk's re-read",
					"default":     2,
					"minimum":     0,
				},
			},
			Required: []string{"content", "request"},
		},
	}
}

// estimateTokensTool returns the tool definition for estimate_tokens
func estimateTokensTool() mcp.Tool {
	return mcp.Tool{
		Name:        "estimate_tokens",
		Description: "Count tokens in text and estimate per-model API cost",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Text to count",
				},
				"encoding": map[string]interface{}{
					"type":        "string",
					"description": "Token encoding to count with",
					"enum":        []string{"cl100k_base", "words"},
					"default":     "cl100k_base",
				},
				"model": map[string]interface{}{
					"type":        "string",
					"description": "Model whose pricing to use for the cost estimate",
					"enum":        []string{"gpt-4o", "gpt-4o-mini", "o3-mini"},
					"default":     "gpt-4o-mini",
				},
				"expected_output_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Expected completion size for the output side of the estimate",
					"default":     0,
					"minimum":     0,
				},
			},
			Required: []string{"content"},
		},
	}
}
