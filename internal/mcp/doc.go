// Package mcp implements the Model Context Protocol (MCP) server for the
// document analysis pipeline.
//
// The MCP server exposes three tools to AI coding assistants (Claude Code, Codex CLI):
//   - chunk_document: Split a large document into token-bounded chunks
//   - analyze_document: Chunk, analyze, and consolidate findings for a document
//   - estimate_tokens: Count tokens and project per-model API cost
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Tool: chunk_document
//
// Split a document into chunks that respect a token budget:
//
//	Request:
//	{
//	  "name": "chunk_document",
//	  "arguments": {
//	    "content": "<file path=\"a.go\">...</file><file path=\"b.go\">...</file>",
//	    "target_chunk_size": 10000,
//	    "overlap_size": 1000,
//	    "encoding": "cl100k_base"
//	  }
//	}
//
//	Response:
//	{
//	  "total_chunks": 3,
//	  "total_tokens": 27412,
//	  "strategy": "semantic_boundary",
//	  "chunks": [
//	    {
//	      "index": 0,
//	      "token_count": 10214,
//	      "start_position": 0,
//	      "end_position": 41289,
//	      "files_included": ["a.go", "b.go"],
//	      "complete_unit": true
//	    }
//	  ]
//	}
//
// # Tool: analyze_document
//
// Run the whole pipeline: chunk the document, analyze every chunk through
// the configured provider, then consolidate the per-chunk findings into one
// deduplicated report with cross-chunk patterns:
//
//	Request:
//	{
//	  "name": "analyze_document",
//	  "arguments": {
//	    "content": "...",
//	    "request": "find performance problems",
//	    "context_window": 2
//	  }
//	}
//
//	Response:
//	{
//	  "result": {
//	    "opportunities": [...],
//	    "insights": [...],
//	    "patterns": [...],
//	    "gaps": [...],
//	    "cross_chunk_patterns": ["..."],
//	    "stats": { "analyzer_calls_made": 7, ... }
//	  },
//	  "provider": "openai",
//	  "model": "gpt-4o-mini"
//	}
//
// # Tool: estimate_tokens
//
// Count tokens and project cost before committing to an analysis run:
//
//	Request:
//	{
//	  "name": "estimate_tokens",
//	  "arguments": {
//	    "content": "...",
//	    "model": "gpt-4o-mini"
//	  }
//	}
//
//	Response:
//	{
//	  "token_count": 18232,
//	  "encoding": "cl100k_base",
//	  "model": "gpt-4o-mini",
//	  "estimate": { "input_cost": 0.0027, "output_cost": 0.0109, "total_cost": 0.0137 }
//	}
//
// # MCP Client Configuration
//
// Configure in Claude Code's MCP settings:
//
//	{
//	  "mcpServers": {
//	    "amplifier-context": {
//	      "command": "/usr/local/bin/contextmcp",
//	      "env": {
//	        "OPENAI_API_KEY": "your-api-key"
//	      }
//	    }
//	  }
//	}
//
// Without an API key the server falls back to the deterministic local
// analyzer, which is useful for offline runs and testing.
//
// # Error Handling
//
// The MCP server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params",
//	    "data": {
//	      "param": "content",
//	      "reason": "missing"
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error
//   - -32001: Content is empty
//   - -32002: Chunking could not complete
//   - -32003: No pricing profile for the requested model
//
// # Logging
//
// The MCP server logs to stderr (stdout is reserved for MCP protocol):
//
//	log.SetOutput(os.Stderr)
//	log.Printf("MCP server started")
package mcp
