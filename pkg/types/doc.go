// Package types provides the shared data model for document chunking and
// analysis consolidation.
//
// This package defines the entities that flow through the pipeline: chunks
// produced by splitting, findings produced by analysis, and the consolidated
// report that reconciles them.
//
// # Chunking Types
//
// Chunk is one token-bounded segment of a larger document:
//
//	chunk := &types.Chunk{
//	    Index:         1,
//	    Content:       overlapPrefix + spanText,
//	    TokenCount:    9874,
//	    StartPosition: 40210,
//	    EndPosition:   80031,
//	    OverlapTokens: 1000,
//	    FilesIncluded: []string{"internal/server/server.go"},
//	}
//
// Chunks are immutable after creation, with one exception: NextChunkIndex is
// back-filled when the following chunk is appended, so the chain
// chunk[i].NextChunkIndex == i+1 always holds for all but the last chunk.
//
// The overlap prefix borrowed from the previous chunk is part of Content but
// not part of the [StartPosition, EndPosition) span. OwnContent strips it:
//
//	var rebuilt strings.Builder
//	for _, c := range result.Chunks {
//	    rebuilt.WriteString(c.OwnContent())
//	}
//	// rebuilt now equals the original document
//
// ChunkingResult is the ordered, read-only collection of chunks plus
// aggregate statistics. Its lookups are pure:
//
//	chunk, ok := result.GetChunk(3)
//	touched := result.GetChunksForFile("internal/server/server.go")
//
// # Analysis Types
//
// Finding is a discrete analysis result with a category, title, description
// and optional 1-10 priority. ChunkReference points a finding back at the
// chunk(s) it was observed in, with a relevance score always clamped to
// [0,1].
//
// ChunkAnalysis captures the re-read of one expanded context group, and
// ConsolidatedResult is the final deduplicated report:
//
//	result := types.NewConsolidatedResult()
//	result.AddFinding(types.CategoryOpportunity, &types.Finding{
//	    Title:       "Consolidate retry logic",
//	    Description: "Three packages implement their own backoff loops",
//	    Priority:    7,
//	})
//
// # Validation
//
// Chunk and ChunkingResult implement Validate methods that check structural
// invariants (contiguous indices, positive spans, unbroken chain links):
//
//	if err := result.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Errors
//
// Only ErrInternalLimitExceeded and ErrInvalidConfiguration are hard
// failures anywhere in the pipeline; every other condition degrades to
// partial output. Both are sentinel values suitable for errors.Is.
package types
