package types

import "fmt"

// ChunkingResult is the ordered, read-only outcome of splitting one document.
type ChunkingResult struct {
	Chunks []*Chunk

	// TotalTokens is the unique, overlap-adjusted token total: the first
	// chunk's count plus each later chunk's count minus its overlap tokens.
	TotalTokens int

	TotalChunks int

	// Size statistics computed from raw per-chunk token counts.
	AverageChunkSize float64
	MaxChunkSize     int
	MinChunkSize     int

	// TotalFiles is the number of distinct semantic units seen in the input.
	TotalFiles int

	// Configuration the result was produced under.
	TargetChunkSize  int
	OverlapSize      int
	ChunkingStrategy string

	Metadata map[string]any
}

// GetChunk returns the chunk at the given index. Pure lookup, no
// recomputation.
func (r *ChunkingResult) GetChunk(index int) (*Chunk, bool) {
	if index < 0 || index >= len(r.Chunks) {
		return nil, false
	}
	return r.Chunks[index], true
}

// GetChunksForFile returns every chunk whose span intersects the given
// semantic unit, in index order.
func (r *ChunkingResult) GetChunksForFile(path string) []*Chunk {
	var chunks []*Chunk
	for _, c := range r.Chunks {
		if c.ContainsFile(path) {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// Validate checks the result's structural invariants: contiguous indices and
// an unbroken next/previous chain.
func (r *ChunkingResult) Validate() error {
	for i, c := range r.Chunks {
		if c.Index != i {
			return fmt.Errorf("%w: chunk at position %d has index %d", ErrInvalidChunkIndex, i, c.Index)
		}

		if err := c.Validate(); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}

		if i > 0 {
			if c.PreviousChunkIndex == nil || *c.PreviousChunkIndex != i-1 {
				return fmt.Errorf("%w: chunk %d previous link", ErrBrokenChunkChain, i)
			}
		}
		if i < len(r.Chunks)-1 {
			if c.NextChunkIndex == nil || *c.NextChunkIndex != i+1 {
				return fmt.Errorf("%w: chunk %d next link", ErrBrokenChunkChain, i)
			}
		}
	}

	if last := len(r.Chunks) - 1; last >= 0 && r.Chunks[last].NextChunkIndex != nil {
		return fmt.Errorf("%w: last chunk has a next link", ErrBrokenChunkChain)
	}

	return nil
}
