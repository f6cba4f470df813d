package types

import "fmt"

// Chunk represents one token-bounded segment of a larger document.
//
// A chunk is immutable after creation with one exception: NextChunkIndex is
// back-filled the moment the following chunk is appended to the result.
type Chunk struct {
	// Index is the chunk's position in its ChunkingResult, contiguous from 0.
	Index int

	// Content is the chunk text, including any overlap prefix borrowed from
	// the previous chunk.
	Content string

	// TokenCount is the token count of Content under the result's encoding.
	TokenCount int

	// StartPosition and EndPosition are character offsets of the chunk's own
	// span in the original document. The overlap prefix is not part of the
	// span, so len(Content) may exceed EndPosition-StartPosition.
	StartPosition int
	EndPosition   int

	// OverlapTokens is the number of tokens re-included from the previous
	// chunk. Always 0 for the first chunk.
	OverlapTokens int

	// FilesIncluded lists the semantic units (file paths) whose spans
	// intersect this chunk, in document order without duplicates.
	FilesIncluded []string

	// IsCompleteUnit is true iff every semantic unit intersecting the span
	// has matched open and close markers inside it.
	IsCompleteUnit bool

	// Chain links to neighboring chunks. Nil at the ends of the chain.
	PreviousChunkIndex *int
	NextChunkIndex     *int

	// Metadata is an open key/value map for auxiliary information.
	Metadata map[string]any
}

// OwnContent returns the portion of Content that belongs to this chunk's own
// span, with the overlap prefix stripped. Concatenating OwnContent across all
// chunks of a result reproduces the original document exactly.
func (c *Chunk) OwnContent() string {
	span := c.EndPosition - c.StartPosition
	if span <= 0 || span > len(c.Content) {
		return c.Content
	}
	return c.Content[len(c.Content)-span:]
}

// ContainsFile reports whether the given semantic unit touches this chunk.
func (c *Chunk) ContainsFile(path string) bool {
	for _, f := range c.FilesIncluded {
		if f == path {
			return true
		}
	}
	return false
}

// Validate checks the chunk's structural invariants.
func (c *Chunk) Validate() error {
	if c.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidChunkIndex, c.Index)
	}

	if c.Content == "" {
		return ErrEmptyChunkContent
	}

	if c.EndPosition <= c.StartPosition {
		return fmt.Errorf("%w: [%d,%d)", ErrInvalidSpan, c.StartPosition, c.EndPosition)
	}

	if c.TokenCount < 0 {
		return ErrNegativeTokenCount
	}

	if c.OverlapTokens < 0 {
		return ErrNegativeTokenCount
	}

	// Only chunks after the first may carry overlap
	if c.Index == 0 && c.OverlapTokens > 0 {
		return ErrOverlapOnFirstChunk
	}

	return nil
}
