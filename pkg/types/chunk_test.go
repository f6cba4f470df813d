package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestChunkValidate(t *testing.T) {
	valid := &Chunk{
		Index:         0,
		Content:       "some content",
		TokenCount:    3,
		StartPosition: 0,
		EndPosition:   12,
	}
	assert.NoError(t, valid.Validate())

	empty := &Chunk{Index: 0, StartPosition: 0, EndPosition: 5}
	assert.ErrorIs(t, empty.Validate(), ErrEmptyChunkContent)

	badSpan := &Chunk{Index: 0, Content: "x", StartPosition: 10, EndPosition: 10}
	assert.ErrorIs(t, badSpan.Validate(), ErrInvalidSpan)

	firstWithOverlap := &Chunk{
		Index:         0,
		Content:       "x",
		StartPosition: 0,
		EndPosition:   1,
		OverlapTokens: 5,
	}
	assert.ErrorIs(t, firstWithOverlap.Validate(), ErrOverlapOnFirstChunk)
}

func TestChunkOwnContent(t *testing.T) {
	// Chunk 1 carries a 4-char overlap prefix "e f " in front of its own
	// 9-char span.
	c := &Chunk{
		Index:         1,
		Content:       "e f g h i j k",
		StartPosition: 10,
		EndPosition:   19,
	}
	assert.Equal(t, "g h i j k", c.OwnContent())

	// No overlap: OwnContent is the whole content.
	c0 := &Chunk{Index: 0, Content: "abc", StartPosition: 0, EndPosition: 3}
	assert.Equal(t, "abc", c0.OwnContent())
}

func TestChunkingResultLookups(t *testing.T) {
	result := &ChunkingResult{
		Chunks: []*Chunk{
			{Index: 0, Content: "a", StartPosition: 0, EndPosition: 1, FilesIncluded: []string{"pkg/a.go"}},
			{Index: 1, Content: "b", StartPosition: 1, EndPosition: 2, FilesIncluded: []string{"pkg/a.go", "pkg/b.go"}},
		},
	}

	c, ok := result.GetChunk(1)
	require.True(t, ok)
	assert.Equal(t, 1, c.Index)

	_, ok = result.GetChunk(5)
	assert.False(t, ok)
	_, ok = result.GetChunk(-1)
	assert.False(t, ok)

	assert.Len(t, result.GetChunksForFile("pkg/a.go"), 2)
	assert.Len(t, result.GetChunksForFile("pkg/b.go"), 1)
	assert.Empty(t, result.GetChunksForFile("missing.go"))
}

func TestChunkingResultValidateChain(t *testing.T) {
	result := &ChunkingResult{
		Chunks: []*Chunk{
			{Index: 0, Content: "a", StartPosition: 0, EndPosition: 1, NextChunkIndex: intPtr(1)},
			{Index: 1, Content: "b", StartPosition: 1, EndPosition: 2, PreviousChunkIndex: intPtr(0)},
		},
	}
	assert.NoError(t, result.Validate())

	// Break the chain
	result.Chunks[0].NextChunkIndex = nil
	assert.ErrorIs(t, result.Validate(), ErrBrokenChunkChain)

	// Non-contiguous index
	result.Chunks[0].NextChunkIndex = intPtr(1)
	result.Chunks[1].Index = 7
	assert.ErrorIs(t, result.Validate(), ErrInvalidChunkIndex)
}

func TestChunkReferenceClampScore(t *testing.T) {
	ref := ChunkReference{RelevanceScore: 1.7, KeyFindings: []string{"a", "b", "c", "d", "e", "f", "g"}}
	ref.ClampScore()
	assert.Equal(t, 1.0, ref.RelevanceScore)
	assert.Len(t, ref.KeyFindings, MaxKeyFindings)

	neg := ChunkReference{RelevanceScore: -0.2}
	neg.ClampScore()
	assert.Equal(t, 0.0, neg.RelevanceScore)
}

func TestConsolidatedResultAddFinding(t *testing.T) {
	r := NewConsolidatedResult()
	r.AddFinding(CategoryOpportunity, &Finding{Title: "a"})
	r.AddFinding(CategoryGap, &Finding{Title: "b"})
	r.AddFinding(CategoryGap, &Finding{Title: "c"})

	assert.Equal(t, 3, r.TotalFindings())
	assert.Equal(t, 3, r.Stats.UniqueFindingsCount)
	assert.Len(t, r.Findings(CategoryGap), 2)
	assert.Len(t, r.Findings(CategoryInsight), 0)
}

func TestFindingClampPriority(t *testing.T) {
	f := &Finding{Priority: 15}
	f.ClampPriority()
	assert.Equal(t, MaxPriority, f.Priority)

	unset := &Finding{}
	unset.ClampPriority()
	assert.Equal(t, 0, unset.Priority)
}
