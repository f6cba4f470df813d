package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/amplifier-sub003/internal/tokenizer"
)

// wordManager builds a manager on the deterministic whitespace encoding so
// tests never touch vocabulary data.
func wordManager(t *testing.T, target, overlap int) *Manager {
	t.Helper()
	counter := tokenizer.NewTokenCounter(tokenizer.EncodingWords)
	mgr, err := New(counter, Config{TargetChunkSize: target, OverlapSize: overlap})
	require.NoError(t, err)
	return mgr
}

// wordDoc builds a space-terminated document of n distinct words.
func wordDoc(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "w%04d ", i)
	}
	return b.String()
}

func TestNew_ConfigValidation(t *testing.T) {
	counter := tokenizer.NewTokenCounter(tokenizer.EncodingWords)

	t.Run("negative sizes are a hard error", func(t *testing.T) {
		_, err := New(counter, Config{TargetChunkSize: -1})
		assert.Error(t, err)

		_, err = New(counter, Config{TargetChunkSize: 100, OverlapSize: -5})
		assert.Error(t, err)
	})

	t.Run("overlap >= target auto-corrects to a tenth", func(t *testing.T) {
		mgr, err := New(counter, Config{TargetChunkSize: 100, OverlapSize: 100})
		require.NoError(t, err)
		assert.Equal(t, 10, mgr.OverlapSize())

		mgr, err = New(counter, Config{TargetChunkSize: 100, OverlapSize: 500})
		require.NoError(t, err)
		assert.Equal(t, 10, mgr.OverlapSize())
	})

	t.Run("zero target selects default", func(t *testing.T) {
		mgr, err := New(counter, Config{})
		require.NoError(t, err)
		assert.Equal(t, DefaultTargetChunkSize, mgr.TargetChunkSize())
	})

	t.Run("nil counter constructs one", func(t *testing.T) {
		mgr, err := New(nil, Config{TargetChunkSize: 10, Encoding: tokenizer.EncodingWords})
		require.NoError(t, err)
		assert.NotNil(t, mgr.Counter())
	})
}

func TestCreateChunks_EmptyInput(t *testing.T) {
	mgr := wordManager(t, 5, 1)

	result, err := mgr.CreateChunks("")
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
	assert.Equal(t, 0, result.TotalChunks)
	assert.Equal(t, 0, result.TotalTokens)
}

func TestCreateChunks_SingleChunkFastPath(t *testing.T) {
	mgr := wordManager(t, 100, 10)

	result, err := mgr.CreateChunks("just a handful of tokens")
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)

	chunk := result.Chunks[0]
	assert.Equal(t, 0, chunk.Index)
	assert.Equal(t, "just a handful of tokens", chunk.Content)
	assert.Equal(t, 5, chunk.TokenCount)
	assert.Equal(t, 0, chunk.OverlapTokens)
	assert.True(t, chunk.IsCompleteUnit)
	assert.Equal(t, StrategySingleChunk, result.ChunkingStrategy)
	assert.Equal(t, 5, result.TotalTokens)
}

func TestCreateChunks_TenTokenScenario(t *testing.T) {
	// 10 whitespace tokens, target 5, overlap 1: two chunks, the second
	// beginning with the overlap token "e".
	mgr := wordManager(t, 5, 1)

	result, err := mgr.CreateChunks("a b c d e f g h i j")
	require.NoError(t, err)
	require.Len(t, result.Chunks, 2)

	first, second := result.Chunks[0], result.Chunks[1]

	assert.Equal(t, "a b c d e", strings.TrimSpace(first.Content))
	assert.Equal(t, 5, first.TokenCount)
	assert.Equal(t, 0, first.OverlapTokens)

	assert.True(t, strings.HasPrefix(second.Content, "e "), "second chunk should start with overlap %q: %q", "e", second.Content)
	assert.Equal(t, "e f g h i j", strings.TrimSpace(second.Content))
	assert.Equal(t, 1, second.OverlapTokens)
	assert.Equal(t, 6, second.TokenCount)

	// Unique token total is overlap-adjusted
	assert.Equal(t, 10, result.TotalTokens)
	require.NoError(t, result.Validate())
}

func TestCreateChunks_ChainInvariants(t *testing.T) {
	mgr := wordManager(t, 20, 3)

	result, err := mgr.CreateChunks(wordDoc(200))
	require.NoError(t, err)
	require.Greater(t, len(result.Chunks), 3)

	for i, c := range result.Chunks {
		assert.Equal(t, i, c.Index)
		if i == 0 {
			assert.Nil(t, c.PreviousChunkIndex)
			assert.Equal(t, 0, c.OverlapTokens)
		} else {
			require.NotNil(t, c.PreviousChunkIndex)
			assert.Equal(t, i-1, *c.PreviousChunkIndex)
			assert.Equal(t, 3, c.OverlapTokens)
		}
		if i == len(result.Chunks)-1 {
			assert.Nil(t, c.NextChunkIndex)
		} else {
			require.NotNil(t, c.NextChunkIndex)
			assert.Equal(t, i+1, *c.NextChunkIndex)
		}
	}

	require.NoError(t, result.Validate())
}

func TestCreateChunks_Reconstruction(t *testing.T) {
	mgr := wordManager(t, 25, 5)

	docs := []string{
		wordDoc(200),
		wordDoc(313),
		`<file path="a.go">` + wordDoc(60) + `</file> <file path="b.go">` + wordDoc(80) + `</file> `,
	}

	for _, doc := range docs {
		result, err := mgr.CreateChunks(doc)
		require.NoError(t, err)

		var rebuilt strings.Builder
		for _, c := range result.Chunks {
			rebuilt.WriteString(c.OwnContent())
		}
		assert.Equal(t, doc, rebuilt.String())
	}
}

func TestCreateChunks_BoundarySnapping(t *testing.T) {
	// Two files of 30 tokens each; with a 35-token target the ideal cut
	// lands mid-second-file but the end of a.go is within the snap window,
	// so the boundary should land exactly after its close marker.
	doc := `<file path="a.go">` + wordDoc(30) + `</file><file path="b.go">` + wordDoc(30) + `</file>`
	mgr := wordManager(t, 35, 0)

	result, err := mgr.CreateChunks(doc)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 2)

	first, second := result.Chunks[0], result.Chunks[1]
	assert.True(t, strings.HasSuffix(strings.TrimSpace(first.OwnContent()), "</file>"),
		"first chunk should end at a unit boundary: %q", first.OwnContent())
	assert.Equal(t, []string{"a.go"}, first.FilesIncluded)
	assert.True(t, first.IsCompleteUnit)
	assert.Equal(t, []string{"b.go"}, second.FilesIncluded)
	assert.True(t, second.IsCompleteUnit)
	assert.Equal(t, StrategySemanticBoundary, result.ChunkingStrategy)
	assert.Equal(t, 2, result.TotalFiles)
}

func TestCreateChunks_SplitUnitIsIncomplete(t *testing.T) {
	// One file far larger than the target must be split, and every piece of
	// it reports an incomplete unit.
	doc := `<file path="big.go">` + wordDoc(100) + `</file>`
	mgr := wordManager(t, 20, 2)

	result, err := mgr.CreateChunks(doc)
	require.NoError(t, err)
	require.Greater(t, len(result.Chunks), 1)

	for _, c := range result.Chunks {
		assert.Equal(t, []string{"big.go"}, c.FilesIncluded)
		assert.False(t, c.IsCompleteUnit, "chunk %d spans only part of big.go", c.Index)
	}
}

func TestCreateChunks_SnapRespectsTokenBudget(t *testing.T) {
	// The only end-marker sits ~495 characters past the ideal cut — inside
	// the snap window but 5x over the token budget. The snap must not widen
	// the chunk to reach it.
	doc := `<file path="big.go">` + wordDoc(100) + `</file>`
	mgr := wordManager(t, 20, 2)

	result, err := mgr.CreateChunks(doc)
	require.NoError(t, err)
	require.Greater(t, len(result.Chunks), 1, "over-budget boundary must not absorb the whole document")

	budget := mgr.TargetChunkSize() + mgr.tolerance()
	for _, c := range result.Chunks {
		span := mgr.Counter().CountTokens(c.OwnContent())
		assert.LessOrEqual(t, span, budget, "chunk %d span [%d,%d) exceeds the token budget",
			c.Index, c.StartPosition, c.EndPosition)
	}
}

func TestCreateChunks_MalformedMarkers(t *testing.T) {
	// Unclosed file tag: no error, affected chunks just report incomplete.
	doc := `<file path="broken.go">` + wordDoc(40)
	mgr := wordManager(t, 15, 0)

	result, err := mgr.CreateChunks(doc)
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)

	for _, c := range result.Chunks {
		assert.False(t, c.IsCompleteUnit)
	}
	assert.Equal(t, 1, result.TotalFiles)
}

func TestCreateChunks_GetChunksForFile(t *testing.T) {
	doc := `<file path="a.go">` + wordDoc(30) + `</file><file path="b.go">` + wordDoc(30) + `</file>`
	mgr := wordManager(t, 35, 0)

	result, err := mgr.CreateChunks(doc)
	require.NoError(t, err)

	aChunks := result.GetChunksForFile("a.go")
	require.NotEmpty(t, aChunks)
	for _, c := range aChunks {
		assert.Contains(t, c.FilesIncluded, "a.go")
	}
	assert.Empty(t, result.GetChunksForFile("missing.go"))
}

func TestScanUnits(t *testing.T) {
	t.Run("well-formed pairs", func(t *testing.T) {
		units := scanUnits(`x<file path="a.go">aaa</file>y<file path="b.go">bbb</file>`)
		require.Len(t, units, 2)
		assert.Equal(t, "a.go", units[0].path)
		assert.Equal(t, "b.go", units[1].path)
		assert.Greater(t, units[0].end, units[0].start)
	})

	t.Run("unclosed unit", func(t *testing.T) {
		units := scanUnits(`<file path="a.go">aaa`)
		require.Len(t, units, 1)
		assert.Equal(t, -1, units[0].end)
	})

	t.Run("no markers", func(t *testing.T) {
		assert.Nil(t, scanUnits("plain text with no markers"))
	})
}

func TestCreateChunks_AggregateStats(t *testing.T) {
	mgr := wordManager(t, 20, 4)

	result, err := mgr.CreateChunks(wordDoc(100))
	require.NoError(t, err)
	require.Greater(t, len(result.Chunks), 1)

	sum := 0
	minSize, maxSize := result.Chunks[0].TokenCount, result.Chunks[0].TokenCount
	unique := result.Chunks[0].TokenCount
	for i, c := range result.Chunks {
		sum += c.TokenCount
		if c.TokenCount < minSize {
			minSize = c.TokenCount
		}
		if c.TokenCount > maxSize {
			maxSize = c.TokenCount
		}
		if i > 0 {
			unique += c.TokenCount - c.OverlapTokens
		}
	}

	// A character-level cut may split a word in two, so the unique total can
	// exceed the raw word count slightly, but never by more than one token
	// per boundary.
	assert.GreaterOrEqual(t, result.TotalTokens, 100)
	assert.Less(t, result.TotalTokens, 100+len(result.Chunks))
	assert.Equal(t, unique, result.TotalTokens)
	assert.Equal(t, minSize, result.MinChunkSize)
	assert.Equal(t, maxSize, result.MaxChunkSize)
	assert.InDelta(t, float64(sum)/float64(len(result.Chunks)), result.AverageChunkSize, 1e-9)
	assert.Equal(t, len(result.Chunks), result.TotalChunks)
}
