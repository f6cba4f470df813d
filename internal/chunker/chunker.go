package chunker

import (
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/microsoft/amplifier-sub003/internal/tokenizer"
	"github.com/microsoft/amplifier-sub003/pkg/types"
)

const (
	// DefaultTargetChunkSize is the target token budget per chunk.
	DefaultTargetChunkSize = 10000

	// DefaultOverlapSize is the number of trailing tokens re-included at the
	// start of the next chunk.
	DefaultOverlapSize = 1000

	// tokenTolerance is the largest acceptable distance from the target when
	// binary-searching a chunk end offset. Scaled down for small targets so
	// tiny documents still split.
	tokenTolerance = 50

	// boundaryWindow is how far (in characters) from the ideal end offset a
	// unit end-marker may be and still attract the chunk boundary.
	boundaryWindow = 500

	// maxChunks caps the chunking loop as a corruption guard.
	maxChunks = 10000

	// charsPerTokenGuess seeds the binary search with a ~4 chars/token
	// estimate.
	charsPerTokenGuess = 4
)

// Chunking strategy labels recorded on results.
const (
	StrategySingleChunk      = "single_chunk"
	StrategySemanticBoundary = "semantic_boundary"
	StrategyTokenWindow      = "token_window"
)

// Config holds chunk manager settings. Zero values select defaults.
type Config struct {
	TargetChunkSize int
	OverlapSize     int

	// Encoding names the tokenizer encoding, used only when no counter is
	// supplied to New.
	Encoding string
}

// DefaultConfig returns the standard chunking configuration.
func DefaultConfig() Config {
	return Config{
		TargetChunkSize: DefaultTargetChunkSize,
		OverlapSize:     DefaultOverlapSize,
		Encoding:        tokenizer.DefaultEncoding,
	}
}

// Manager splits oversized documents into token-bounded chunks at semantic
// unit boundaries where possible.
type Manager struct {
	counter *tokenizer.TokenCounter
	target  int
	overlap int
}

// New creates a chunk manager sharing the given token counter. A nil counter
// constructs one for cfg.Encoding. Negative sizes are a hard configuration
// error; an overlap that is not smaller than the target is auto-corrected to
// a tenth of the target with a logged warning.
func New(counter *tokenizer.TokenCounter, cfg Config) (*Manager, error) {
	if cfg.TargetChunkSize < 0 || cfg.OverlapSize < 0 {
		return nil, fmt.Errorf("%w: chunk sizes must be >= 0 (target=%d overlap=%d)",
			types.ErrInvalidConfiguration, cfg.TargetChunkSize, cfg.OverlapSize)
	}

	target := cfg.TargetChunkSize
	if target == 0 {
		target = DefaultTargetChunkSize
	}

	overlap := cfg.OverlapSize
	if overlap >= target {
		corrected := target / 10
		log.Printf("chunker: overlap %d >= target %d, correcting to %d", overlap, target, corrected)
		overlap = corrected
	}

	if counter == nil {
		counter = tokenizer.NewTokenCounter(cfg.Encoding)
	}

	return &Manager{
		counter: counter,
		target:  target,
		overlap: overlap,
	}, nil
}

// TargetChunkSize returns the effective per-chunk token budget.
func (m *Manager) TargetChunkSize() int { return m.target }

// OverlapSize returns the effective overlap, after any auto-correction.
func (m *Manager) OverlapSize() int { return m.overlap }

// Counter returns the shared token counter.
func (m *Manager) Counter() *tokenizer.TokenCounter { return m.counter }

// CreateChunks splits content into a ChunkingResult. Empty input yields an
// empty result without error. Input within the target budget yields a single
// complete chunk. Larger input is split by binary-searching character
// offsets against the token budget, snapping ends to nearby semantic unit
// boundaries, and prepending token overlap from the previous chunk.
func (m *Manager) CreateChunks(content string) (*types.ChunkingResult, error) {
	if content == "" {
		return m.emptyResult(), nil
	}

	units := scanUnits(content)
	total := m.counter.CountTokens(content)

	if total <= m.target {
		return m.singleChunkResult(content, total, units), nil
	}

	tolerance := m.tolerance()
	chunks := make([]*types.Chunk, 0, total/m.target+1)
	pos := 0

	for pos < len(content) {
		if len(chunks) >= maxChunks {
			return nil, fmt.Errorf("%w: produced %d chunks without consuming input (target=%d)",
				types.ErrInternalLimitExceeded, maxChunks, m.target)
		}

		end := m.findChunkEnd(content, pos, tolerance)
		end = m.snapToBoundary(content, units, pos, end, tolerance)

		// Never cut inside a multi-byte rune
		for end < len(content) && !utf8.RuneStart(content[end]) {
			end++
		}
		if end <= pos {
			end = pos + 1
		}

		chunk := m.buildChunk(content, units, chunks, pos, end)
		chunks = append(chunks, chunk)
		pos = end
	}

	return m.aggregate(chunks, units), nil
}

// tolerance scales the search tolerance down for small targets so that
// documents a handful of tokens over budget still split.
func (m *Manager) tolerance() int {
	tol := m.target / 10
	if tol > tokenTolerance {
		tol = tokenTolerance
	}
	if tol < 1 {
		tol = 1
	}
	return tol
}

// findChunkEnd binary-searches a character offset whose span from start
// counts within tolerance of the target, starting from a chars/token guess.
// The remainder of the document is taken whole when it fits.
func (m *Manager) findChunkEnd(content string, start, tolerance int) int {
	if m.counter.CountTokens(content[start:]) <= m.target+tolerance {
		return len(content)
	}

	lo, hi := start+1, len(content)
	end := start + m.target*charsPerTokenGuess
	if end > hi {
		end = hi
	}

	for lo < hi {
		count := m.counter.CountTokens(content[start:end])
		diff := count - m.target
		if diff >= -tolerance && diff <= tolerance {
			return end
		}
		if diff > 0 {
			hi = end - 1
		} else {
			lo = end + 1
		}
		end = (lo + hi + 1) / 2
	}

	if hi < start+1 {
		return start + 1
	}
	return hi
}

// snapToBoundary moves the ideal end to the nearest unit end-marker within
// the search window, keeping the token-based end when none is close enough.
// A marker past the ideal end is only eligible when the widened span still
// counts within the token budget; snapping earlier always shrinks the span,
// so those candidates need no check.
func (m *Manager) snapToBoundary(content string, units []unitSpan, start, ideal, tolerance int) int {
	best := -1
	bestDist := boundaryWindow + 1

	for _, u := range units {
		if u.end < 0 || u.end <= start || u.end > len(content) {
			continue
		}
		dist := u.end - ideal
		if dist < 0 {
			dist = -dist
		}
		if dist > boundaryWindow || dist >= bestDist {
			continue
		}
		if u.end > ideal && m.counter.CountTokens(content[start:u.end]) > m.target+tolerance {
			continue
		}
		best, bestDist = u.end, dist
	}

	if best > start {
		return best
	}
	return ideal
}

// buildChunk assembles one chunk for the span [start,end), prepending token
// overlap from the previous chunk and back-filling the previous chunk's next
// link.
func (m *Manager) buildChunk(content string, units []unitSpan, chunks []*types.Chunk, start, end int) *types.Chunk {
	raw := content[start:end]

	overlapText := ""
	overlapTokens := 0
	if len(chunks) > 0 && m.overlap > 0 {
		overlapText, overlapTokens = m.overlapTail(chunks[len(chunks)-1].Content)
	}

	chunk := &types.Chunk{
		Index:         len(chunks),
		Content:       overlapText + raw,
		StartPosition: start,
		EndPosition:   end,
		OverlapTokens: overlapTokens,
		Metadata:      map[string]any{},
	}
	chunk.TokenCount = m.counter.CountTokens(chunk.Content)
	chunk.FilesIncluded, chunk.IsCompleteUnit = unitsForSpan(units, start, end, len(content))

	if len(chunks) > 0 {
		prev := chunks[len(chunks)-1]
		prevIdx := prev.Index
		nextIdx := chunk.Index
		chunk.PreviousChunkIndex = &prevIdx
		prev.NextChunkIndex = &nextIdx
	}

	return chunk
}

// overlapTail returns the text of the previous chunk's trailing overlap
// tokens, obtained by decoding its trailing token slice.
func (m *Manager) overlapTail(prevContent string) (string, int) {
	ids := m.counter.Encode(prevContent)
	n := m.overlap
	if n > len(ids) {
		n = len(ids)
	}
	if n == 0 {
		return "", 0
	}
	return m.counter.Decode(ids[len(ids)-n:]), n
}

// aggregate computes result-level statistics from the finished chunk list.
func (m *Manager) aggregate(chunks []*types.Chunk, units []unitSpan) *types.ChunkingResult {
	strategy := StrategyTokenWindow
	if len(units) > 0 {
		strategy = StrategySemanticBoundary
	}

	result := &types.ChunkingResult{
		Chunks:           chunks,
		TotalChunks:      len(chunks),
		TotalFiles:       distinctUnitCount(units),
		TargetChunkSize:  m.target,
		OverlapSize:      m.overlap,
		ChunkingStrategy: strategy,
		Metadata:         m.resultMetadata(),
	}

	if len(chunks) == 0 {
		return result
	}

	// Unique total: the first chunk in full, later chunks minus the tokens
	// they re-include.
	total := chunks[0].TokenCount
	minSize, maxSize, sum := chunks[0].TokenCount, chunks[0].TokenCount, chunks[0].TokenCount
	for _, c := range chunks[1:] {
		total += c.TokenCount - c.OverlapTokens
		sum += c.TokenCount
		if c.TokenCount < minSize {
			minSize = c.TokenCount
		}
		if c.TokenCount > maxSize {
			maxSize = c.TokenCount
		}
	}

	result.TotalTokens = total
	result.MinChunkSize = minSize
	result.MaxChunkSize = maxSize
	result.AverageChunkSize = float64(sum) / float64(len(chunks))

	return result
}

func (m *Manager) emptyResult() *types.ChunkingResult {
	return &types.ChunkingResult{
		Chunks:           []*types.Chunk{},
		TargetChunkSize:  m.target,
		OverlapSize:      m.overlap,
		ChunkingStrategy: StrategySingleChunk,
		Metadata:         m.resultMetadata(),
	}
}

func (m *Manager) singleChunkResult(content string, total int, units []unitSpan) *types.ChunkingResult {
	chunk := &types.Chunk{
		Index:         0,
		Content:       content,
		TokenCount:    total,
		StartPosition: 0,
		EndPosition:   len(content),
		Metadata:      map[string]any{},
	}
	chunk.FilesIncluded, chunk.IsCompleteUnit = unitsForSpan(units, 0, len(content), len(content))

	return &types.ChunkingResult{
		Chunks:           []*types.Chunk{chunk},
		TotalTokens:      total,
		TotalChunks:      1,
		AverageChunkSize: float64(total),
		MaxChunkSize:     total,
		MinChunkSize:     total,
		TotalFiles:       distinctUnitCount(units),
		TargetChunkSize:  m.target,
		OverlapSize:      m.overlap,
		ChunkingStrategy: StrategySingleChunk,
		Metadata:         m.resultMetadata(),
	}
}

func (m *Manager) resultMetadata() map[string]any {
	return map[string]any{
		"encoding":           m.counter.Encoding(),
		"encoding_fallback":  m.counter.UsingFallback(),
		"boundary_window":    boundaryWindow,
		"max_chunks_allowed": maxChunks,
	}
}
