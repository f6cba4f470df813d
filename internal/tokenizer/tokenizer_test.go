package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fallbackCounter builds a counter on the heuristic path without touching
// the BPE engine.
func fallbackCounter() *TokenCounter {
	return &TokenCounter{encoding: "unavailable"}
}

func TestCountTokens_WordCodec(t *testing.T) {
	counter := NewTokenCounter(EncodingWords)

	assert.Equal(t, 0, counter.CountTokens(""))
	assert.Equal(t, 1, counter.CountTokens("hello"))
	assert.Equal(t, 5, counter.CountTokens("a b c d e"))
	assert.Equal(t, 5, counter.CountTokens("  a  b\tc\nd e  "))
	assert.False(t, counter.UsingFallback())
}

func TestCountTokens_FallbackHeuristic(t *testing.T) {
	counter := fallbackCounter()

	require.True(t, counter.UsingFallback())
	assert.Equal(t, 0, counter.CountTokens(""))
	// len/4 heuristic
	assert.Equal(t, 4, counter.CountTokens(strings.Repeat("x", 16)))
	assert.Equal(t, 0, counter.CountTokens("abc"))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Run("fallback rune codec", func(t *testing.T) {
		counter := fallbackCounter()
		text := "hello, wörld \n tabs\tand ünïcode"
		assert.Equal(t, text, counter.Decode(counter.Encode(text)))
	})

	t.Run("word codec on well-formed text", func(t *testing.T) {
		counter := NewTokenCounter(EncodingWords)
		// Well-formed for the word codec: single spaces, space-terminated.
		text := "alpha beta gamma "
		assert.Equal(t, text, counter.Decode(counter.Encode(text)))
	})
}

func TestTruncateToTokens(t *testing.T) {
	counter := NewTokenCounter(EncodingWords)

	t.Run("no-op when within budget", func(t *testing.T) {
		assert.Equal(t, "a b c", counter.TruncateToTokens("a b c", 5))
		assert.Equal(t, "a b c", counter.TruncateToTokens("a b c", 3))
	})

	t.Run("truncates to longest prefix within budget", func(t *testing.T) {
		got := counter.TruncateToTokens("a b c d e", 2)
		assert.Equal(t, 2, counter.CountTokens(got))
		assert.True(t, strings.HasPrefix(got, "a b"))
	})

	t.Run("zero budget yields empty", func(t *testing.T) {
		assert.Equal(t, "", counter.TruncateToTokens("a b c", 0))
	})

	t.Run("fallback path respects rune boundaries", func(t *testing.T) {
		fb := fallbackCounter()
		text := strings.Repeat("ü", 20) // 2 bytes per rune
		got := fb.TruncateToTokens(text, 2)
		assert.LessOrEqual(t, fb.CountTokens(got), 2)
		// Prefix must still be valid UTF-8 made of whole runes
		assert.Equal(t, strings.Repeat("ü", len(got)/2), got)
	})
}

func TestSplitByTokens(t *testing.T) {
	counter := NewTokenCounter(EncodingWords)

	t.Run("single piece when within budget", func(t *testing.T) {
		pieces := counter.SplitByTokens("a b c", 10, 2)
		require.Len(t, pieces, 1)
		assert.Equal(t, "a b c", pieces[0])
	})

	t.Run("splits with overlap", func(t *testing.T) {
		pieces := counter.SplitByTokens("a b c d e f g h i j", 4, 1)
		require.NotEmpty(t, pieces)
		for _, p := range pieces {
			assert.LessOrEqual(t, counter.CountTokens(p), 4)
		}
		// Every input token appears somewhere
		joined := strings.Join(pieces, " ")
		for _, w := range strings.Fields("a b c d e f g h i j") {
			assert.Contains(t, joined, w)
		}
	})

	t.Run("terminates when overlap >= chunk size", func(t *testing.T) {
		// Overlap larger than the window must be clamped, not loop forever.
		pieces := counter.SplitByTokens("a b c d e f g h", 2, 5)
		require.NotEmpty(t, pieces)
		// step clamps to 1: each window starts one token later
		assert.Greater(t, len(pieces), 3)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, counter.SplitByTokens("", 4, 1))
	})
}

func TestNewTokenCounter_EncodingSelection(t *testing.T) {
	words := NewTokenCounter(EncodingWords)
	assert.Equal(t, EncodingWords, words.Encoding())
	assert.False(t, words.UsingFallback())

	custom := NewTokenCounterWithCodec("custom", NewWordCodec())
	assert.Equal(t, "custom", custom.Encoding())
	assert.False(t, custom.UsingFallback())
}

func TestWordCodec_StableIDs(t *testing.T) {
	c := NewWordCodec()
	first := c.Encode("alpha beta alpha")
	require.Len(t, first, 3)
	assert.Equal(t, first[0], first[2])

	second := c.Encode("beta alpha")
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[1])
}
