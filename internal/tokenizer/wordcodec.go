package tokenizer

import (
	"strings"
	"sync"
)

// WordCodec is a whitespace tokenizer: every word is one token. IDs are
// assigned on first sight and each token decodes to its word followed by a
// single space, so decoded slices from the middle of a stream stay
// word-delimited. Round-trips are exact for text made of single-space
// separated, space-terminated words.
//
// The codec needs no vocabulary data, which makes it the deterministic
// offline choice; it backs the "words" encoding name.
type WordCodec struct {
	mu    sync.Mutex
	words []string
	ids   map[string]int
}

// NewWordCodec creates an empty word codec. The vocabulary grows as text is
// encoded.
func NewWordCodec() *WordCodec {
	return &WordCodec{ids: make(map[string]int)}
}

// Encode splits text on whitespace and interns each word.
func (c *WordCodec) Encode(text string) []int {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int, len(fields))
	for i, w := range fields {
		id, ok := c.ids[w]
		if !ok {
			id = len(c.words)
			c.words = append(c.words, w)
			c.ids[w] = id
		}
		ids[i] = id
	}
	return ids
}

// Decode maps IDs back to their words. Unknown IDs decode to nothing.
func (c *WordCodec) Decode(ids []int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	for _, id := range ids {
		if id < 0 || id >= len(c.words) {
			continue
		}
		b.WriteString(c.words[id])
		b.WriteByte(' ')
	}
	return b.String()
}
