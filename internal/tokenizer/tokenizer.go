package tokenizer

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding names
const (
	// DefaultEncoding is a GPT-4-class byte-pair encoding with a ~100k
	// vocabulary.
	DefaultEncoding = "cl100k_base"

	// EncodingWords is a deterministic whitespace tokenizer that needs no
	// vocabulary data, useful for offline runs and hermetic tests.
	EncodingWords = "words"
)

// fallbackCharsPerToken is the chars-per-token heuristic used when no
// encoding engine is available.
const fallbackCharsPerToken = 4

// Codec converts between text and token IDs. Implementations must be safe
// for concurrent use and satisfy Decode(Encode(text)) == text for text that
// is well-formed under the codec.
type Codec interface {
	Encode(text string) []int
	Decode(ids []int) string
}

// TokenCounter provides deterministic token accounting over text. It is
// explicitly constructed and shared by reference; there is no process-wide
// singleton. A TokenCounter never fails: when its encoding engine cannot be
// loaded it degrades to a chars/4 heuristic.
type TokenCounter struct {
	encoding string
	codec    Codec // nil means the engine failed to load
}

// NewTokenCounter creates a counter for the named encoding. An empty name
// selects DefaultEncoding. Unknown or unloadable encodings degrade to the
// heuristic fallback with a logged warning rather than an error.
func NewTokenCounter(encoding string) *TokenCounter {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	if encoding == EncodingWords {
		return &TokenCounter{encoding: encoding, codec: NewWordCodec()}
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		log.Printf("tokenizer: encoding %q unavailable, falling back to chars/%d heuristic: %v",
			encoding, fallbackCharsPerToken, err)
		return &TokenCounter{encoding: encoding}
	}

	return &TokenCounter{encoding: encoding, codec: &bpeCodec{enc: enc}}
}

// NewTokenCounterWithCodec creates a counter over an explicit codec.
func NewTokenCounterWithCodec(name string, codec Codec) *TokenCounter {
	return &TokenCounter{encoding: name, codec: codec}
}

// Encoding returns the encoding identifier this counter was built for.
func (t *TokenCounter) Encoding() string {
	return t.encoding
}

// UsingFallback reports whether the counter degraded to the chars/4
// heuristic because its encoding engine could not be loaded.
func (t *TokenCounter) UsingFallback() bool {
	return t.codec == nil
}

// CountTokens returns the number of tokens in text. It is deterministic and
// never fails; on the fallback path the count is len(text)/4.
func (t *TokenCounter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if t.codec == nil {
		return len(text) / fallbackCharsPerToken
	}
	return len(t.codec.Encode(text))
}

// Encode converts text to token IDs. On the fallback path each rune becomes
// its own ID so that Decode remains an exact inverse.
func (t *TokenCounter) Encode(text string) []int {
	if t.codec == nil {
		ids := make([]int, 0, len(text))
		for _, r := range text {
			ids = append(ids, int(r))
		}
		return ids
	}
	return t.codec.Encode(text)
}

// Decode converts token IDs back to text.
func (t *TokenCounter) Decode(ids []int) string {
	if t.codec == nil {
		var b strings.Builder
		b.Grow(len(ids))
		for _, id := range ids {
			b.WriteRune(rune(id))
		}
		return b.String()
	}
	return t.codec.Decode(ids)
}

// TruncateToTokens returns the longest prefix of text whose token count is
// at most maxTokens. Texts already within budget are returned unchanged.
func (t *TokenCounter) TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if t.CountTokens(text) <= maxTokens {
		return text
	}

	if t.codec == nil {
		limit := maxTokens * fallbackCharsPerToken
		if limit >= len(text) {
			return text
		}
		// Never cut inside a multi-byte rune
		for limit > 0 && !utf8.RuneStart(text[limit]) {
			limit--
		}
		return text[:limit]
	}

	ids := t.codec.Encode(text)
	return t.codec.Decode(ids[:maxTokens])
}

// SplitByTokens splits text into pieces of at most chunkSize tokens, with
// overlap tokens shared between consecutive pieces. This splitter is
// boundary-unaware. Forward progress is guaranteed: when overlap >= chunkSize
// the overlap is clamped so every window's start strictly increases. The
// pieces cover all of text; the last piece may be shorter.
func (t *TokenCounter) SplitByTokens(text string, chunkSize, overlap int) []string {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	ids := t.Encode(text)
	if len(ids) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	pieces := make([]string, 0, (len(ids)+step-1)/step)
	for start := 0; start < len(ids); start += step {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		pieces = append(pieces, t.Decode(ids[start:end]))
		if end == len(ids) {
			break
		}
	}

	return pieces
}

// bpeCodec adapts a tiktoken encoding to the Codec interface.
type bpeCodec struct {
	enc *tiktoken.Tiktoken
}

func (c *bpeCodec) Encode(text string) []int {
	return c.enc.Encode(text, nil, nil)
}

func (c *bpeCodec) Decode(ids []int) string {
	return c.enc.Decode(ids)
}
