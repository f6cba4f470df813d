// Package tokenizer provides deterministic token accounting over text.
//
// TokenCounter is the leaf of the chunking pipeline: everything that needs
// to measure, slice, or budget text in tokens shares one explicitly
// constructed counter by reference. There is no hidden global tokenizer
// state.
//
// # Basic Usage
//
//	counter := tokenizer.NewTokenCounter(tokenizer.DefaultEncoding)
//	n := counter.CountTokens(document)
//	head := counter.TruncateToTokens(document, 4000)
//
// # Encodings
//
// Three codec paths exist behind one API:
//
//   - cl100k_base (default): a GPT-4-class byte-pair encoding with a ~100k
//     vocabulary, via tiktoken. Encode/Decode round-trip exactly for
//     well-formed text.
//   - words: a deterministic whitespace tokenizer (one word per token) that
//     needs no vocabulary data. Used for offline runs and hermetic tests.
//   - heuristic fallback: when the requested encoding engine cannot be
//     loaded, CountTokens degrades to len(text)/4 and Encode/Decode operate
//     on runes. The counter logs the degradation once at construction and
//     reports it via UsingFallback; it never returns an error.
//
// All token counts within one ChunkingResult come from the same counter, so
// they are mutually comparable.
//
// # Splitting
//
// SplitByTokens is the generic boundary-unaware splitter:
//
//	pieces := counter.SplitByTokens(text, 1000, 100)
//
// It guarantees forward progress even when the requested overlap is as large
// as the chunk size (the overlap is clamped to chunkSize-1), covers all of
// the input, and may produce a shorter final piece. Boundary-aware splitting
// lives in the chunker package, which builds on this counter.
//
// # Cost Estimation
//
// EstimateCost is a pure function over per-1000-token rates:
//
//	profile, _ := tokenizer.ProfileFor("gpt-4o-mini")
//	est := tokenizer.EstimateCost(counter.CountTokens(document), profile)
//	fmt.Printf("projected: $%.4f\n", est.TotalCost)
package tokenizer
