// Package chunker splits oversized documents into token-bounded chunks for
// analysis by a capacity-limited model.
//
// The input is one text blob, typically a serialized repository dump whose
// files are delimited by <file path="...">...</file> markers. The chunker
// prefers to cut at those semantic unit boundaries and degrades to pure
// token-count splitting when no markers are present.
//
// # Basic Usage
//
//	counter := tokenizer.NewTokenCounter(tokenizer.DefaultEncoding)
//	mgr, err := chunker.New(counter, chunker.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := mgr.CreateChunks(document)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, chunk := range result.Chunks {
//	    fmt.Printf("chunk %d: %d tokens, %d files, complete=%v\n",
//	        chunk.Index, chunk.TokenCount, len(chunk.FilesIncluded), chunk.IsCompleteUnit)
//	}
//
// # Splitting Strategy
//
// Each chunk end is found in two steps. First a binary search over character
// offsets converges on a span whose token count is within a small tolerance
// of the target (seeded with a ~4 chars/token guess). Then the end snaps to
// the nearest unit end-marker within a fixed window around it, so whole
// files stay together whenever they can.
//
// Every chunk after the first re-includes the previous chunk's trailing
// overlap tokens, obtained by decoding its trailing token slice, to preserve
// context across the cut.
//
// # Guarantees
//
//   - Empty input produces an empty result, not an error.
//   - Input within the target budget produces exactly one complete chunk
//     with zero overlap.
//   - Chunk indices are contiguous from 0 and next/previous links form an
//     unbroken chain.
//   - Concatenating OwnContent across chunks reproduces the input exactly.
//   - The loop is capped at 10000 chunks; exceeding the cap returns
//     types.ErrInternalLimitExceeded instead of spinning on corrupt input.
//
// Unbalanced unit markers never fail the run: affected chunks simply report
// IsCompleteUnit false.
package chunker
