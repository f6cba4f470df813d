// Package analyzer is the boundary to the external analysis capability: it
// turns a block of text plus a request description into structured findings.
//
// The consolidation pipeline consumes this interface without caring which
// model produces the findings. The contract at this boundary is deliberately
// soft: any transport error, timeout, or unparseable reply is treated as "no
// findings" by callers, so a single bad call can never fail a run.
//
// # Providers
//
//   - OpenAIProvider talks to the OpenAI chat completions API (or any
//     compatible endpoint via AMPLIFIER_ANALYZER_BASE_URL) and owns its own
//     retry policy: 3 attempts with exponential backoff. Retries live here,
//     on the Analyzer's side of the boundary, by contract.
//   - LocalProvider is deterministic and needs no network: it derives
//     findings from annotation markers (TODO, FIXME, NOTE, HACK) in the
//     text. It backs tests and keyless environments.
//
// # Selection
//
//	a, err := analyzer.NewFromEnv()
//
// picks the provider from AMPLIFIER_ANALYZER_PROVIDER, falls back to OpenAI
// when OPENAI_API_KEY is set, and otherwise uses the local provider.
//
// # Result Parsing
//
// ParseResult decodes model output leniently: code fences and surrounding
// prose are tolerated, missing keys default to empty lists, and garbage
// yields an empty result carrying a reason instead of an error:
//
//	res := analyzer.ParseResult(modelOutput)
//	if res.Empty {
//	    log.Printf("degraded: %s", res.Reason)
//	}
//
// # Caching
//
// Providers share an LRU cache keyed by the SHA-256 of the request, so
// re-consolidating the same chunks does not repeat identical calls.
package analyzer
