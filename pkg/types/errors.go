package types

import "errors"

// Hard-failure errors. Everything else in the pipeline degrades gracefully;
// only these two propagate out of the core as errors.
var (
	// ErrInternalLimitExceeded means the chunk-count ceiling was hit, which
	// signals malformed input or misconfiguration rather than a retryable
	// condition.
	ErrInternalLimitExceeded = errors.New("internal chunk limit exceeded")

	// ErrInvalidConfiguration means a caller supplied unusable settings
	// (e.g. negative sizes).
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Domain errors for type validation
var (
	ErrInvalidChunkIndex   = errors.New("invalid chunk index")
	ErrEmptyChunkContent   = errors.New("chunk content cannot be empty")
	ErrInvalidSpan         = errors.New("chunk end position must be after start position")
	ErrNegativeTokenCount  = errors.New("token counts must be >= 0")
	ErrOverlapOnFirstChunk = errors.New("first chunk cannot carry overlap tokens")
	ErrBrokenChunkChain    = errors.New("chunk chain is not contiguous")
)
