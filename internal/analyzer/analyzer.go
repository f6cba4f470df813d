package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/microsoft/amplifier-sub003/pkg/types"
)

// Common errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrProviderFailed      = errors.New("analyzer provider failed")
	ErrUnsupportedProvider = errors.New("unsupported analyzer provider")
	ErrEmptyContext        = errors.New("context text cannot be empty")
	ErrNoProviderEnabled   = errors.New("no analyzer provider configured")
)

// AnalyzeRequest carries one analysis call: the text to analyze and the
// caller's request description.
type AnalyzeRequest struct {
	Context string
	Request string
	Model   string // Optional: override default model
}

// Result is the structured outcome of one analyzer call. Every field is
// optional and defaults to empty; consumers must never assume a list is
// present. Empty/Reason record a call that produced nothing usable, which is
// a degraded success rather than an error.
type Result struct {
	Opportunities []types.Finding `json:"opportunities"`
	Insights      []types.Finding `json:"insights"`
	Patterns      []types.Finding `json:"patterns"`
	Gaps          []types.Finding `json:"gaps"`

	CrossChunkPatterns  []string `json:"cross_chunk_patterns"`
	SystemLevelInsights []string `json:"system_level_insights"`

	Empty  bool   `json:"-"`
	Reason string `json:"-"`
}

// EmptyResult returns a no-findings result carrying the degradation reason.
func EmptyResult(reason string) *Result {
	return &Result{Empty: true, Reason: reason}
}

// HasFindings reports whether any of the four finding lists is non-empty.
func (r *Result) HasFindings() bool {
	return r.FindingCount() > 0
}

// FindingCount totals entries across the four finding lists.
func (r *Result) FindingCount() int {
	return len(r.Opportunities) + len(r.Insights) + len(r.Patterns) + len(r.Gaps)
}

// Findings returns one category's list.
func (r *Result) Findings(cat types.FindingCategory) []types.Finding {
	switch cat {
	case types.CategoryOpportunity:
		return r.Opportunities
	case types.CategoryInsight:
		return r.Insights
	case types.CategoryPattern:
		return r.Patterns
	case types.CategoryGap:
		return r.Gaps
	default:
		return nil
	}
}

// Analyzer turns a text block plus a request description into structured
// findings. Implementations own their retry/backoff policy; callers treat
// any error or empty result as "no findings" rather than a hard failure.
type Analyzer interface {
	// Analyze performs a single analysis call.
	Analyze(ctx context.Context, req AnalyzeRequest) (*Result, error)

	// Provider returns the provider name.
	Provider() string

	// Model returns the model name.
	Model() string

	// Close releases any resources held by the analyzer.
	Close() error
}

// Cache provides in-memory LRU caching of analysis results by content hash.
type Cache struct {
	cache *lru.Cache[string, *Result]
}

// DefaultCacheSize bounds the result cache when no size is configured.
const DefaultCacheSize = 1000

// NewCache creates a new result cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, *Result](maxLen)
	if err != nil {
		// Should never happen with positive size, but fall back to default
		cache, _ = lru.New[string, *Result](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached result. The finding slices are copied so
// caller mutations (reference attachment during merge) cannot pollute the
// cache.
func (c *Cache) Get(hash string) (*Result, bool) {
	res, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}

	cp := &Result{
		Opportunities:       append([]types.Finding(nil), res.Opportunities...),
		Insights:            append([]types.Finding(nil), res.Insights...),
		Patterns:            append([]types.Finding(nil), res.Patterns...),
		Gaps:                append([]types.Finding(nil), res.Gaps...),
		CrossChunkPatterns:  append([]string(nil), res.CrossChunkPatterns...),
		SystemLevelInsights: append([]string(nil), res.SystemLevelInsights...),
		Empty:               res.Empty,
		Reason:              res.Reason,
	}
	return cp, true
}

// Set stores a result with automatic LRU eviction.
func (c *Cache) Set(hash string, res *Result) {
	c.cache.Add(hash, res)
}

// Size returns the current cache size.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes the SHA-256 hash of an analysis request for caching.
func ComputeHash(req AnalyzeRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Context))
	h.Write([]byte{0})
	h.Write([]byte(req.Request))
	h.Write([]byte{0})
	h.Write([]byte(req.Model))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateRequest validates an analysis request.
func ValidateRequest(req AnalyzeRequest) error {
	if req.Context == "" {
		return ErrEmptyContext
	}
	return nil
}
