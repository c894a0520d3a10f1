package measure

import (
	"context"
	"fmt"
	"sync"

	"letterhead/services/pagination"
)

type cacheKey struct {
	markup string
	width  float64
	style  pagination.StyleContext
}

// CachedMeasurer memoizes another Measurer. Heights are keyed by markup, width
// and style, so a changed font or width is a cache miss rather than a stale hit.
// Safe for concurrent use.
type CachedMeasurer struct {
	inner pagination.Measurer

	mu      sync.RWMutex
	heights map[cacheKey]float64
	limit   int
}

// NewCachedMeasurer wraps inner. limit bounds the number of stored heights;
// the cache is cleared when it is reached. limit <= 0 means unbounded.
func NewCachedMeasurer(inner pagination.Measurer, limit int) *CachedMeasurer {
	return &CachedMeasurer{
		inner:   inner,
		heights: make(map[cacheKey]float64),
		limit:   limit,
	}
}

// Measure implements pagination.Measurer
func (c *CachedMeasurer) Measure(ctx context.Context, markup string, widthPx float64, style pagination.StyleContext) (float64, error) {
	key := cacheKey{markup: markup, width: widthPx, style: style}
	if h, ok := c.lookup(key); ok {
		return h, nil
	}
	h, err := c.inner.Measure(ctx, markup, widthPx, style)
	if err != nil {
		return 0, err
	}
	c.store(key, h)
	return h, nil
}

// MeasureAll implements pagination.BatchMeasurer. Only the misses reach the
// wrapped measurer, batched when it supports batching.
func (c *CachedMeasurer) MeasureAll(ctx context.Context, markups []string, widthPx float64, style pagination.StyleContext) ([]float64, error) {
	heights := make([]float64, len(markups))
	var missIdx []int
	var missMarkup []string
	for i, m := range markups {
		if h, ok := c.lookup(cacheKey{markup: m, width: widthPx, style: style}); ok {
			heights[i] = h
			continue
		}
		missIdx = append(missIdx, i)
		missMarkup = append(missMarkup, m)
	}
	if len(missIdx) == 0 {
		return heights, nil
	}

	var measured []float64
	if bm, ok := c.inner.(pagination.BatchMeasurer); ok {
		var err error
		measured, err = bm.MeasureAll(ctx, missMarkup, widthPx, style)
		if err != nil {
			return nil, err
		}
	} else {
		measured = make([]float64, len(missMarkup))
		for i, m := range missMarkup {
			h, err := c.inner.Measure(ctx, m, widthPx, style)
			if err != nil {
				return nil, err
			}
			measured[i] = h
		}
	}
	if len(measured) != len(missIdx) {
		return nil, fmt.Errorf("measurer returned %d heights for %d blocks", len(measured), len(missIdx))
	}

	for j, i := range missIdx {
		heights[i] = measured[j]
		c.store(cacheKey{markup: missMarkup[j], width: widthPx, style: style}, measured[j])
	}
	return heights, nil
}

// Len returns the number of cached heights
func (c *CachedMeasurer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.heights)
}

func (c *CachedMeasurer) lookup(key cacheKey) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.heights[key]
	return h, ok
}

func (c *CachedMeasurer) store(key cacheKey, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit > 0 && len(c.heights) >= c.limit {
		c.heights = make(map[cacheKey]float64)
	}
	c.heights[key] = h
}
