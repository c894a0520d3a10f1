package measure

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"letterhead/services/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMeasurer struct {
	calls atomic.Int32
}

func (c *countingMeasurer) Measure(ctx context.Context, markup string, widthPx float64, style pagination.StyleContext) (float64, error) {
	c.calls.Add(1)
	return float64(len(markup)), nil
}

type countingBatch struct {
	countingMeasurer
	batches atomic.Int32
	last    []string
}

func (c *countingBatch) MeasureAll(ctx context.Context, markups []string, widthPx float64, style pagination.StyleContext) ([]float64, error) {
	c.batches.Add(1)
	c.last = markups
	out := make([]float64, len(markups))
	for i, m := range markups {
		out[i] = float64(len(m))
	}
	return out, nil
}

func TestCachedMeasurer(t *testing.T) {
	ctx := context.Background()
	style := pagination.DefaultStyle()

	t.Run("repeated measure hits the cache", func(t *testing.T) {
		inner := &countingMeasurer{}
		c := NewCachedMeasurer(inner, 0)

		for i := 0; i < 3; i++ {
			h, err := c.Measure(ctx, "<p>abc</p>", 600, style)
			require.NoError(t, err)
			assert.Equal(t, 10.0, h)
		}
		assert.Equal(t, int32(1), inner.calls.Load())
	})

	t.Run("width and style are part of the key", func(t *testing.T) {
		inner := &countingMeasurer{}
		c := NewCachedMeasurer(inner, 0)

		c.Measure(ctx, "<p>x</p>", 600, style)
		c.Measure(ctx, "<p>x</p>", 500, style)
		serif := style
		serif.FontFamily = "serif"
		c.Measure(ctx, "<p>x</p>", 600, serif)

		assert.Equal(t, int32(3), inner.calls.Load())
		assert.Equal(t, 3, c.Len())
	})

	t.Run("batch sends only misses", func(t *testing.T) {
		inner := &countingBatch{}
		c := NewCachedMeasurer(inner, 0)

		_, err := c.MeasureAll(ctx, []string{"a", "bb"}, 600, style)
		require.NoError(t, err)
		got, err := c.MeasureAll(ctx, []string{"a", "ccc", "bb"}, 600, style)
		require.NoError(t, err)

		assert.Equal(t, []float64{1, 3, 2}, got)
		assert.Equal(t, []string{"ccc"}, inner.last)
		assert.Equal(t, int32(2), inner.batches.Load())

		_, err = c.MeasureAll(ctx, []string{"a", "ccc"}, 600, style)
		require.NoError(t, err)
		assert.Equal(t, int32(2), inner.batches.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		var calls int
		failing := pagination.MeasureFunc(func(ctx context.Context, markup string, widthPx float64, style pagination.StyleContext) (float64, error) {
			calls++
			return 0, errors.New("boom")
		})
		c := NewCachedMeasurer(failing, 0)

		_, err := c.Measure(ctx, "x", 600, style)
		assert.Error(t, err)
		_, err = c.Measure(ctx, "x", 600, style)
		assert.Error(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("limit clears the cache", func(t *testing.T) {
		c := NewCachedMeasurer(&countingMeasurer{}, 2)
		c.Measure(ctx, "a", 600, style)
		c.Measure(ctx, "b", 600, style)
		c.Measure(ctx, "c", 600, style)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("used by MeasureBlocks through the batch path", func(t *testing.T) {
		inner := &countingBatch{}
		c := NewCachedMeasurer(inner, 0)
		raw := []pagination.RawBlock{{ID: "blk-0001", Markup: "<p>a</p>"}, {ID: "blk-0002", Markup: "<p>bb</p>"}}

		blocks, err := pagination.MeasureBlocks(ctx, c, raw, pagination.A4Geometry(), style)
		require.NoError(t, err)
		require.Len(t, blocks, 2)
		assert.Equal(t, 9.0, blocks[1].RenderedHeightPx)
		assert.Equal(t, int32(1), inner.batches.Load())
	})
}
