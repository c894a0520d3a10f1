package pagination

import (
	"context"
	"fmt"
)

// StyleContext is the font context a block is measured under.
// Heights measured under one StyleContext are meaningless under another.
type StyleContext struct {
	FontFamily string  `json:"font_family"` // sans, serif, display, grotesk
	FontSizePt float64 `json:"font_size_pt"`
	LineHeight float64 `json:"line_height"` // multiple of the font size
}

// DefaultStyle matches the letter body styling of the editor preview: 11pt text on a 32px leading
func DefaultStyle() StyleContext {
	return StyleContext{
		FontFamily: "sans",
		FontSizePt: 11,
		LineHeight: 2.18,
	}
}

// Measurer returns the rendered height of a markup fragment laid out at widthPx.
//
// Implementations must be pure with respect to (markup, widthPx, style): the same
// inputs give the same height. Heights depend on width and font, so callers must
// re-measure whenever the body, the font family or the page width changes. Stale
// heights are not detected and silently produce wrong page breaks.
type Measurer interface {
	Measure(ctx context.Context, markup string, widthPx float64, style StyleContext) (float64, error)
}

// MeasureFunc adapts a plain function to the Measurer interface
type MeasureFunc func(ctx context.Context, markup string, widthPx float64, style StyleContext) (float64, error)

// Measure calls f
func (f MeasureFunc) Measure(ctx context.Context, markup string, widthPx float64, style StyleContext) (float64, error) {
	return f(ctx, markup, widthPx, style)
}

// BatchMeasurer is implemented by measurers that lay out a whole body at once
// (a browser page) rather than one fragment at a time.
type BatchMeasurer interface {
	MeasureAll(ctx context.Context, markups []string, widthPx float64, style StyleContext) ([]float64, error)
}

// MeasureBlocks measures raw blocks at the geometry's content width and returns
// them as ContentBlocks in the same order
func MeasureBlocks(ctx context.Context, m Measurer, raw []RawBlock, geometry PageGeometry, style StyleContext) ([]ContentBlock, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	width := geometry.ContentWidthPx()

	var heights []float64
	if bm, ok := m.(BatchMeasurer); ok {
		markups := make([]string, len(raw))
		for i, rb := range raw {
			markups[i] = rb.Markup
		}
		var err error
		heights, err = bm.MeasureAll(ctx, markups, width, style)
		if err != nil {
			return nil, fmt.Errorf("failed to measure blocks: %w", err)
		}
		if len(heights) != len(raw) {
			return nil, fmt.Errorf("measurer returned %d heights for %d blocks", len(heights), len(raw))
		}
	} else {
		heights = make([]float64, len(raw))
		for i, rb := range raw {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			h, err := m.Measure(ctx, rb.Markup, width, style)
			if err != nil {
				return nil, fmt.Errorf("failed to measure block %s: %w", rb.ID, err)
			}
			heights[i] = h
		}
	}

	blocks := make([]ContentBlock, len(raw))
	for i, rb := range raw {
		blocks[i] = ContentBlock{
			ID:               rb.ID,
			RenderedHeightPx: heights[i],
			Markup:           rb.Markup,
		}
	}
	if err := validateBlocks(blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}
