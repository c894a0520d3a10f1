package measure

import (
	"context"
	"fmt"

	"letterhead/services/chrome"
	"letterhead/services/pagination"
	"letterhead/templates/document"

	"github.com/chromedp/chromedp"
)

// measureScript returns the laid-out height of every slot, margins included
const measureScript = `Array.from(document.querySelectorAll('#measure > .measure-slot')).map(function (el) { return el.getBoundingClientRect().height; })`

// BrowserMeasurer lays the blocks out in headless Chrome with the same
// stylesheet the letter is printed with and reads back their heights.
// It is exact for the printed PDF but needs a browser binary.
type BrowserMeasurer struct {
	execPath string
}

// NewBrowserMeasurer returns a measurer that launches Chrome from execPath
// ("" lets chromedp locate it)
func NewBrowserMeasurer(execPath string) *BrowserMeasurer {
	return &BrowserMeasurer{execPath: execPath}
}

// Measure implements pagination.Measurer
func (b *BrowserMeasurer) Measure(ctx context.Context, markup string, widthPx float64, style pagination.StyleContext) (float64, error) {
	heights, err := b.MeasureAll(ctx, []string{markup}, widthPx, style)
	if err != nil {
		return 0, err
	}
	return heights[0], nil
}

// MeasureAll implements pagination.BatchMeasurer. All blocks share one
// browser launch.
func (b *BrowserMeasurer) MeasureAll(ctx context.Context, markups []string, widthPx float64, style pagination.StyleContext) ([]float64, error) {
	if len(markups) == 0 {
		return []float64{}, nil
	}

	page, err := document.RenderMeasureHTML(ctx, markups, widthPx, style)
	if err != nil {
		return nil, fmt.Errorf("failed to build measurement page: %w", err)
	}

	browserCtx, cancel := chrome.NewContext(ctx, b.execPath)
	defer cancel()

	var heights []float64
	err = chromedp.Run(browserCtx,
		chrome.SetContent(page),
		chromedp.Evaluate(measureScript, &heights),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to measure in browser: %w", err)
	}
	if len(heights) != len(markups) {
		return nil, fmt.Errorf("browser returned %d heights for %d blocks", len(heights), len(markups))
	}
	return heights, nil
}
