// Package measure provides Measurer implementations for the paginator.
package measure

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"letterhead/services/blocks"
	"letterhead/services/pagination"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/net/html"
)

const (
	pxPerPt = 96.0 / 72.0

	// DefaultImageHeightPx is used for images without a height attribute
	DefaultImageHeightPx = 200.0
	listIndentPx         = 24.0
	quoteIndentPx        = 16.0
	cellPaddingPx        = 8.0
	ruleHeightPx         = 1.0
)

// tagMetrics describes how a block tag is typeset relative to the body font
type tagMetrics struct {
	scale        float64 // font size multiple
	bold         bool
	italic       bool
	lineHeight   float64 // overrides the style line height when > 0
	marginTopEm  float64
	marginBotEm  float64
	preformatted bool
}

var tagTable = map[string]tagMetrics{
	"p":          {scale: 1, marginTopEm: 1.25, marginBotEm: 1.25},
	"div":        {scale: 1},
	"h1":         {scale: 2.25, bold: true, lineHeight: 1.11, marginBotEm: 0.89},
	"h2":         {scale: 1.5, bold: true, lineHeight: 1.33, marginTopEm: 2, marginBotEm: 1},
	"h3":         {scale: 1.25, bold: true, lineHeight: 1.6, marginTopEm: 1.6, marginBotEm: 0.6},
	"h4":         {scale: 1, bold: true, lineHeight: 1.5, marginTopEm: 1.5, marginBotEm: 0.5},
	"h5":         {scale: 1, bold: true},
	"h6":         {scale: 1, bold: true},
	"blockquote": {scale: 1, italic: true, marginTopEm: 1.6, marginBotEm: 1.6},
	"ul":         {scale: 1, marginTopEm: 1.25, marginBotEm: 1.25},
	"ol":         {scale: 1, marginTopEm: 1.25, marginBotEm: 1.25},
	"pre":        {scale: 0.875, lineHeight: 1.7, marginTopEm: 1.7, marginBotEm: 1.7, preformatted: true},
	"table":      {scale: 0.875, marginTopEm: 2, marginBotEm: 2},
	"hr":         {scale: 1, marginTopEm: 3, marginBotEm: 3},
	"figure":     {scale: 1, marginTopEm: 2, marginBotEm: 2},
	"section":    {scale: 1},
}

// MetricsMeasurer estimates block heights from PDF core-font metrics. It needs
// no browser, so it is what the server uses when a client did not send
// measured heights. Results are deterministic but approximate the browser
// layout rather than reproduce it.
type MetricsMeasurer struct {
	once sync.Once
	mu   sync.Mutex
	pdf  *fpdf.Fpdf
	tr   func(string) string
}

// NewMetricsMeasurer returns a ready MetricsMeasurer
func NewMetricsMeasurer() *MetricsMeasurer {
	return &MetricsMeasurer{}
}

func (m *MetricsMeasurer) init() {
	m.pdf = fpdf.New("P", "pt", "A4", "")
	m.pdf.SetFont("Helvetica", "", 12)
	m.tr = m.pdf.UnicodeTranslatorFromDescriptor("")
}

// Measure implements pagination.Measurer
func (m *MetricsMeasurer) Measure(ctx context.Context, markup string, widthPx float64, style pagination.StyleContext) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if widthPx <= 0 {
		return 0, fmt.Errorf("invalid measurement width %v", widthPx)
	}
	if style.FontSizePt <= 0 {
		style = pagination.DefaultStyle()
	}

	n, err := blocks.ParseBlock(markup)
	if err != nil {
		return 0, err
	}

	m.once.Do(m.init)
	m.mu.Lock()
	defer m.mu.Unlock()

	return math.Ceil(m.blockHeight(n, widthPx, style)), nil
}

func (m *MetricsMeasurer) blockHeight(n *html.Node, widthPx float64, style pagination.StyleContext) float64 {
	tm, ok := tagTable[n.Data]
	if !ok {
		tm = tagMetrics{scale: 1}
	}
	sizePt := style.FontSizePt * tm.scale
	sizePx := sizePt * pxPerPt
	margins := (tm.marginTopEm + tm.marginBotEm) * sizePx

	switch n.Data {
	case "img":
		return imageHeight(n, widthPx)
	case "hr":
		return ruleHeightPx + margins
	case "ul", "ol":
		var h float64
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				h += m.inlineHeight(c, indent(widthPx, listIndentPx), style, tm) + 0.5*sizePx
			}
		}
		return h + margins
	case "blockquote":
		return m.inlineHeight(n, indent(widthPx, quoteIndentPx), style, tm) + margins
	case "table":
		return m.tableHeight(n, widthPx, style, tm) + margins
	case "div", "section", "figure":
		if hasBlockChild(n) {
			var h float64
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode {
					h += m.blockHeight(c, widthPx, style)
				}
			}
			return h + margins
		}
	}
	return m.inlineHeight(n, widthPx, style, tm) + margins
}

// indent narrows a column by px, never below one pixel
func indent(widthPx, px float64) float64 {
	return math.Max(1, widthPx-px)
}

// inlineHeight wraps the text of n at widthPx and returns lines × line height
func (m *MetricsMeasurer) inlineHeight(n *html.Node, widthPx float64, style pagination.StyleContext, tm tagMetrics) float64 {
	sizePt := style.FontSizePt * tm.scale
	lineHeight := style.LineHeight
	if tm.lineHeight > 0 {
		lineHeight = tm.lineHeight
	}
	linePx := sizePt * pxPerPt * lineHeight

	fontStyle := ""
	if tm.bold {
		fontStyle += "B"
	}
	if tm.italic {
		fontStyle += "I"
	}
	family := coreFont(style.FontFamily)
	if tm.preformatted {
		family = "Courier"
	}
	m.pdf.SetFont(family, fontStyle, sizePt)

	var lines int
	for _, para := range hardLines(n) {
		if tm.preformatted {
			lines++
			continue
		}
		lines += m.wrap(para, widthPx)
	}

	var images float64
	walkImages(n, func(img *html.Node) {
		images += imageHeight(img, widthPx)
	})
	return float64(lines)*linePx + images
}

// wrap returns the number of lines text occupies at widthPx with greedy word wrapping
func (m *MetricsMeasurer) wrap(text string, widthPx float64) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 1
	}
	space := m.width(" ")
	lines := 1
	var running float64
	for _, w := range words {
		ww := m.width(w)
		if ww > widthPx {
			// A word longer than the line breaks wherever it has to
			if running > 0 {
				lines++
			}
			extra := int(math.Ceil(ww/widthPx)) - 1
			lines += extra
			running = ww - float64(extra)*widthPx
			continue
		}
		switch {
		case running == 0:
			running = ww
		case running+space+ww <= widthPx:
			running += space + ww
		default:
			lines++
			running = ww
		}
	}
	return lines
}

func (m *MetricsMeasurer) width(s string) float64 {
	return m.pdf.GetStringWidth(m.tr(s)) * pxPerPt
}

func (m *MetricsMeasurer) tableHeight(n *html.Node, widthPx float64, style pagination.StyleContext, tm tagMetrics) float64 {
	var total float64
	walkRows(n, func(row *html.Node) {
		var cells []*html.Node
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			return
		}
		cellWidth := widthPx/float64(len(cells)) - 2*cellPaddingPx
		if cellWidth <= 0 {
			cellWidth = 1
		}
		var tallest float64
		for _, cell := range cells {
			ctm := tm
			ctm.bold = cell.Data == "th"
			if h := m.inlineHeight(cell, cellWidth, style, ctm); h > tallest {
				tallest = h
			}
		}
		total += tallest + 2*cellPaddingPx
	})
	return total
}

// hardLines splits the text of n on <br> and block-level children
func hardLines(n *html.Node) []string {
	var lines []string
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && n.Data == "br":
			lines = append(lines, sb.String())
			sb.Reset()
			return
		}
		block := n.Type == html.ElementNode && (n.Data == "p" || n.Data == "div" || n.Data == "li")
		if block && sb.Len() > 0 {
			lines = append(lines, sb.String())
			sb.Reset()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block && sb.Len() > 0 {
			lines = append(lines, sb.String())
			sb.Reset()
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	if sb.Len() > 0 || len(lines) == 0 {
		lines = append(lines, sb.String())
	}
	if n.Data == "pre" {
		var split []string
		for _, l := range lines {
			split = append(split, strings.Split(strings.TrimSuffix(l, "\n"), "\n")...)
		}
		return split
	}
	return lines
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if _, ok := tagTable[c.Data]; ok || c.Data == "img" {
			return true
		}
	}
	return false
}

func walkImages(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "img" {
			fn(c)
			continue
		}
		walkImages(c, fn)
	}
}

func walkRows(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data == "tr" {
			fn(c)
			continue
		}
		walkRows(c, fn)
	}
}

// imageHeight uses the height attribute, scaled down when the declared width
// exceeds the available width
func imageHeight(n *html.Node, widthPx float64) float64 {
	h := parsePx(blocks.Attr(n, "height"))
	if h <= 0 {
		return DefaultImageHeightPx
	}
	if w := parsePx(blocks.Attr(n, "width")); w > widthPx {
		h = h * widthPx / w
	}
	return h
}

func parsePx(v string) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// coreFont maps a brand font family to the closest PDF core font
func coreFont(family string) string {
	switch strings.ToLower(family) {
	case "serif", "display":
		return "Times"
	case "mono":
		return "Courier"
	default:
		return "Helvetica"
	}
}
