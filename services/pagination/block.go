package pagination

// RawBlock is a top-level body fragment before it has been measured
type RawBlock struct {
	ID     string `json:"id"`
	Tag    string `json:"tag"`
	Markup string `json:"markup"`
}

// ContentBlock is one indivisible, measured unit of letter body content.
// RenderedHeightPx includes the block's own vertical margins at the content width.
type ContentBlock struct {
	ID               string  `json:"id"`
	RenderedHeightPx float64 `json:"height"`
	Markup           string  `json:"markup"`
}

// Page is the group of blocks assigned to one physical page
type Page struct {
	Blocks            []ContentBlock `json:"blocks"`
	IsFirstPage       bool           `json:"is_first_page"`
	IsLastPage        bool           `json:"is_last_page"`
	AvailableHeightPx float64        `json:"available_height_px"`
}

// ContentHeight sums the heights of the page's blocks
func (p Page) ContentHeight() float64 {
	return sumHeights(p.Blocks)
}

// Overflows reports whether the page holds more content than its budget.
// Only a page with a single oversized block may overflow.
func (p Page) Overflows() bool {
	return p.ContentHeight() > p.AvailableHeightPx
}

// Markup concatenates the page's block fragments in order. The Word export
// converts one page at a time from it.
func (p Page) Markup() string {
	size := 0
	for _, b := range p.Blocks {
		size += len(b.Markup)
	}
	buf := make([]byte, 0, size)
	for _, b := range p.Blocks {
		buf = append(buf, b.Markup...)
	}
	return string(buf)
}
