package pagination

import "math"

const (
	// A4WidthPx is the width of an A4 sheet at 96 DPI
	A4WidthPx = 794
	// A4HeightPx is the height of an A4 sheet at 96 DPI
	A4HeightPx = 1123
	// DefaultPaddingPx is the uniform page inset used by the letter preview (~20mm)
	DefaultPaddingPx = 80
)

// PageGeometry describes the physical page every letter page is laid out on.
// It is immutable for the duration of one render.
type PageGeometry struct {
	PageWidthPx  float64 `json:"page_width_px"`
	PageHeightPx float64 `json:"page_height_px"`
	PaddingPx    float64 `json:"padding_px"`
}

// A4Geometry returns the geometry used by the editor preview and the PDF export
func A4Geometry() PageGeometry {
	return PageGeometry{
		PageWidthPx:  A4WidthPx,
		PageHeightPx: A4HeightPx,
		PaddingPx:    DefaultPaddingPx,
	}
}

// ContentWidthPx is the width left for body blocks once padding is removed.
// Block heights must be measured at this width.
func (g PageGeometry) ContentWidthPx() float64 {
	return g.PageWidthPx - 2*g.PaddingPx
}

// ContentHeightPx is the page height minus top and bottom padding
func (g PageGeometry) ContentHeightPx() float64 {
	return g.PageHeightPx - 2*g.PaddingPx
}

// Validate checks the geometry invariants
func (g PageGeometry) Validate() error {
	if !isFinite(g.PageWidthPx) || g.PageWidthPx <= 0 {
		return &InvalidGeometryError{Field: "page_width_px", Value: g.PageWidthPx, Reason: "must be positive"}
	}
	if !isFinite(g.PageHeightPx) || g.PageHeightPx <= 0 {
		return &InvalidGeometryError{Field: "page_height_px", Value: g.PageHeightPx, Reason: "must be positive"}
	}
	if !isFinite(g.PaddingPx) || g.PaddingPx < 0 {
		return &InvalidGeometryError{Field: "padding_px", Value: g.PaddingPx, Reason: "must not be negative"}
	}
	if g.ContentHeightPx() <= 0 {
		return &InvalidGeometryError{Field: "padding_px", Value: g.PaddingPx, Reason: "leaves no vertical space for content"}
	}
	if g.ContentWidthPx() <= 0 {
		return &InvalidGeometryError{Field: "padding_px", Value: g.PaddingPx, Reason: "leaves no horizontal space for content"}
	}
	return nil
}

// PageModifiers are the per-document reservations that shrink a page's content area.
// Header space applies to page 1 only, footer space to every page, signature space
// to the last page only. A zero height reserves nothing.
type PageModifiers struct {
	FirstPageHeaderHeightPx float64 `json:"first_page_header_height_px"`
	FooterEnabled           bool    `json:"footer_enabled"`
	FooterHeightPx          float64 `json:"footer_height_px"`
	SignatureHeightPx       float64 `json:"signature_height_px"`
}

// Validate checks that every reservation is a finite, non-negative number
func (m PageModifiers) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"first_page_header_height_px", m.FirstPageHeaderHeightPx},
		{"footer_height_px", m.FooterHeightPx},
		{"signature_height_px", m.SignatureHeightPx},
	}
	for _, f := range fields {
		if !isFinite(f.value) || f.value < 0 {
			return &InvalidGeometryError{Field: f.name, Value: f.value, Reason: "must be a non-negative number"}
		}
	}
	return nil
}

// footer returns the footer reservation. The height alone decides it: zero
// means no footer space, FooterEnabled only tells renderers to draw one.
func (m PageModifiers) footer() float64 {
	return m.FooterHeightPx
}

// ValidateLayout checks g and m on their own and then that every kind of page
// keeps a positive body budget: first, middle, last and a single-page letter.
func ValidateLayout(g PageGeometry, m PageModifiers) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	checks := []struct {
		field     string
		value     float64
		pageIndex int
		isLast    bool
		reason    string
	}{
		{"footer_height_px", m.FooterHeightPx, 1, false, "leaves no space for content"},
		{"first_page_header_height_px", m.FirstPageHeaderHeightPx, 0, false, "leaves no space for content on the first page"},
		{"signature_height_px", m.SignatureHeightPx, 1, true, "leaves no space for content on the last page"},
		{"signature_height_px", m.SignatureHeightPx, 0, true, "leaves no space for content on a one-page letter"},
	}
	for _, c := range checks {
		if AvailableHeight(g, m, c.pageIndex, c.isLast) <= 0 {
			return &InvalidGeometryError{Field: c.field, Value: c.value, Reason: c.reason}
		}
	}
	return nil
}

// AvailableHeight returns the body height budget of the page at pageIndex.
// isLast subtracts the signature reservation.
func AvailableHeight(g PageGeometry, m PageModifiers, pageIndex int, isLast bool) float64 {
	available := g.ContentHeightPx() - m.footer()
	if pageIndex == 0 {
		available -= m.FirstPageHeaderHeightPx
	}
	if isLast {
		available -= m.SignatureHeightPx
	}
	return available
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
