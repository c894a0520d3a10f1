package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"letterhead/models"
	"letterhead/services/blocks"
	"letterhead/services/pagination"
	"letterhead/templates/document"
)

// Flat height estimates for the brand decorations
const (
	HeaderHeightPx    = 200.0
	FooterHeightPx    = 100.0
	SignatureHeightPx = 150.0
)

// MetaBlockID identifies the recipient/subject block on the first page
const MetaBlockID = "blk-meta"

// ModifiersForProfile derives the page decorations a brand profile draws
func ModifiersForProfile(p *models.BrandProfile) pagination.PageModifiers {
	m := pagination.PageModifiers{FooterEnabled: p.ShowFooter}
	if p.ShowFooter {
		m.FooterHeightPx = FooterHeightPx
	}
	if p.HasHeader() {
		m.FirstPageHeaderHeightPx = HeaderHeightPx
	}
	if p.HasSignature() {
		m.SignatureHeightPx = SignatureHeightPx
	}
	return m
}

// StyleForProfile returns the body font context for a profile
func StyleForProfile(p *models.BrandProfile) pagination.StyleContext {
	style := pagination.DefaultStyle()
	if p.FontFamily != "" {
		style.FontFamily = p.FontFamily
	}
	return style
}

// LetterLayout is a paginated letter ready to draw
type LetterLayout struct {
	Profile   models.BrandProfile
	Geometry  pagination.PageGeometry
	Modifiers pagination.PageModifiers
	Style     pagination.StyleContext
	Pages     []pagination.Page
	Title     string

	// Degraded is set when measurement failed and the body was laid out as a
	// single overflowing block
	Degraded bool

	// Unresolved lists body placeholders that had no value
	Unresolved []string
}

// View converts the layout for the document templates
func (l *LetterLayout) View() document.LetterView {
	return document.LetterView{
		Profile:   l.Profile,
		Pages:     l.Pages,
		Geometry:  l.Geometry,
		Modifiers: l.Modifiers,
		Style:     l.Style,
		Title:     l.Title,
	}
}

// LetterRenderer lays letters out into pages
type LetterRenderer struct {
	Measurer pagination.Measurer
	Geometry pagination.PageGeometry
	Now      func() time.Time
}

// NewLetterRenderer returns a renderer measuring with m on the given page geometry
func NewLetterRenderer(m pagination.Measurer, g pagination.PageGeometry) *LetterRenderer {
	return &LetterRenderer{Measurer: m, Geometry: g, Now: time.Now}
}

// LayoutLetter fills placeholders, splits the body into blocks, measures and
// paginates them. Geometry errors are returned; measurement failures degrade
// to a single-block layout.
func (r *LetterRenderer) LayoutLetter(ctx context.Context, letter *models.Letter, profile *models.BrandProfile, sender *models.User) (*LetterLayout, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	data := BuildTemplateData(letter, profile, sender, now())
	body := RenderTemplate(letter.Body, data)
	meta := ""
	if letter.RecipientName != "" || letter.RecipientAddress != "" || letter.Subject != "" {
		meta = document.MetaMarkup(letter.RecipientName, letter.RecipientAddress, letter.Subject)
	}

	layout, err := r.LayoutBody(ctx, meta, body, profile)
	if err != nil {
		return nil, err
	}
	layout.Title = letter.Name
	layout.Unresolved = UnresolvedPlaceholders(letter.Body, data)
	return layout, nil
}

// LayoutBody paginates body markup, preceded by the optional meta block
func (r *LetterRenderer) LayoutBody(ctx context.Context, meta, body string, profile *models.BrandProfile) (*LetterLayout, error) {
	layout := &LetterLayout{
		Profile:   *profile,
		Geometry:  r.Geometry,
		Modifiers: ModifiersForProfile(profile),
		Style:     StyleForProfile(profile),
	}
	if err := pagination.ValidateLayout(layout.Geometry, layout.Modifiers); err != nil {
		return nil, err
	}

	raw, err := blocks.SplitIntoBlocks(body)
	if err != nil {
		return nil, err
	}
	if meta != "" {
		raw = append([]pagination.RawBlock{{ID: MetaBlockID, Tag: "div", Markup: meta}}, raw...)
	}

	measured, err := pagination.MeasureBlocks(ctx, r.Measurer, raw, layout.Geometry, layout.Style)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, pagination.ErrInvalidGeometry) {
			return nil, err
		}
		log.Printf("[WARNING] Block measurement failed, laying out as a single block: %v", err)
		measured = fallbackBlocks(raw, layout.Geometry, layout.Modifiers)
		layout.Degraded = true
	}

	pages, err := pagination.Paginate(measured, layout.Geometry, layout.Modifiers)
	if err != nil {
		return nil, err
	}
	layout.Pages = pages
	return layout, nil
}

// fallbackBlocks joins every block into one that fills the first page
func fallbackBlocks(raw []pagination.RawBlock, g pagination.PageGeometry, m pagination.PageModifiers) []pagination.ContentBlock {
	if len(raw) == 0 {
		return nil
	}
	var markup strings.Builder
	for _, rb := range raw {
		markup.WriteString(rb.Markup)
	}
	return []pagination.ContentBlock{{
		ID:               "blk-all",
		RenderedHeightPx: math.Max(0, pagination.AvailableHeight(g, m, 0, false)),
		Markup:           markup.String(),
	}}
}

// RenderLetterHTML renders a layout as a standalone HTML document
func RenderLetterHTML(ctx context.Context, layout *LetterLayout) (string, error) {
	return document.RenderDocumentHTML(ctx, layout.View())
}
