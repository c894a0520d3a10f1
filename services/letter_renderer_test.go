package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"letterhead/models"
	"letterhead/services/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedMeasurer reports every block as h pixels tall
func fixedMeasurer(h float64) pagination.Measurer {
	return pagination.MeasureFunc(func(ctx context.Context, markup string, widthPx float64, style pagination.StyleContext) (float64, error) {
		return h, nil
	})
}

func paragraphs(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("<p>Paragraph</p>")
	}
	return b.String()
}

func TestModifiersForProfile(t *testing.T) {
	p := models.DefaultBrandProfile()
	m := ModifiersForProfile(&p)
	assert.Equal(t, HeaderHeightPx, m.FirstPageHeaderHeightPx)
	assert.True(t, m.FooterEnabled)
	assert.Equal(t, FooterHeightPx, m.FooterHeightPx)
	assert.Zero(t, m.SignatureHeightPx)

	p.Layout = models.LayoutMinimal
	p.ShowFooter = false
	p.ShowSignature = true
	m = ModifiersForProfile(&p)
	assert.Zero(t, m.FirstPageHeaderHeightPx)
	assert.False(t, m.FooterEnabled)
	assert.Zero(t, m.FooterHeightPx, "hidden footer reserves nothing")
	assert.Zero(t, m.SignatureHeightPx, "signature needs an image")

	p.SignatureURL = "https://cdn.example.com/sig.png"
	m = ModifiersForProfile(&p)
	assert.Equal(t, SignatureHeightPx, m.SignatureHeightPx)
}

func TestStyleForProfile(t *testing.T) {
	p := models.DefaultBrandProfile()
	p.FontFamily = models.FontSerif
	style := StyleForProfile(&p)
	assert.Equal(t, models.FontSerif, style.FontFamily)
	assert.Equal(t, pagination.DefaultStyle().FontSizePt, style.FontSizePt)
}

func TestLayoutLetter(t *testing.T) {
	r := NewLetterRenderer(fixedMeasurer(100), pagination.A4Geometry())
	r.Now = func() time.Time { return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) }

	profile := models.DefaultBrandProfile()
	letter := &models.Letter{
		Name:          "Offer",
		RecipientName: "Jane Smith",
		Subject:       "Offer",
		Body:          "<p>Dear {{recipient.name}},</p>" + paragraphs(9),
	}

	layout, err := r.LayoutLetter(context.Background(), letter, &profile, &models.User{Name: "Ada"})
	require.NoError(t, err)
	assert.False(t, layout.Degraded)
	assert.Equal(t, "Offer", layout.Title)

	// page 1 budget is 963 - 200 header - 100 footer = 663, so six 100px blocks fit
	require.Len(t, layout.Pages, 2)
	first := layout.Pages[0]
	assert.Len(t, first.Blocks, 6)
	assert.Equal(t, MetaBlockID, first.Blocks[0].ID)
	assert.Contains(t, first.Blocks[1].Markup, "Dear Jane Smith,")
	assert.Len(t, layout.Pages[1].Blocks, 5)
	assert.True(t, layout.Pages[1].IsLastPage)
	assert.Empty(t, layout.Unresolved)
}

func TestLayoutLetter_Unresolved(t *testing.T) {
	r := NewLetterRenderer(fixedMeasurer(10), pagination.A4Geometry())
	profile := models.DefaultBrandProfile()

	letter := &models.Letter{Body: "<p>Dear {{recipient.name}}, re {{letter.subject}}</p>"}
	layout, err := r.LayoutLetter(context.Background(), letter, &profile, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"recipient.name", "letter.subject"}, layout.Unresolved)
}

func TestLayoutLetter_NoMeta(t *testing.T) {
	r := NewLetterRenderer(fixedMeasurer(10), pagination.A4Geometry())
	profile := models.DefaultBrandProfile()

	layout, err := r.LayoutLetter(context.Background(), &models.Letter{Body: "<p>Only body</p>"}, &profile, nil)
	require.NoError(t, err)
	require.Len(t, layout.Pages, 1)
	require.Len(t, layout.Pages[0].Blocks, 1)
	assert.Equal(t, "blk-0001", layout.Pages[0].Blocks[0].ID)
}

func TestLayoutLetter_EmptyBody(t *testing.T) {
	r := NewLetterRenderer(fixedMeasurer(10), pagination.A4Geometry())
	profile := models.DefaultBrandProfile()

	layout, err := r.LayoutLetter(context.Background(), &models.Letter{}, &profile, nil)
	require.NoError(t, err)
	require.Len(t, layout.Pages, 1)
	assert.Empty(t, layout.Pages[0].Blocks)
}

func TestLayoutBody_MeasurementFailureDegrades(t *testing.T) {
	failing := pagination.MeasureFunc(func(ctx context.Context, markup string, widthPx float64, style pagination.StyleContext) (float64, error) {
		return 0, errors.New("browser crashed")
	})
	r := NewLetterRenderer(failing, pagination.A4Geometry())
	profile := models.DefaultBrandProfile()

	layout, err := r.LayoutBody(context.Background(), "", paragraphs(30), &profile)
	require.NoError(t, err)
	assert.True(t, layout.Degraded)
	require.Len(t, layout.Pages, 1)
	require.Len(t, layout.Pages[0].Blocks, 1)
	assert.Equal(t, 30, strings.Count(layout.Pages[0].Blocks[0].Markup, "<p>"))
}

func TestLayoutBody_InvalidGeometry(t *testing.T) {
	r := NewLetterRenderer(fixedMeasurer(10), pagination.PageGeometry{PageWidthPx: 794, PageHeightPx: 100, PaddingPx: 80})
	profile := models.DefaultBrandProfile()

	_, err := r.LayoutBody(context.Background(), "", "<p>x</p>", &profile)
	assert.ErrorIs(t, err, pagination.ErrInvalidGeometry)
}

func TestLayoutBody_HeaderFillsShortPage(t *testing.T) {
	r := NewLetterRenderer(fixedMeasurer(10), pagination.PageGeometry{PageWidthPx: 794, PageHeightPx: 460, PaddingPx: 80})
	profile := models.DefaultBrandProfile()

	_, err := r.LayoutBody(context.Background(), "", "<p>x</p>", &profile)
	require.ErrorIs(t, err, pagination.ErrInvalidGeometry)

	var geoErr *pagination.InvalidGeometryError
	require.True(t, errors.As(err, &geoErr))
	assert.Equal(t, "first_page_header_height_px", geoErr.Field)

	profile.Layout = models.LayoutMinimal
	_, err = r.LayoutBody(context.Background(), "", "<p>x</p>", &profile)
	assert.NoError(t, err, "minimal layout draws no header")
}

func TestLayoutBody_Cancelled(t *testing.T) {
	r := NewLetterRenderer(fixedMeasurer(10), pagination.A4Geometry())
	profile := models.DefaultBrandProfile()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.LayoutBody(ctx, "", paragraphs(3), &profile)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderLetterHTML(t *testing.T) {
	r := NewLetterRenderer(fixedMeasurer(400), pagination.A4Geometry())
	profile := models.DefaultBrandProfile()
	profile.CompanyName = "Acme & Sons"

	layout, err := r.LayoutLetter(context.Background(), &models.Letter{Name: "Quote", Body: paragraphs(4)}, &profile, nil)
	require.NoError(t, err)

	out, err := RenderLetterHTML(context.Background(), layout)
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>Quote</title>")
	assert.Contains(t, out, "Acme &amp; Sons")
	assert.Contains(t, out, "Page 1 of 3")
	assert.Contains(t, out, "Page 3 of 3")
	assert.Equal(t, 1, strings.Count(out, "<header"))
}
