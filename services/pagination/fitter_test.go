package pagination

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBlocks(heights ...float64) []ContentBlock {
	blocks := make([]ContentBlock, len(heights))
	for i, h := range heights {
		blocks[i] = ContentBlock{
			ID:               fmt.Sprintf("b%d", i+1),
			RenderedHeightPx: h,
			Markup:           fmt.Sprintf("<p>%d</p>", i+1),
		}
	}
	return blocks
}

func pageIDs(pages []Page) [][]string {
	out := make([][]string, len(pages))
	for i, p := range pages {
		out[i] = []string{}
		for _, b := range p.Blocks {
			out[i] = append(out[i], b.ID)
		}
	}
	return out
}

// assertInvariants checks the properties every partition must satisfy
func assertInvariants(t *testing.T, blocks []ContentBlock, pages []Page) {
	t.Helper()
	require.NotEmpty(t, pages)

	var flat []ContentBlock
	firsts, lasts := 0, 0
	for i, p := range pages {
		flat = append(flat, p.Blocks...)
		if p.IsFirstPage {
			firsts++
			assert.Equal(t, 0, i, "first page flag on page %d", i)
		}
		if p.IsLastPage {
			lasts++
			assert.Equal(t, len(pages)-1, i, "last page flag on page %d", i)
		}
		if len(p.Blocks) > 1 {
			assert.LessOrEqual(t, p.ContentHeight(), p.AvailableHeightPx, "page %d overflows", i)
		}
	}
	assert.Equal(t, 1, firsts)
	assert.Equal(t, 1, lasts)

	if len(blocks) == 0 {
		assert.Empty(t, flat)
	} else {
		assert.Equal(t, blocks, flat)
	}
}

func TestPaginateScenarios(t *testing.T) {
	geometry := PageGeometry{PageWidthPx: 794, PageHeightPx: 1123, PaddingPx: 48}

	t.Run("Header pushes third block to page two", func(t *testing.T) {
		blocks := makeBlocks(400, 400, 400)
		pages, err := Paginate(blocks, geometry, PageModifiers{FirstPageHeaderHeightPx: 200})
		require.NoError(t, err)

		assert.Equal(t, [][]string{{"b1", "b2"}, {"b3"}}, pageIDs(pages))
		assert.Equal(t, 827.0, pages[0].AvailableHeightPx)
		assert.True(t, pages[0].IsFirstPage)
		assert.False(t, pages[0].IsLastPage)
		assert.True(t, pages[1].IsLastPage)
		assertInvariants(t, blocks, pages)
	})

	t.Run("Footer shrinks every page", func(t *testing.T) {
		blocks := makeBlocks(400, 400, 400)
		pages, err := Paginate(blocks, geometry, PageModifiers{
			FirstPageHeaderHeightPx: 200,
			FooterEnabled:           true,
			FooterHeightPx:          100,
		})
		require.NoError(t, err)

		assert.Equal(t, [][]string{{"b1"}, {"b2", "b3"}}, pageIDs(pages))
		assert.Equal(t, 727.0, pages[0].AvailableHeightPx)
		assert.Equal(t, 927.0, pages[1].AvailableHeightPx)
		assertInvariants(t, blocks, pages)
	})

	t.Run("Footer height alone reserves space", func(t *testing.T) {
		blocks := makeBlocks(400, 400, 400)
		pages, err := Paginate(blocks, geometry, PageModifiers{
			FirstPageHeaderHeightPx: 200,
			FooterHeightPx:          100,
		})
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"b1"}, {"b2", "b3"}}, pageIDs(pages))
		assert.Equal(t, 727.0, pages[0].AvailableHeightPx)
	})

	t.Run("Zero footer height reserves nothing", func(t *testing.T) {
		blocks := makeBlocks(400, 400, 400)
		pages, err := Paginate(blocks, geometry, PageModifiers{
			FirstPageHeaderHeightPx: 200,
			FooterEnabled:           true,
		})
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"b1", "b2"}, {"b3"}}, pageIDs(pages))
	})

	t.Run("Zero blocks yield one empty page", func(t *testing.T) {
		pages, err := Paginate(nil, geometry, PageModifiers{})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Empty(t, pages[0].Blocks)
		assert.NotNil(t, pages[0].Blocks)
		assert.True(t, pages[0].IsFirstPage)
		assert.True(t, pages[0].IsLastPage)
	})

	t.Run("Oversized single block overflows its own page", func(t *testing.T) {
		blocks := makeBlocks(2000)
		pages, err := Paginate(blocks, geometry, PageModifiers{FirstPageHeaderHeightPx: 200})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.True(t, pages[0].IsFirstPage)
		assert.True(t, pages[0].IsLastPage)
		assert.True(t, pages[0].Overflows())
		assertInvariants(t, blocks, pages)
	})

	t.Run("Oversized block in the middle stands alone", func(t *testing.T) {
		blocks := makeBlocks(100, 2000, 100)
		pages, err := Paginate(blocks, geometry, PageModifiers{})
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"b1"}, {"b2"}, {"b3"}}, pageIDs(pages))
		assertInvariants(t, blocks, pages)
	})

	t.Run("Signature still fits on last page", func(t *testing.T) {
		g := PageGeometry{PageWidthPx: 794, PageHeightPx: 1123, PaddingPx: 100}
		m := PageModifiers{FirstPageHeaderHeightPx: 96, SignatureHeightPx: 150}
		blocks := makeBlocks(700, 700)

		pages, err := Paginate(blocks, g, m)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"b1"}, {"b2"}}, pageIDs(pages))
		assert.Equal(t, 827.0, pages[0].AvailableHeightPx)
		assert.Equal(t, 773.0, pages[1].AvailableHeightPx)
		assert.True(t, pages[1].IsLastPage)
		assert.False(t, pages[1].Overflows())
	})

	t.Run("Invalid geometry is rejected before layout", func(t *testing.T) {
		g := PageGeometry{PageWidthPx: 794, PageHeightPx: 50, PaddingPx: 30}
		pages, err := Paginate(makeBlocks(10), g, PageModifiers{})
		assert.Nil(t, pages)

		var geoErr *InvalidGeometryError
		require.True(t, errors.As(err, &geoErr))
		assert.Equal(t, "padding_px", geoErr.Field)
		assert.True(t, errors.Is(err, ErrInvalidGeometry))
	})
}

func TestPaginateBoundaryIsInclusive(t *testing.T) {
	geometry := PageGeometry{PageWidthPx: 800, PageHeightPx: 1000, PaddingPx: 0}
	blocks := makeBlocks(600, 400, 1)

	pages, err := Paginate(blocks, geometry, PageModifiers{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"b1", "b2"}, {"b3"}}, pageIDs(pages))
	assert.Equal(t, 1000.0, pages[0].ContentHeight())
}

func TestPaginateSignatureReconciliation(t *testing.T) {
	geometry := PageGeometry{PageWidthPx: 794, PageHeightPx: 1123, PaddingPx: 100}

	t.Run("Trailing block moves to a new last page", func(t *testing.T) {
		blocks := makeBlocks(400, 400)
		pages, err := Paginate(blocks, geometry, PageModifiers{SignatureHeightPx: 150})
		require.NoError(t, err)

		assert.Equal(t, [][]string{{"b1"}, {"b2"}}, pageIDs(pages))
		assert.Equal(t, 923.0, pages[0].AvailableHeightPx)
		assert.Equal(t, 773.0, pages[1].AvailableHeightPx)
		assertInvariants(t, blocks, pages)
	})

	t.Run("Earlier pages keep their blocks", func(t *testing.T) {
		blocks := makeBlocks(500, 400, 400, 400)
		pages, err := Paginate(blocks, geometry, PageModifiers{SignatureHeightPx: 150})
		require.NoError(t, err)

		assert.Equal(t, [][]string{{"b1", "b2"}, {"b3"}, {"b4"}}, pageIDs(pages))
		assertInvariants(t, blocks, pages)
	})

	t.Run("Last page keeps as much as possible", func(t *testing.T) {
		blocks := makeBlocks(100, 700, 100)
		pages, err := Paginate(blocks, geometry, PageModifiers{SignatureHeightPx: 150})
		require.NoError(t, err)

		assert.Equal(t, [][]string{{"b1", "b2"}, {"b3"}}, pageIDs(pages))
		assertInvariants(t, blocks, pages)
	})

	t.Run("Single oversized last block is left to overflow", func(t *testing.T) {
		blocks := makeBlocks(300, 900)
		pages, err := Paginate(blocks, geometry, PageModifiers{SignatureHeightPx: 150})
		require.NoError(t, err)

		assert.Equal(t, [][]string{{"b1"}, {"b2"}}, pageIDs(pages))
		assert.True(t, pages[1].Overflows())
		assertInvariants(t, blocks, pages)
	})

	t.Run("No signature means no reservation", func(t *testing.T) {
		blocks := makeBlocks(400, 400)
		pages, err := Paginate(blocks, geometry, PageModifiers{})
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"b1", "b2"}}, pageIDs(pages))
	})
}

func TestPaginateInvalidBlocks(t *testing.T) {
	geometry := A4Geometry()

	cases := []struct {
		name   string
		height float64
	}{
		{"negative", -1},
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blocks := makeBlocks(100, 100)
			blocks[1].RenderedHeightPx = tc.height

			pages, err := Paginate(blocks, geometry, PageModifiers{})
			assert.Nil(t, pages)

			var inputErr *InvalidInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, "b2", inputErr.BlockID)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.Contains(t, err.Error(), "b2")
		})
	}

	t.Run("Unnamed block reported by position", func(t *testing.T) {
		pages, err := Paginate([]ContentBlock{{RenderedHeightPx: -5}}, geometry, PageModifiers{})
		assert.Nil(t, pages)
		assert.Contains(t, err.Error(), "#0")
	})

	t.Run("Zero height is valid", func(t *testing.T) {
		pages, err := Paginate(makeBlocks(0, 0), geometry, PageModifiers{})
		require.NoError(t, err)
		assert.Len(t, pages, 1)
	})
}

func TestPaginateInvalidModifiers(t *testing.T) {
	_, err := Paginate(makeBlocks(10), A4Geometry(), PageModifiers{SignatureHeightPx: -1})

	var geoErr *InvalidGeometryError
	require.True(t, errors.As(err, &geoErr))
	assert.Equal(t, "signature_height_px", geoErr.Field)
}

func TestPaginateRejectsExhaustedPages(t *testing.T) {
	geometry := PageGeometry{PageWidthPx: 794, PageHeightPx: 1123, PaddingPx: 48}

	cases := []struct {
		name      string
		blocks    []ContentBlock
		modifiers PageModifiers
		field     string
	}{
		{
			name:      "header taller than the first page",
			blocks:    makeBlocks(100, 100),
			modifiers: PageModifiers{FirstPageHeaderHeightPx: 1100},
			field:     "first_page_header_height_px",
		},
		{
			name:      "header exactly fills the first page",
			blocks:    makeBlocks(100),
			modifiers: PageModifiers{FirstPageHeaderHeightPx: 1027},
			field:     "first_page_header_height_px",
		},
		{
			name:      "footer taller than every page",
			modifiers: PageModifiers{FooterEnabled: true, FooterHeightPx: 2000},
			field:     "footer_height_px",
		},
		{
			name:      "signature fills the last page",
			blocks:    makeBlocks(100),
			modifiers: PageModifiers{SignatureHeightPx: 1027},
			field:     "signature_height_px",
		},
		{
			name:      "header and signature fill a one-page letter",
			blocks:    makeBlocks(100),
			modifiers: PageModifiers{FirstPageHeaderHeightPx: 600, SignatureHeightPx: 500},
			field:     "signature_height_px",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pages, err := Paginate(tc.blocks, geometry, tc.modifiers)
			require.Error(t, err)
			assert.Nil(t, pages)

			var geoErr *InvalidGeometryError
			require.True(t, errors.As(err, &geoErr))
			assert.Equal(t, tc.field, geoErr.Field)
			assert.True(t, errors.Is(err, ErrInvalidGeometry))
		})
	}

	t.Run("Reservations just short of the page are accepted", func(t *testing.T) {
		pages, err := Paginate(makeBlocks(1), geometry, PageModifiers{
			FirstPageHeaderHeightPx: 500,
			FooterHeightPx:          100,
			SignatureHeightPx:       426,
		})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, 1.0, pages[0].AvailableHeightPx)
	})
}

func TestPaginateIsDeterministic(t *testing.T) {
	blocks := makeBlocks(120, 340, 80, 500, 260, 90, 700, 33, 410)
	modifiers := PageModifiers{FirstPageHeaderHeightPx: 200, FooterEnabled: true, FooterHeightPx: 100, SignatureHeightPx: 150}

	first, err := Paginate(blocks, A4Geometry(), modifiers)
	require.NoError(t, err)
	second, err := Paginate(blocks, A4Geometry(), modifiers)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assertInvariants(t, blocks, first)
}

func TestPageMarkup(t *testing.T) {
	pages, err := Paginate(makeBlocks(400, 400, 400), A4Geometry(), PageModifiers{})
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "<p>1</p><p>2</p>", pages[0].Markup())
	assert.Equal(t, "<p>3</p>", pages[1].Markup())
	assert.Empty(t, Page{}.Markup())
}

func TestPaginateDoesNotShareInput(t *testing.T) {
	blocks := makeBlocks(100, 200)
	pages, err := Paginate(blocks, A4Geometry(), PageModifiers{})
	require.NoError(t, err)

	pages[0].Blocks[0].Markup = "changed"
	assert.Equal(t, "<p>1</p>", blocks[0].Markup)
}

func TestPaginatePageCountIsMonotonic(t *testing.T) {
	base := []float64{120, 340, 80, 500, 260, 90, 700, 33, 410, 150, 150, 600}
	modifiers := PageModifiers{FirstPageHeaderHeightPx: 200, FooterEnabled: true, FooterHeightPx: 100, SignatureHeightPx: 150}

	basePages, err := Paginate(makeBlocks(base...), A4Geometry(), modifiers)
	require.NoError(t, err)

	for i := range base {
		for _, grow := range []float64{1, 50, 200, 800} {
			heights := append([]float64(nil), base...)
			heights[i] += grow

			pages, err := Paginate(makeBlocks(heights...), A4Geometry(), modifiers)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(pages), len(basePages), "growing block %d by %v", i, grow)
			assertInvariants(t, makeBlocks(heights...), pages)
		}
	}
}

func TestPaginateManySmallBlocks(t *testing.T) {
	heights := make([]float64, 200)
	for i := range heights {
		heights[i] = float64(20 + (i*37)%90)
	}
	blocks := makeBlocks(heights...)
	modifiers := PageModifiers{FirstPageHeaderHeightPx: 150, FooterEnabled: true, FooterHeightPx: 100, SignatureHeightPx: 120}

	pages, err := Paginate(blocks, A4Geometry(), modifiers)
	require.NoError(t, err)
	assert.Greater(t, len(pages), 1)
	assertInvariants(t, blocks, pages)
}
