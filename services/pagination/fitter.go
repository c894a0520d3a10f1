// Package pagination splits a letter body into A4 page frames.
//
// The body arrives as an ordered list of measured ContentBlocks. Paginate assigns
// every block to exactly one page without reordering or splitting it, reserving
// header space on the first page, footer space on every page and signature space
// on the last page. It performs no I/O and keeps no state between calls, so it
// can be re-run on every content change.
package pagination

import "fmt"

// Paginate partitions blocks into pages.
//
// Blocks are placed greedily: a block stays on the current page while the running
// height plus the block is within the page budget (an exact fit stays). A block
// taller than a fresh page is placed alone on its own page and overflows it.
// Once the partition is known the last page must also leave room for the
// signature; if it does not and it holds more than one block, its trailing block
// moves to a new, final page.
//
// Zero blocks produce a single empty page. Invalid geometry, reservations that
// leave a page without body space, and invalid block heights are reported before
// any layout happens.
func Paginate(blocks []ContentBlock, geometry PageGeometry, modifiers PageModifiers) ([]Page, error) {
	if err := ValidateLayout(geometry, modifiers); err != nil {
		return nil, err
	}
	if err := validateBlocks(blocks); err != nil {
		return nil, err
	}

	if len(blocks) == 0 {
		return []Page{{
			Blocks:            []ContentBlock{},
			IsFirstPage:       true,
			IsLastPage:        true,
			AvailableHeightPx: AvailableHeight(geometry, modifiers, 0, true),
		}}, nil
	}

	starts := flow(blocks, func(page int) float64 {
		return AvailableHeight(geometry, modifiers, page, false)
	})

	// Signature reconciliation
	last := len(starts) - 1
	tail := blocks[starts[last]:]
	if len(tail) > 1 && sumHeights(tail) > AvailableHeight(geometry, modifiers, last, true) {
		starts = append(starts, len(blocks)-1)
	}

	return assemble(blocks, starts, geometry, modifiers), nil
}

// flow runs the greedy first-fit pass and returns the index of the first block
// of every page
func flow(blocks []ContentBlock, budget func(page int) float64) []int {
	starts := []int{0}
	running := blocks[0].RenderedHeightPx
	page := 0

	for i := 1; i < len(blocks); i++ {
		h := blocks[i].RenderedHeightPx
		if running+h <= budget(page) {
			running += h
			continue
		}
		page++
		starts = append(starts, i)
		running = h
	}
	return starts
}

func assemble(blocks []ContentBlock, starts []int, geometry PageGeometry, modifiers PageModifiers) []Page {
	pages := make([]Page, len(starts))
	for i, start := range starts {
		end := len(blocks)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		isLast := i == len(starts)-1

		group := make([]ContentBlock, end-start)
		copy(group, blocks[start:end])

		pages[i] = Page{
			Blocks:            group,
			IsFirstPage:       i == 0,
			IsLastPage:        isLast,
			AvailableHeightPx: AvailableHeight(geometry, modifiers, i, isLast),
		}
	}
	return pages
}

func validateBlocks(blocks []ContentBlock) error {
	for i, b := range blocks {
		if isFinite(b.RenderedHeightPx) && b.RenderedHeightPx >= 0 {
			continue
		}
		id := b.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}
		return &InvalidInputError{BlockID: id, Field: "rendered_height_px", Value: b.RenderedHeightPx}
	}
	return nil
}

func sumHeights(blocks []ContentBlock) float64 {
	var total float64
	for _, b := range blocks {
		total += b.RenderedHeightPx
	}
	return total
}
