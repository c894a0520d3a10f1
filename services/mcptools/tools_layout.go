package mcptools

import (
	"context"
	"errors"

	"letterhead/services/blocks"
	"letterhead/services/pagination"

	"github.com/mark3labs/mcp-go/mcp"
)

// paginateResult is the payload of paginate_blocks
type paginateResult struct {
	PageCount int               `json:"page_count"`
	Pages     []pagination.Page `json:"pages"`
}

// measureResult is the payload of split_and_measure
type measureResult struct {
	ContentWidthPx float64                   `json:"content_width_px"`
	TotalHeightPx  float64                   `json:"total_height_px"`
	Blocks         []pagination.ContentBlock `json:"blocks"`
}

func (s *Server) registerLayoutTools() {
	s.mcp.AddTool(mcp.NewTool("paginate_blocks",
		mcp.WithDescription("Distribute measured content blocks over fixed-size pages. "+
			"Returns the pages in order with the blocks each one holds."),
		mcp.WithArray("blocks",
			mcp.Description("Blocks in document order: [{id, height, markup}]. Heights are CSS pixels."),
			mcp.Required(),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithObject("geometry",
			mcp.Description("Optional {page_width_px, page_height_px, padding_px}; defaults to A4 at 96dpi"),
		),
		mcp.WithObject("modifiers",
			mcp.Description("Optional {first_page_header_height_px, footer_enabled, footer_height_px, signature_height_px}"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handlePaginateBlocks)

	s.mcp.AddTool(mcp.NewTool("split_and_measure",
		mcp.WithDescription("Split rich-text HTML into top-level blocks and measure each block's rendered height "+
			"at the page content width. The output can be passed to paginate_blocks."),
		mcp.WithString("body", mcp.Description("Letter body HTML"), mcp.Required()),
		mcp.WithString("font_family",
			mcp.Description("Brand font family"),
			mcp.Enum("sans", "serif", "display", "grotesk"),
		),
		mcp.WithObject("geometry",
			mcp.Description("Optional {page_width_px, page_height_px, padding_px}; defaults to A4 at 96dpi"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleSplitAndMeasure)
}

func (s *Server) handlePaginateBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	var in []pagination.ContentBlock
	found, err := decodeArg(args, "blocks", &in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError("blocks is required"), nil
	}

	geometry := s.geometry
	if _, err := decodeArg(args, "geometry", &geometry); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var modifiers pagination.PageModifiers
	if _, err := decodeArg(args, "modifiers", &modifiers); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pages, err := pagination.Paginate(in, geometry, modifiers)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidGeometry) || errors.Is(err, pagination.ErrInvalidInput) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	return jsonResult(paginateResult{PageCount: len(pages), Pages: pages})
}

func (s *Server) handleSplitAndMeasure(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	geometry := s.geometry
	if _, err := decodeArg(req.GetArguments(), "geometry", &geometry); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := geometry.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	style := pagination.DefaultStyle()
	if family := req.GetString("font_family", ""); family != "" {
		style.FontFamily = family
	}

	raw, err := blocks.SplitIntoBlocks(body)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to split body", err), nil
	}
	measured, err := pagination.MeasureBlocks(ctx, s.measurer, raw, geometry, style)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidInput) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	result := measureResult{ContentWidthPx: geometry.ContentWidthPx(), Blocks: measured}
	for _, b := range measured {
		result.TotalHeightPx += b.RenderedHeightPx
	}
	if result.Blocks == nil {
		result.Blocks = []pagination.ContentBlock{}
	}
	return jsonResult(result)
}
