package document

import (
	"context"
	"fmt"
	"io"
	"strings"

	"letterhead/services/pagination"

	"github.com/a-h/templ"
)

// MeasurePage renders every block in its own slot inside a column of widthPx,
// styled like the letter body. Slots are block formatting contexts so each
// one's height includes its child's margins.
func MeasurePage(markups []string, widthPx float64, style pagination.StyleContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n")
		b.WriteString(fontsLink)
		b.WriteString("\n<style>\n* { box-sizing: border-box; }\nbody { margin: 0; }\n")
		b.WriteString(".measure-slot { display: flow-root; }\n")
		b.WriteString(BodyCSS(style))
		b.WriteString("</style>\n</head>\n<body>\n")
		fmt.Fprintf(&b, `<div id="measure" class="letter-body" style="width:%gpx">`, widthPx)
		for _, m := range markups {
			b.WriteString(`<div class="measure-slot">`)
			b.WriteString(m)
			b.WriteString(`</div>`)
		}
		b.WriteString("</div>\n</body>\n</html>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RenderMeasureHTML renders MeasurePage to a string
func RenderMeasureHTML(ctx context.Context, markups []string, widthPx float64, style pagination.StyleContext) (string, error) {
	var b strings.Builder
	if err := MeasurePage(markups, widthPx, style).Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderDocumentHTML renders Document to a string
func RenderDocumentHTML(ctx context.Context, v LetterView) (string, error) {
	var b strings.Builder
	if err := Document(v).Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
