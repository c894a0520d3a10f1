package document

import (
	"fmt"
	"strings"

	"letterhead/services/pagination"
)

// fontStacks maps brand font families to CSS font stacks
var fontStacks = map[string]string{
	"sans":    `'Inter', Helvetica, Arial, sans-serif`,
	"serif":   `'Merriweather', Georgia, 'Times New Roman', serif`,
	"display": `'Playfair Display', Georgia, serif`,
	"grotesk": `'Space Grotesk', Helvetica, Arial, sans-serif`,
}

const fontsLink = `<link href="https://fonts.googleapis.com/css2?family=Inter:wght@300;400;500;600;700&family=Merriweather:ital,wght@0,300;0,400;0,700;1,400&family=Playfair+Display:wght@400;700&family=Space+Grotesk:wght@400;700&display=swap" rel="stylesheet">`

// FontStack returns the CSS font-family value for a brand font
func FontStack(family string) string {
	if stack, ok := fontStacks[family]; ok {
		return stack
	}
	return fontStacks["sans"]
}

// FontName returns the primary face of a brand font, for formats that take a
// single font name
func FontName(family string) string {
	stack := FontStack(family)
	name, _, _ := strings.Cut(stack, ",")
	return strings.Trim(name, "' ")
}

// BodyCSS is the typography shared by the measurement page and the printed
// letter. Block heights are only valid for the stylesheet they were measured
// with, so both pages must use this.
func BodyCSS(style pagination.StyleContext) string {
	if style.FontSizePt <= 0 {
		style = pagination.DefaultStyle()
	}
	var b strings.Builder
	fmt.Fprintf(&b, `.letter-body { font-family: %s; font-size: %gpt; line-height: %g; color: #1e293b; text-align: justify; }
`, FontStack(style.FontFamily), style.FontSizePt, style.LineHeight)
	b.WriteString(`.letter-body p { margin: 1.25em 0; }
.letter-body h1 { font-size: 2.25em; font-weight: 700; line-height: 1.11; margin: 0 0 0.89em; }
.letter-body h2 { font-size: 1.5em; font-weight: 700; line-height: 1.33; margin: 2em 0 1em; }
.letter-body h3 { font-size: 1.25em; font-weight: 700; line-height: 1.6; margin: 1.6em 0 0.6em; }
.letter-body h4 { font-size: 1em; font-weight: 700; line-height: 1.5; margin: 1.5em 0 0.5em; }
.letter-body h5, .letter-body h6 { font-size: 1em; font-weight: 700; margin: 0; }
.letter-body ul, .letter-body ol { margin: 1.25em 0; padding-left: 24px; }
.letter-body li { margin: 0.25em 0; }
.letter-body blockquote { margin: 1.6em 0; padding-left: 16px; border-left: 3px solid #cbd5e1; font-style: italic; }
.letter-body pre { font-family: 'Courier New', Courier, monospace; font-size: 0.875em; line-height: 1.7; margin: 1.7em 0; white-space: pre; }
.letter-body table { width: 100%; border-collapse: collapse; font-size: 0.875em; margin: 2em 0; }
.letter-body th, .letter-body td { padding: 8px; text-align: left; vertical-align: top; }
.letter-body hr { border: 0; border-top: 1px solid #e2e8f0; margin: 3em 0; }
.letter-body img { display: block; max-width: 100%; height: auto; }
.letter-body figure { margin: 2em 0; }
`)
	return b.String()
}

// pageCSS lays out the fixed-size page frames
func pageCSS(g pagination.PageGeometry, m pagination.PageModifiers) string {
	return fmt.Sprintf(`* { box-sizing: border-box; }
body { margin: 0; padding: 0; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
@page { size: %gpx %gpx; margin: 0; }
.document-page { position: relative; width: %gpx; height: %gpx; padding: %gpx; background: #fff; display: flex; flex-direction: column; overflow: hidden; page-break-after: always; break-after: page; }
.document-page:last-child { page-break-after: auto; break-after: auto; }
.letter-header { height: %gpx; flex: none; overflow: hidden; }
.letter-header.executive { margin: -%gpx -%gpx 0; padding: %gpx %gpx 0; color: #fff; }
.letter-content { flex: 1; position: relative; }
.letter-footer { height: %gpx; flex: none; display: flex; justify-content: space-between; align-items: flex-end; padding-bottom: 8px; border-top: 1px solid #e2e8f0; font-size: 10px; color: #94a3b8; text-transform: uppercase; letter-spacing: 0.05em; }
.letter-signature { height: %gpx; flex: none; padding-top: 24px; }
.letter-signature img { height: 64px; width: auto; object-fit: contain; }
.page-number { position: absolute; bottom: 16px; right: 24px; font-size: 10px; color: #cbd5e1; }
.letter-meta p { margin: 0; }
.letter-meta .subject { margin-top: 1em; font-weight: 700; }
`,
		g.PageWidthPx, g.PageHeightPx,
		g.PageWidthPx, g.PageHeightPx, g.PaddingPx,
		m.FirstPageHeaderHeightPx,
		g.PaddingPx, g.PaddingPx, g.PaddingPx, g.PaddingPx,
		m.FooterHeightPx,
		m.SignatureHeightPx,
	)
}
