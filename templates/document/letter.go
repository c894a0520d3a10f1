// Package document renders paginated letters as HTML for the preview and the
// PDF printer.
package document

import (
	"context"
	"fmt"
	"io"
	"strings"

	"letterhead/models"
	"letterhead/services/pagination"

	"github.com/a-h/templ"
)

// LetterView is everything needed to draw a paginated letter
type LetterView struct {
	Profile   models.BrandProfile
	Pages     []pagination.Page
	Geometry  pagination.PageGeometry
	Modifiers pagination.PageModifiers
	Style     pagination.StyleContext
	Title     string
}

// Document renders a standalone HTML document holding every page of the
// letter. It is what the PDF printer loads.
func Document(v LetterView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", templ.EscapeString(v.Title))
		b.WriteString(fontsLink)
		b.WriteString("\n")
		writeStyle(ctx, &b, v)
		b.WriteString("</head>\n<body>\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := Pages(v).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

// Pages renders the page frames without the surrounding document or stylesheet
func Pages(v LetterView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="letter-pages">`)
		for i := range v.Pages {
			writePage(&b, v, i)
		}
		b.WriteString("</div>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeStyle(ctx context.Context, b *strings.Builder, v LetterView) {
	if nonce := templ.GetNonce(ctx); nonce != "" {
		fmt.Fprintf(b, "<style nonce=\"%s\">\n", templ.EscapeString(nonce))
	} else {
		b.WriteString("<style>\n")
	}
	b.WriteString(pageCSS(v.Geometry, v.Modifiers))
	b.WriteString(BodyCSS(v.Style))
	b.WriteString("</style>\n")
}

func writePage(b *strings.Builder, v LetterView, i int) {
	p := v.Pages[i]
	b.WriteString(`<div class="document-page">`)

	if p.IsFirstPage && v.Modifiers.FirstPageHeaderHeightPx > 0 {
		writeHeader(b, v.Profile)
	}

	b.WriteString(`<div class="letter-content letter-body">`)
	for _, blk := range p.Blocks {
		b.WriteString(blk.Markup)
	}
	b.WriteString(`</div>`)

	if p.IsLastPage && v.Modifiers.SignatureHeightPx > 0 && v.Profile.HasSignature() {
		writeSignature(b, v.Profile)
	}
	if v.Modifiers.FooterEnabled {
		writeFooter(b, v.Profile)
	}

	fmt.Fprintf(b, `<div class="page-number">Page %d of %d</div>`, i+1, len(v.Pages))
	b.WriteString("</div>\n")
}

func writeHeader(b *strings.Builder, p models.BrandProfile) {
	color := safeColor(p.PrimaryColor)
	name := templ.EscapeString(p.CompanyName)
	logo := ""
	if p.ShowLogo && p.LogoURL != "" {
		logo = fmt.Sprintf(`<img src="%s" alt="Logo" style="height:64px;width:auto;object-fit:contain;margin-bottom:16px">`, safeURL(p.LogoURL))
	}

	switch p.Layout {
	case models.LayoutExecutive:
		fmt.Fprintf(b, `<header class="letter-header executive" style="background-color:%s">%s<h1 style="font-size:36px;font-weight:700;margin:0">%s</h1>`, color, logo, name)
		if p.Slogan != "" {
			fmt.Fprintf(b, `<p style="margin:8px 0 0;opacity:.8">%s</p>`, templ.EscapeString(p.Slogan))
		}
		b.WriteString(`</header>`)
	case models.LayoutModern:
		fmt.Fprintf(b, `<header class="letter-header modern" style="border-left:6px solid %s;padding-left:24px">%s<h1 style="font-size:30px;font-weight:700;margin:0;color:%s">%s</h1>`, color, logo, color, name)
		writeContactLine(b, p, "margin-top:8px;font-size:12px;color:#475569")
		b.WriteString(`</header>`)
	default:
		fmt.Fprintf(b, `<header class="letter-header classic" style="display:flex;justify-content:space-between;align-items:flex-start;border-bottom:2px solid %s">`, color)
		fmt.Fprintf(b, `<div>%s<h1 style="font-size:30px;font-weight:700;margin:0;color:%s">%s</h1></div>`, logo, color, name)
		b.WriteString(`<div style="text-align:right;font-size:12px;color:#475569">`)
		for _, line := range []string{p.Email, p.Website, p.Phone} {
			if line != "" {
				fmt.Fprintf(b, `<p style="margin:0">%s</p>`, templ.EscapeString(line))
			}
		}
		b.WriteString(`</div></header>`)
	}
}

func writeContactLine(b *strings.Builder, p models.BrandProfile, style string) {
	var parts []string
	for _, s := range []string{p.Address, p.Email, p.Website, p.Phone} {
		if s != "" {
			parts = append(parts, templ.EscapeString(s))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, `<p style="%s">%s</p>`, style, strings.Join(parts, " &middot; "))
	}
}

func writeSignature(b *strings.Builder, p models.BrandProfile) {
	fmt.Fprintf(b, `<div class="letter-signature"><img src="%s" alt="Signature">`, safeURL(p.SignatureURL))
	signer := p.SignerName
	if signer == "" {
		signer = p.CompanyName
	}
	if signer != "" {
		fmt.Fprintf(b, `<p style="margin:8px 0 0;font-weight:700;color:#0f172a">%s</p>`, templ.EscapeString(signer))
	}
	b.WriteString(`</div>`)
}

func writeFooter(b *strings.Builder, p models.BrandProfile) {
	fmt.Fprintf(b, `<footer class="letter-footer"><span style="font-weight:700;color:#64748b">%s</span><span>%s</span></footer>`,
		templ.EscapeString(p.CompanyName), templ.EscapeString(p.Website))
}

func safeColor(c string) string {
	if models.IsValidColor(c) {
		return c
	}
	return "#0f172a"
}

func safeURL(u string) string {
	return templ.EscapeString(string(templ.URL(u)))
}

// MetaMarkup is the recipient and subject block that opens the first page
func MetaMarkup(recipientName, recipientAddress, subject string) string {
	var b strings.Builder
	b.WriteString(`<div class="letter-meta">`)
	if recipientName != "" {
		fmt.Fprintf(&b, `<p style="font-weight:700">%s</p>`, templ.EscapeString(recipientName))
	}
	if recipientAddress != "" {
		fmt.Fprintf(&b, `<p style="white-space:pre-line;color:#475569">%s</p>`, templ.EscapeString(recipientAddress))
	}
	if subject != "" {
		fmt.Fprintf(&b, `<p class="subject">RE: %s</p>`, templ.EscapeString(subject))
	}
	b.WriteString(`</div>`)
	return b.String()
}
