// Package pages renders the composer's server-side pages.
package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"letterhead/middleware"

	"github.com/a-h/templ"
)

// Page is the data shared by every full page
type Page struct {
	Title            string
	CSRFToken        string
	TurnstileSiteKey string
}

// layout wraps body in the app shell. Scripts carry the request's CSP nonce.
func layout(p Page, body func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		nonce := templ.GetNonce(ctx)

		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", templ.EscapeString(p.Title))
		if p.CSRFToken != "" {
			fmt.Fprintf(&b, `<meta name="csrf-token" content="%s">`+"\n", templ.EscapeString(p.CSRFToken))
		}
		fmt.Fprintf(&b, `<link rel="stylesheet" href="%s">`+"\n", middleware.AssetURL("css/app.css"))
		fmt.Fprintf(&b, `<script nonce="%s" src="%s" defer></script>`+"\n", templ.EscapeString(nonce), middleware.AssetURL("js/app.js"))
		if p.TurnstileSiteKey != "" {
			fmt.Fprintf(&b, `<script nonce="%s" src="https://challenges.cloudflare.com/turnstile/v0/api.js" async defer></script>`+"\n", templ.EscapeString(nonce))
		}
		b.WriteString("</head>\n<body>\n")
		body(&b)
		b.WriteString("</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func csrfField(b *strings.Builder, token string) {
	if token != "" {
		fmt.Fprintf(b, `<input type="hidden" name="_csrf" value="%s">`, templ.EscapeString(token))
	}
}

// Alert renders a status message fragment, used for HTMX form responses
func Alert(kind, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert alert-%s" role="alert">%s</div>`,
			templ.EscapeString(kind), templ.EscapeString(message))
		return err
	})
}
