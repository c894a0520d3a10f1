package pages

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// Login renders the sign-in and sign-up forms. errMsg is shown above the
// sign-in form when set.
func Login(p Page, errMsg string) templ.Component {
	return layout(p, func(b *strings.Builder) {
		b.WriteString(`<main class="auth">` + "\n<h1>Letterhead</h1>\n")
		if errMsg != "" {
			fmt.Fprintf(b, `<div class="alert alert-error" role="alert">%s</div>`+"\n", templ.EscapeString(errMsg))
		}

		b.WriteString(`<form method="post" action="/login" class="auth-form" hx-post="/login" hx-target="#login-result">`)
		csrfField(b, p.CSRFToken)
		b.WriteString(`<h2>Sign in</h2>` +
			`<label>Email <input type="email" name="email" autocomplete="email" required></label>` +
			`<label>Password <input type="password" name="password" autocomplete="current-password" required></label>` +
			`<div id="login-result"></div>` +
			`<button type="submit">Sign in</button>` +
			`<a href="/forgot-password">Forgot your password?</a></form>` + "\n")

		b.WriteString(`<form method="post" action="/signup" class="auth-form">`)
		csrfField(b, p.CSRFToken)
		b.WriteString(`<h2>Create an account</h2>` +
			`<label>Name <input type="text" name="name" autocomplete="name" required></label>` +
			`<label>Email <input type="email" name="email" autocomplete="email" required></label>` +
			`<label>Password <input type="password" name="password" autocomplete="new-password" minlength="8" required></label>`)
		if p.TurnstileSiteKey != "" {
			fmt.Fprintf(b, `<div class="cf-turnstile" data-sitekey="%s"></div>`, templ.EscapeString(p.TurnstileSiteKey))
		}
		b.WriteString(`<button type="submit">Sign up</button></form>` + "\n</main>\n")
	})
}

// ForgotPassword renders the reset request form
func ForgotPassword(p Page) templ.Component {
	return layout(p, func(b *strings.Builder) {
		b.WriteString(`<main class="auth"><h1>Reset your password</h1>`)
		b.WriteString(`<form method="post" action="/forgot-password" class="auth-form" hx-post="/forgot-password" hx-target="#forgot-result">`)
		csrfField(b, p.CSRFToken)
		b.WriteString(`<label>Email <input type="email" name="email" required></label>` +
			`<div id="forgot-result"></div>` +
			`<button type="submit">Send reset link</button></form>` +
			`<a href="/login">Back to sign in</a></main>` + "\n")
	})
}

// ResetPassword renders the new-password form for a reset token
func ResetPassword(p Page, token string, valid bool) templ.Component {
	return layout(p, func(b *strings.Builder) {
		b.WriteString(`<main class="auth"><h1>Choose a new password</h1>`)
		if !valid {
			b.WriteString(`<div class="alert alert-error" role="alert">This reset link is invalid or has expired.</div>` +
				`<a href="/forgot-password">Request a new link</a></main>` + "\n")
			return
		}
		b.WriteString(`<form method="post" action="/reset-password" class="auth-form" hx-post="/reset-password" hx-target="#reset-result">`)
		csrfField(b, p.CSRFToken)
		fmt.Fprintf(b, `<input type="hidden" name="token" value="%s">`, templ.EscapeString(token))
		b.WriteString(`<label>New password <input type="password" name="password" autocomplete="new-password" minlength="8" required></label>` +
			`<label>Confirm password <input type="password" name="password_confirm" autocomplete="new-password" minlength="8" required></label>` +
			`<div id="reset-result"></div>` +
			`<button type="submit">Reset password</button></form></main>` + "\n")
	})
}
