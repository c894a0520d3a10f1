package pages

import (
	"fmt"
	"strings"
	"time"

	"letterhead/models"

	"github.com/a-h/templ"
)

// LettersView is the data behind the letters dashboard
type LettersView struct {
	Page
	User        *models.User
	Letters     []models.Letter
	Profiles    []models.BrandProfile
	Documents   []models.GeneratedDocument
	LetterCount int64
	LetterLimit int64 // -1 when unlimited
	CanCreate   bool
	Now         time.Time
}

// composerState is handed to the composer script as JSON
type composerState struct {
	Profiles    []models.BrandProfile `json:"profiles"`
	CanCreate   bool                  `json:"can_create"`
	LetterLimit int64                 `json:"letter_limit"`
}

// Letters renders the dashboard: saved letters, brand profiles and recent exports
func Letters(v LettersView) templ.Component {
	inner := layout(v.Page, func(b *strings.Builder) {
		b.WriteString(`<header class="app-header"><h1>Letterhead</h1>`)
		if v.User != nil {
			fmt.Fprintf(b, `<span class="plan plan-%s">%s</span> <span>%s</span>`,
				strings.ToLower(templ.EscapeString(v.User.Plan)), templ.EscapeString(v.User.Plan), templ.EscapeString(v.User.Name))
		}
		b.WriteString(`<form method="post" action="/logout">`)
		csrfField(b, v.CSRFToken)
		b.WriteString(`<button type="submit">Sign out</button></form></header>` + "\n")

		b.WriteString(`<main class="dashboard">` + "\n")
		writeUsage(b, v)
		writeLetterList(b, v)
		writeProfileList(b, v)
		writeDocumentList(b, v)
		b.WriteString(`<section id="composer" class="composer"></section>` + "\n</main>\n")

		state := composerState{Profiles: v.Profiles, CanCreate: v.CanCreate, LetterLimit: v.LetterLimit}
		if state.Profiles == nil {
			state.Profiles = []models.BrandProfile{}
		}
		fmt.Fprintf(b, `<script type="application/json" id="composer-state">%s</script>`+"\n",
			strings.ReplaceAll(jsonState(state), "</", `<\/`))
	})
	return inner
}

func writeUsage(b *strings.Builder, v LettersView) {
	b.WriteString(`<section class="usage">`)
	if v.LetterLimit < 0 {
		fmt.Fprintf(b, `<p>%d saved letters</p>`, v.LetterCount)
	} else {
		fmt.Fprintf(b, `<p>%d of %d saved letters</p>`, v.LetterCount, v.LetterLimit)
		if !v.CanCreate {
			b.WriteString(`<form method="post" action="/api/user/upgrade" class="upgrade" id="upgrade">`)
			csrfField(b, v.CSRFToken)
			b.WriteString(`<p>The FREE plan is full. Upgrade to PRO for unlimited letters.</p>` +
				`<button type="submit">Upgrade to PRO</button></form>`)
		}
	}
	b.WriteString("</section>\n")
}

func writeLetterList(b *strings.Builder, v LettersView) {
	b.WriteString(`<section class="letters"><h2>Letters</h2>`)
	if len(v.Letters) == 0 {
		b.WriteString(`<p class="empty">No letters yet.</p></section>` + "\n")
		return
	}
	b.WriteString(`<a href="/api/letters/export.xlsx" download>Download list (.xlsx)</a><ul>`)
	for _, l := range v.Letters {
		id := templ.EscapeString(l.ID)
		fmt.Fprintf(b, `<li data-letter-id="%s"><strong>%s</strong> <span>%s</span> <span>%s</span> `,
			id, templ.EscapeString(l.Name), templ.EscapeString(pageCount(l.PageCount)),
			templ.EscapeString(formatRelativeTime(l.UpdatedAt, v.Now)))
		fmt.Fprintf(b, `<a href="/letters/%s/preview" target="_blank">Preview</a></li>`, id)
	}
	b.WriteString("</ul></section>\n")
}

func writeProfileList(b *strings.Builder, v LettersView) {
	b.WriteString(`<section class="profiles"><h2>Brand profiles</h2><ul>`)
	for _, p := range v.Profiles {
		fmt.Fprintf(b, `<li data-profile-id="%s"><span class="swatch" style="background:%s"></span>%s`,
			templ.EscapeString(p.ID), templ.EscapeString(p.PrimaryColor), templ.EscapeString(p.CompanyName))
		if p.IsDefault {
			b.WriteString(` <em>default</em>`)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString("</ul></section>\n")
}

func writeDocumentList(b *strings.Builder, v LettersView) {
	if len(v.Documents) == 0 {
		return
	}
	b.WriteString(`<section class="documents"><h2>Recent exports</h2><ul>`)
	for _, d := range v.Documents {
		fmt.Fprintf(b, `<li><a href="/api/documents/%s/download">%s</a> <span>%s</span> <span>%s</span></li>`,
			templ.EscapeString(d.ID), templ.EscapeString(d.FileName),
			templ.EscapeString(formatFileSize(d.FileSize)), templ.EscapeString(formatRelativeTime(d.CreatedAt, v.Now)))
	}
	b.WriteString("</ul></section>\n")
}

func pageCount(n int) string {
	return plural(n, "page")
}
