package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"letterhead/models"
	"letterhead/services/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readDOCX unzips a document and returns its parts by name
func readDOCX(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[f.Name] = string(b)
	}
	return parts
}

// wellFormed walks every token so malformed XML fails the test
func wellFormed(t *testing.T, name, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		require.NoError(t, err, name)
	}
}

// docText concatenates the <w:t> contents of a part
func docText(t *testing.T, doc string) string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return b.String()
		}
		require.NoError(t, err)
		switch v := tok.(type) {
		case xml.StartElement:
			inText = v.Name.Local == "t"
		case xml.EndElement:
			inText = false
		case xml.CharData:
			if inText {
				b.Write(v)
			}
		}
	}
}

func layoutFor(t *testing.T, profile models.BrandProfile, body string, blockHeight float64) *LetterLayout {
	t.Helper()
	r := NewLetterRenderer(fixedMeasurer(blockHeight), pagination.A4Geometry())
	layout, err := r.LayoutLetter(context.Background(), &models.Letter{
		Name:          "Quarterly <Report>",
		RecipientName: "Jane Smith",
		Subject:       "Renewal",
		Body:          body,
	}, &profile, nil)
	require.NoError(t, err)
	return layout
}

func TestGenerateDOCX_Package(t *testing.T) {
	profile := models.DefaultBrandProfile()
	profile.CompanyName = "Acme & Co"
	profile.PrimaryColor = "#abc"

	layout := layoutFor(t, profile, paragraphs(12), 100)
	require.Greater(t, len(layout.Pages), 1)

	data, err := GenerateDOCX(layout)
	require.NoError(t, err)

	parts := readDOCX(t, data)
	for _, name := range []string{
		"[Content_Types].xml", "_rels/.rels", "word/_rels/document.xml.rels",
		"word/document.xml", "word/styles.xml", "word/numbering.xml",
		"word/footer1.xml", "docProps/core.xml",
	} {
		require.Contains(t, parts, name)
		wellFormed(t, name, parts[name])
	}

	doc := parts["word/document.xml"]
	assert.Equal(t, len(layout.Pages)-1, strings.Count(doc, `w:type="page"`))
	assert.Contains(t, doc, `<w:footerReference w:type="default" r:id="rId3">`)
	assert.Contains(t, doc, `w:val="AABBCC"`)

	text := docText(t, doc)
	assert.Contains(t, text, "Acme & Co")
	assert.Contains(t, text, "Jane Smith")
	assert.Contains(t, text, "RE: Renewal")
	assert.Equal(t, 12, strings.Count(text, "Paragraph"))

	assert.Contains(t, parts["word/footer1.xml"], "NUMPAGES")
	assert.Contains(t, docText(t, parts["word/footer1.xml"]), "Acme & Co")
	assert.Contains(t, parts["docProps/core.xml"], "Quarterly &lt;Report&gt;")
	assert.Contains(t, parts["word/styles.xml"], `w:ascii="Inter"`)
}

func TestGenerateDOCX_NoFooterMinimal(t *testing.T) {
	profile := models.DefaultBrandProfile()
	profile.Layout = models.LayoutMinimal
	profile.ShowFooter = false

	data, err := GenerateDOCX(layoutFor(t, profile, "<p>Hello</p>", 10))
	require.NoError(t, err)

	parts := readDOCX(t, data)
	assert.NotContains(t, parts, "word/footer1.xml")
	assert.NotContains(t, parts["word/document.xml"], "footerReference")
	assert.NotContains(t, parts["word/_rels/document.xml.rels"], "footer1.xml")
	assert.NotContains(t, parts["word/document.xml"], `w:val="Title"`)
}

func TestGenerateDOCX_Signature(t *testing.T) {
	profile := models.DefaultBrandProfile()
	profile.ShowSignature = true
	profile.SignatureURL = "https://cdn.example.com/sig.png"
	profile.SignerName = "Ada Lovelace"

	data, err := GenerateDOCX(layoutFor(t, profile, "<p>Hello</p>", 10))
	require.NoError(t, err)

	text := docText(t, readDOCX(t, data)["word/document.xml"])
	assert.True(t, strings.HasSuffix(text, "Ada Lovelace"))
}

func TestGenerateDOCX_PageOrder(t *testing.T) {
	layout := &LetterLayout{
		Profile:  models.DefaultBrandProfile(),
		Geometry: pagination.A4Geometry(),
		Pages: []pagination.Page{
			{IsFirstPage: true, Blocks: []pagination.ContentBlock{
				{ID: "a", Markup: "<p>Alpha</p>"},
				{ID: "b", Markup: "<p>Bravo</p>"},
			}},
			{IsLastPage: true, Blocks: []pagination.ContentBlock{
				{ID: "c", Markup: "<p>Charlie</p>"},
			}},
		},
	}

	data, err := GenerateDOCX(layout)
	require.NoError(t, err)

	doc := readDOCX(t, data)["word/document.xml"]
	assert.Equal(t, 1, strings.Count(doc, `w:type="page"`))
	assert.Equal(t, "AlphaBravoCharlie", docText(t, doc))
	assert.Less(t, strings.Index(doc, "Bravo"), strings.Index(doc, `w:type="page"`))
	assert.Greater(t, strings.Index(doc, "Charlie"), strings.Index(doc, `w:type="page"`))
}

func TestGenerateDOCX_Markup(t *testing.T) {
	profile := models.DefaultBrandProfile()
	body := `<h2>Terms</h2>` +
		`<p>Plain <strong>bold</strong> and <em>italic</em> and <a href="https://x.test">link</a><br>next line</p>` +
		`<ul><li>One</li><li>Two<ul><li>Nested</li></ul></li></ul>` +
		`<ol><li>First</li></ol>` +
		`<blockquote><p>Quoted</p></blockquote>` +
		`<pre>line 1
line 2</pre>` +
		`<table><tr><th>Item</th><th>Price</th></tr><tr><td>Widget</td></tr></table>` +
		`<hr>` +
		`<img src="https://x.test/a.png" alt="Chart">`

	data, err := GenerateDOCX(layoutFor(t, profile, body, 10))
	require.NoError(t, err)
	parts := readDOCX(t, data)
	doc := parts["word/document.xml"]
	wellFormed(t, "document", doc)

	assert.Contains(t, doc, `<w:pStyle w:val="Heading2">`)
	assert.Contains(t, doc, "<w:b></w:b>")
	assert.Contains(t, doc, "<w:i></w:i>")
	assert.Contains(t, doc, `<w:u w:val="single">`)
	assert.Contains(t, doc, `<w:pStyle w:val="Quote">`)
	assert.Contains(t, doc, `<w:pStyle w:val="Code">`)
	assert.Contains(t, doc, "<w:tbl>")
	assert.Equal(t, 4, strings.Count(doc, "<w:tc>"), "short rows are padded")
	assert.Contains(t, doc, `<w:ilvl w:val="1">`)
	assert.Contains(t, doc, "<w:pBdr>")

	numbering := parts["word/numbering.xml"]
	assert.Equal(t, 3, strings.Count(numbering, "<w:num "))
	assert.Contains(t, numbering, `w:numFmt w:val="decimal"`)

	text := docText(t, doc)
	assert.Contains(t, text, "Plain bold and italic and link")
	assert.Contains(t, text, "next line")
	assert.Contains(t, text, "line 1line 2")
	assert.Contains(t, text, "[Chart]")
	assert.NotContains(t, text, "  ")
}

func TestDocxColor(t *testing.T) {
	assert.Equal(t, "AABBCC", docxColor("#abc"))
	assert.Equal(t, "0F172A", docxColor("#0f172a"))
	assert.Equal(t, "0F172A", docxColor("red"))
}
