package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"letterhead/models"
	"letterhead/templates/document"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DOCXMimeType is the content type of a Word document
const DOCXMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// XML namespaces used in DOCX files
const (
	nsW       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPkgRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"
	relDoc    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// twipsPerPx converts CSS pixels (96 dpi) to twentieths of a point
const twipsPerPx = 15

// wDocument is word/document.xml
type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	NSW     string   `xml:"xmlns:w,attr"`
	NSR     string   `xml:"xmlns:r,attr"`
	Body    wBody    `xml:"w:body"`
}

// wBody holds paragraphs and tables in order, then the section properties
type wBody struct {
	Content []interface{}
	SectPr  wSectPr `xml:"w:sectPr"`
}

// wFooter is word/footer1.xml
type wFooter struct {
	XMLName xml.Name `xml:"w:ftr"`
	NSW     string   `xml:"xmlns:w,attr"`
	NSR     string   `xml:"xmlns:r,attr"`
	Content []interface{}
}

type wSectPr struct {
	FooterRef *wHdrFtrRef `xml:"w:footerReference,omitempty"`
	PgSz      wPgSz       `xml:"w:pgSz"`
	PgMar     wPgMar      `xml:"w:pgMar"`
}

type wHdrFtrRef struct {
	Type string `xml:"w:type,attr"`
	ID   string `xml:"r:id,attr"`
}

type wPgSz struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type wPgMar struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
}

// wParagraph is <w:p>; Content holds runs and simple fields
type wParagraph struct {
	XMLName xml.Name    `xml:"w:p"`
	Props   *wParaProps `xml:"w:pPr,omitempty"`
	Content []interface{}
}

type wParaProps struct {
	Style   *wVal        `xml:"w:pStyle,omitempty"`
	NumPr   *wNumPr      `xml:"w:numPr,omitempty"`
	Border  *wParaBorder `xml:"w:pBdr,omitempty"`
	Spacing *wSpacing    `xml:"w:spacing,omitempty"`
	Ind     *wInd        `xml:"w:ind,omitempty"`
	Jc      *wVal        `xml:"w:jc,omitempty"`
}

type wVal struct {
	Val string `xml:"w:val,attr"`
}

type wNumPr struct {
	Lvl   wVal `xml:"w:ilvl"`
	NumID wVal `xml:"w:numId"`
}

type wParaBorder struct {
	Bottom *wBorder `xml:"w:bottom,omitempty"`
}

type wBorder struct {
	Val   string `xml:"w:val,attr"`
	Sz    int    `xml:"w:sz,attr"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type wSpacing struct {
	Before int `xml:"w:before,attr"`
	After  int `xml:"w:after,attr"`
}

type wInd struct {
	Left int `xml:"w:left,attr"`
}

// wRun is <w:r>
type wRun struct {
	XMLName xml.Name   `xml:"w:r"`
	Props   *wRunProps `xml:"w:rPr,omitempty"`
	Break   *wBreak    `xml:"w:br,omitempty"`
	Text    *wText     `xml:"w:t,omitempty"`
}

type wRunProps struct {
	Fonts     *wFonts `xml:"w:rFonts,omitempty"`
	Bold      *wEmpty `xml:"w:b,omitempty"`
	Italic    *wEmpty `xml:"w:i,omitempty"`
	Strike    *wEmpty `xml:"w:strike,omitempty"`
	Color     *wVal   `xml:"w:color,omitempty"`
	Size      *wVal   `xml:"w:sz,omitempty"`
	Underline *wVal   `xml:"w:u,omitempty"`
}

type wEmpty struct{}

type wFonts struct {
	ASCII string `xml:"w:ascii,attr"`
	HAnsi string `xml:"w:hAnsi,attr"`
}

type wBreak struct {
	Type string `xml:"w:type,attr,omitempty"`
}

type wText struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type wSimpleField struct {
	XMLName xml.Name `xml:"w:fldSimple"`
	Instr   string   `xml:"w:instr,attr"`
	Runs    []wRun
}

type wTable struct {
	XMLName xml.Name    `xml:"w:tbl"`
	Props   wTableProps `xml:"w:tblPr"`
	Grid    wTableGrid  `xml:"w:tblGrid"`
	Rows    []wTableRow `xml:"w:tr"`
}

type wTableProps struct {
	Style wVal   `xml:"w:tblStyle"`
	Width wWidth `xml:"w:tblW"`
}

type wWidth struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type wTableGrid struct {
	Cols []wGridCol `xml:"w:gridCol"`
}

type wGridCol struct {
	W int `xml:"w:w,attr"`
}

type wTableRow struct {
	Cells []wTableCell `xml:"w:tc"`
}

type wTableCell struct {
	Props   wCellProps `xml:"w:tcPr"`
	Content []interface{}
}

type wCellProps struct {
	Width wWidth `xml:"w:tcW"`
}

// opcRelationships is a package or part .rels file
type opcRelationships struct {
	XMLName xml.Name          `xml:"Relationships"`
	NS      string            `xml:"xmlns,attr"`
	Items   []opcRelationship `xml:"Relationship"`
}

type opcRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// opcTypes is [Content_Types].xml
type opcTypes struct {
	XMLName   xml.Name      `xml:"Types"`
	NS        string        `xml:"xmlns,attr"`
	Defaults  []opcDefault  `xml:"Default"`
	Overrides []opcOverride `xml:"Override"`
}

type opcDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type opcOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// runFormat is the character formatting inherited by nested inline elements
type runFormat struct {
	bold, italic, underline, strike, mono bool
	color                                 string
}

func (f runFormat) props() *wRunProps {
	if f == (runFormat{}) {
		return nil
	}
	p := &wRunProps{}
	if f.mono {
		p.Fonts = &wFonts{ASCII: "Courier New", HAnsi: "Courier New"}
	}
	if f.bold {
		p.Bold = &wEmpty{}
	}
	if f.italic {
		p.Italic = &wEmpty{}
	}
	if f.strike {
		p.Strike = &wEmpty{}
	}
	if f.color != "" {
		p.Color = &wVal{Val: f.color}
	}
	if f.underline {
		p.Underline = &wVal{Val: "single"}
	}
	return p
}

// blockCtx carries the paragraph style and list nesting of the element being converted
type blockCtx struct {
	style     string
	listDepth int
	format    runFormat
}

func (bc blockCtx) props() *wParaProps {
	if bc.style == "" {
		return nil
	}
	return &wParaProps{Style: &wVal{Val: bc.style}}
}

// docxWriter converts letter block markup to WordprocessingML
type docxWriter struct {
	lists      []bool // ordered flag per numbering instance, numId = index+1
	contentTw  int
	brandColor string
}

var docxBlockTags = map[string]bool{
	"p": true, "div": true, "section": true, "figure": true, "blockquote": true,
	"ul": true, "ol": true, "pre": true, "table": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "figcaption": true,
}

// GenerateDOCX renders a paginated letter as a Word document. Each layout
// page starts on a new Word page; the brand header opens the first page, the
// signer closes the last, and the footer carries page numbers.
func GenerateDOCX(layout *LetterLayout) ([]byte, error) {
	g := layout.Geometry
	w := &docxWriter{
		contentTw:  int(g.ContentWidthPx()) * twipsPerPx,
		brandColor: docxColor(layout.Profile.PrimaryColor),
	}

	var body []interface{}
	if layout.Modifiers.FirstPageHeaderHeightPx > 0 {
		body = append(body, w.header(layout.Profile)...)
	}
	for i, page := range layout.Pages {
		if i > 0 {
			body = append(body, pageBreak())
		}
		nodes, err := parseFragment(page.Markup())
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %d: %w", i+1, err)
		}
		body = append(body, w.mixed(nodes, blockCtx{})...)
		if page.IsLastPage && layout.Modifiers.SignatureHeightPx > 0 && layout.Profile.HasSignature() {
			body = append(body, w.signature(layout.Profile))
		}
	}

	doc := wDocument{
		NSW: nsW,
		NSR: nsR,
		Body: wBody{
			Content: body,
			SectPr: wSectPr{
				PgSz: wPgSz{W: int(g.PageWidthPx) * twipsPerPx, H: int(g.PageHeightPx) * twipsPerPx},
				PgMar: wPgMar{
					Top:    int(g.PaddingPx) * twipsPerPx,
					Right:  int(g.PaddingPx) * twipsPerPx,
					Bottom: int(g.PaddingPx) * twipsPerPx,
					Left:   int(g.PaddingPx) * twipsPerPx,
					Header: int(g.PaddingPx/2) * twipsPerPx,
					Footer: int(g.PaddingPx/2) * twipsPerPx,
				},
			},
		},
	}
	if layout.Modifiers.FooterEnabled {
		doc.Body.SectPr.FooterRef = &wHdrFtrRef{Type: "default", ID: "rId3"}
	}

	parts := []struct {
		name string
		data interface{}
	}{
		{"[Content_Types].xml", contentTypes(layout.Modifiers.FooterEnabled)},
		{"_rels/.rels", opcRelationships{NS: nsPkgRels, Items: []opcRelationship{
			{ID: "rId1", Type: relDoc + "/officeDocument", Target: "word/document.xml"},
			{ID: "rId2", Type: nsPkgRels + "/metadata/core-properties", Target: "docProps/core.xml"},
		}}},
		{"word/_rels/document.xml.rels", documentRels(layout.Modifiers.FooterEnabled)},
		{"word/document.xml", doc},
		{"word/styles.xml", stylesXML(layout)},
		{"word/numbering.xml", w.numberingXML()},
		{"docProps/core.xml", coreXML(layout.Title, time.Now())},
	}
	if layout.Modifiers.FooterEnabled {
		parts = append(parts, struct {
			name string
			data interface{}
		}{"word/footer1.xml", w.footer(layout.Profile)})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", part.name, err)
		}
		if err := writePart(f, part.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish docx: %w", err)
	}
	return buf.Bytes(), nil
}

// writePart writes a raw string part or marshals a struct with the XML header
func writePart(w io.Writer, data interface{}) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if s, ok := data.(string); ok {
		_, err := io.WriteString(w, s)
		return err
	}
	return xml.NewEncoder(w).Encode(data)
}

func parseFragment(markup string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	return html.ParseFragment(strings.NewReader(markup), context)
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// mixed converts a run of sibling nodes, grouping loose inline content into paragraphs
func (w *docxWriter) mixed(nodes []*html.Node, bc blockCtx) []interface{} {
	var out []interface{}
	var inline []*html.Node
	flush := func() {
		if len(inline) == 0 {
			return
		}
		if p := w.paragraph(inline, bc.props(), bc.format); hasText(p) {
			out = append(out, p)
		}
		inline = nil
	}
	for _, n := range nodes {
		switch {
		case n.Type == html.ElementNode && docxBlockTags[n.Data]:
			flush()
			out = append(out, w.block(n, bc)...)
		case n.Type == html.ElementNode && n.Data == "img" && len(inline) == 0:
			out = append(out, w.block(n, bc)...)
		case n.Type == html.ElementNode, n.Type == html.TextNode:
			inline = append(inline, n)
		}
	}
	flush()
	return out
}

func (w *docxWriter) block(n *html.Node, bc blockCtx) []interface{} {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		props := &wParaProps{Style: &wVal{Val: "Heading" + n.Data[1:]}}
		return []interface{}{w.paragraph(childNodes(n), props, bc.format)}
	case "p", "figcaption":
		return []interface{}{w.paragraph(childNodes(n), bc.props(), bc.format)}
	case "div", "section", "figure", "li":
		return w.mixed(childNodes(n), bc)
	case "blockquote":
		bc.style = "Quote"
		return w.mixed(childNodes(n), bc)
	case "ul", "ol":
		return w.list(n, bc)
	case "pre":
		return w.preformatted(n)
	case "table":
		return []interface{}{w.table(n, bc)}
	case "hr":
		return []interface{}{&wParagraph{Props: &wParaProps{
			Border:  &wParaBorder{Bottom: &wBorder{Val: "single", Sz: 6, Space: 1, Color: "E2E8F0"}},
			Spacing: &wSpacing{Before: 240, After: 240},
		}}}
	case "img":
		alt := strings.TrimSpace(attr(n, "alt"))
		if alt == "" {
			return nil
		}
		f := bc.format
		f.italic = true
		return []interface{}{&wParagraph{Props: bc.props(), Content: []interface{}{textRun("["+alt+"]", f)}}}
	}
	return []interface{}{w.paragraph([]*html.Node{n}, bc.props(), bc.format)}
}

// list numbers each item's first paragraph and indents the rest
func (w *docxWriter) list(n *html.Node, bc blockCtx) []interface{} {
	w.lists = append(w.lists, n.Data == "ol")
	numID := strconv.Itoa(len(w.lists))
	level := bc.listDepth
	if level > 2 {
		level = 2
	}

	inner := bc
	inner.listDepth++
	var out []interface{}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		items := w.mixed(childNodes(li), inner)
		numbered := false
		for _, it := range items {
			p, ok := it.(*wParagraph)
			if !ok || p.Props != nil && p.Props.NumPr != nil {
				continue
			}
			if p.Props == nil {
				p.Props = &wParaProps{}
			}
			if !numbered {
				p.Props.NumPr = &wNumPr{Lvl: wVal{Val: strconv.Itoa(level)}, NumID: wVal{Val: numID}}
				numbered = true
			} else if p.Props.Ind == nil {
				p.Props.Ind = &wInd{Left: 720 * (level + 1)}
			}
		}
		if !numbered {
			items = append([]interface{}{&wParagraph{Props: &wParaProps{
				NumPr: &wNumPr{Lvl: wVal{Val: strconv.Itoa(level)}, NumID: wVal{Val: numID}},
			}}}, items...)
		}
		out = append(out, items...)
	}
	return out
}

func (w *docxWriter) preformatted(n *html.Node) []interface{} {
	text := strings.TrimSuffix(textOf(n), "\n")
	var out []interface{}
	for _, line := range strings.Split(text, "\n") {
		out = append(out, &wParagraph{
			Props:   &wParaProps{Style: &wVal{Val: "Code"}},
			Content: []interface{}{&wRun{Text: &wText{Space: "preserve", Value: line}}},
		})
	}
	return out
}

func (w *docxWriter) table(n *html.Node, bc blockCtx) *wTable {
	var rows [][]*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == "tr" {
				var cells []*html.Node
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						cells = append(cells, cell)
					}
				}
				rows = append(rows, cells)
				continue
			}
			walk(c)
		}
	}
	walk(n)

	cols := 1
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	colW := w.contentTw / cols

	t := &wTable{
		Props: wTableProps{Style: wVal{Val: "TableGrid"}, Width: wWidth{W: 5000, Type: "pct"}},
	}
	for i := 0; i < cols; i++ {
		t.Grid.Cols = append(t.Grid.Cols, wGridCol{W: colW})
	}
	for _, r := range rows {
		var row wTableRow
		for i := 0; i < cols; i++ {
			cell := wTableCell{Props: wCellProps{Width: wWidth{W: colW, Type: "dxa"}}}
			if i < len(r) {
				cbc := blockCtx{format: bc.format}
				cbc.format.bold = cbc.format.bold || r[i].Data == "th"
				cell.Content = w.mixed(childNodes(r[i]), cbc)
			}
			if len(cell.Content) == 0 {
				cell.Content = []interface{}{&wParagraph{}}
			} else if _, ok := cell.Content[len(cell.Content)-1].(*wParagraph); !ok {
				cell.Content = append(cell.Content, &wParagraph{})
			}
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// paragraph builds one paragraph from inline nodes, collapsing whitespace
// the way a browser does
func (w *docxWriter) paragraph(nodes []*html.Node, props *wParaProps, f runFormat) *wParagraph {
	p := &wParagraph{Props: props}
	for _, n := range nodes {
		w.inline(n, f, &p.Content)
	}
	trimRuns(p.Content)
	return p
}

func (w *docxWriter) inline(n *html.Node, f runFormat, out *[]interface{}) {
	switch n.Type {
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if text == "" && n.Data != "" {
			text = " "
		}
		if strings.TrimSpace(n.Data) != "" {
			if isSpace(n.Data[0]) {
				text = " " + text
			}
			if isSpace(n.Data[len(n.Data)-1]) {
				text += " "
			}
		}
		if text != "" {
			*out = append(*out, textRun(text, f))
		}
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "br":
		*out = append(*out, &wRun{Props: f.props(), Break: &wBreak{}})
		return
	case "img":
		if alt := strings.TrimSpace(attr(n, "alt")); alt != "" {
			f.italic = true
			*out = append(*out, textRun("["+alt+"]", f))
		}
		return
	case "b", "strong":
		f.bold = true
	case "i", "em":
		f.italic = true
	case "u", "ins":
		f.underline = true
	case "s", "strike", "del":
		f.strike = true
	case "code", "kbd", "samp":
		f.mono = true
	case "a":
		f.underline = true
		f.color = "1D4ED8"
	case "mark":
		f.bold = true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.inline(c, f, out)
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r' || b == '\f'
}

func textRun(text string, f runFormat) *wRun {
	return &wRun{Props: f.props(), Text: &wText{Space: "preserve", Value: text}}
}

// trimRuns drops the leading and trailing space of a paragraph and doubled
// spaces between adjacent runs
func trimRuns(content []interface{}) {
	var texts []*wText
	for _, c := range content {
		if r, ok := c.(*wRun); ok && r.Text != nil {
			texts = append(texts, r.Text)
		} else if ok && r.Break != nil {
			texts = append(texts, nil)
		}
	}
	prevSpace := true
	for _, t := range texts {
		if t == nil {
			prevSpace = true
			continue
		}
		if prevSpace {
			t.Value = strings.TrimLeft(t.Value, " ")
		}
		if t.Value != "" {
			prevSpace = strings.HasSuffix(t.Value, " ")
		}
	}
	for i := len(texts) - 1; i >= 0; i-- {
		if texts[i] == nil {
			break
		}
		texts[i].Value = strings.TrimRight(texts[i].Value, " ")
		if texts[i].Value != "" {
			break
		}
	}
}

func hasText(p *wParagraph) bool {
	for _, c := range p.Content {
		if r, ok := c.(*wRun); ok && (r.Break != nil || r.Text != nil && r.Text.Value != "") {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func pageBreak() *wParagraph {
	return &wParagraph{Content: []interface{}{&wRun{Break: &wBreak{Type: "page"}}}}
}

func (w *docxWriter) header(p models.BrandProfile) []interface{} {
	out := []interface{}{&wParagraph{
		Props:   &wParaProps{Style: &wVal{Val: "Title"}},
		Content: []interface{}{textRun(p.CompanyName, runFormat{bold: true, color: w.brandColor})},
	}}
	if p.Slogan != "" {
		out = append(out, &wParagraph{
			Props:   &wParaProps{Style: &wVal{Val: "Subtitle"}},
			Content: []interface{}{textRun(p.Slogan, runFormat{italic: true})},
		})
	}
	var contact []string
	for _, s := range []string{p.Address, p.Email, p.Website, p.Phone} {
		if s = strings.TrimSpace(s); s != "" {
			contact = append(contact, s)
		}
	}
	out = append(out, &wParagraph{
		Props: &wParaProps{
			Border:  &wParaBorder{Bottom: &wBorder{Val: "single", Sz: 12, Space: 4, Color: w.brandColor}},
			Spacing: &wSpacing{After: 480},
		},
		Content: []interface{}{textRun(strings.Join(contact, " · "), runFormat{color: "475569"})},
	})
	return out
}

func (w *docxWriter) signature(p models.BrandProfile) *wParagraph {
	signer := p.SignerName
	if signer == "" {
		signer = p.CompanyName
	}
	return &wParagraph{
		Props: &wParaProps{
			Spacing: &wSpacing{Before: 960},
		},
		Content: []interface{}{textRun(signer, runFormat{bold: true})},
	}
}

func (w *docxWriter) footer(p models.BrandProfile) wFooter {
	gray := runFormat{color: "64748B"}
	content := []interface{}{}
	if name := strings.TrimSpace(p.CompanyName); name != "" {
		content = append(content, textRun(name+"   ", runFormat{bold: true, color: "64748B"}))
	}
	if site := strings.TrimSpace(p.Website); site != "" {
		content = append(content, textRun(site+"   ", gray))
	}
	content = append(content,
		textRun("Page ", gray),
		&wSimpleField{Instr: " PAGE ", Runs: []wRun{*textRun("1", gray)}},
		textRun(" of ", gray),
		&wSimpleField{Instr: " NUMPAGES ", Runs: []wRun{*textRun("1", gray)}},
	)
	return wFooter{
		NSW: nsW,
		NSR: nsR,
		Content: []interface{}{&wParagraph{
			Props:   &wParaProps{Style: &wVal{Val: "Footer"}},
			Content: content,
		}},
	}
}

func (w *docxWriter) numberingXML() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<w:numbering xmlns:w="%s">`, nsW)
	bullets := []string{"•", "◦", "▪"}
	for abs, ordered := range []bool{false, true} {
		fmt.Fprintf(&b, `<w:abstractNum w:abstractNumId="%d"><w:multiLevelType w:val="hybridMultilevel"/>`, abs)
		for lvl := 0; lvl < 3; lvl++ {
			format, text := "bullet", bullets[lvl]
			if ordered {
				format, text = "decimal", fmt.Sprintf("%%%d.", lvl+1)
			}
			fmt.Fprintf(&b, `<w:lvl w:ilvl="%d"><w:start w:val="1"/><w:numFmt w:val="%s"/><w:lvlText w:val="%s"/><w:lvlJc w:val="left"/><w:pPr><w:ind w:left="%d" w:hanging="360"/></w:pPr></w:lvl>`,
				lvl, format, text, 720*(lvl+1))
		}
		b.WriteString(`</w:abstractNum>`)
	}
	for i, ordered := range w.lists {
		abs := 0
		if ordered {
			abs = 1
		}
		fmt.Fprintf(&b, `<w:num w:numId="%d"><w:abstractNumId w:val="%d"/>`, i+1, abs)
		if ordered {
			b.WriteString(`<w:lvlOverride w:ilvl="0"><w:startOverride w:val="1"/></w:lvlOverride>`)
		}
		b.WriteString(`</w:num>`)
	}
	b.WriteString(`</w:numbering>`)
	return b.String()
}

func stylesXML(layout *LetterLayout) string {
	font := xmlEscape(document.FontName(layout.Style.FontFamily))
	size := int(layout.Style.FontSizePt * 2)
	if size <= 0 {
		size = 22
	}
	line := int(layout.Style.LineHeight * 240)
	if line <= 0 {
		line = 360
	}
	color := docxColor(layout.Profile.PrimaryColor)

	var b strings.Builder
	fmt.Fprintf(&b, `<w:styles xmlns:w="%s">`, nsW)
	fmt.Fprintf(&b, `<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/><w:color w:val="1E293B"/><w:sz w:val="%d"/></w:rPr></w:rPrDefault>`, font, font, font, size)
	fmt.Fprintf(&b, `<w:pPrDefault><w:pPr><w:spacing w:before="0" w:after="240" w:line="%d" w:lineRule="auto"/><w:jc w:val="both"/></w:pPr></w:pPrDefault></w:docDefaults>`, line)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	for i, sz := range []int{size * 9 / 4, size * 3 / 2, size * 5 / 4, size, size, size} {
		fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Heading%d"><w:name w:val="heading %d"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:jc w:val="left"/><w:outlineLvl w:val="%d"/></w:pPr><w:rPr><w:b/><w:sz w:val="%d"/></w:rPr></w:style>`,
			i+1, i+1, i, sz)
	}
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="0"/><w:jc w:val="left"/></w:pPr><w:rPr><w:b/><w:color w:val="%s"/><w:sz w:val="56"/></w:rPr></w:style>`, color)
	b.WriteString(`<w:style w:type="paragraph" w:styleId="Subtitle"><w:name w:val="Subtitle"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="0"/><w:jc w:val="left"/></w:pPr><w:rPr><w:i/><w:color w:val="64748B"/></w:rPr></w:style>`)
	b.WriteString(`<w:style w:type="paragraph" w:styleId="Quote"><w:name w:val="Quote"/><w:basedOn w:val="Normal"/><w:pPr><w:pBdr><w:left w:val="single" w:sz="18" w:space="8" w:color="CBD5E1"/></w:pBdr><w:ind w:left="240"/></w:pPr><w:rPr><w:i/></w:rPr></w:style>`)
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Code"><w:name w:val="Code"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="0" w:line="240" w:lineRule="auto"/><w:jc w:val="left"/></w:pPr><w:rPr><w:rFonts w:ascii="Courier New" w:hAnsi="Courier New" w:cs="Courier New"/><w:sz w:val="%d"/></w:rPr></w:style>`, size*7/8)
	b.WriteString(`<w:style w:type="paragraph" w:styleId="Footer"><w:name w:val="footer"/><w:basedOn w:val="Normal"/><w:pPr><w:pBdr><w:top w:val="single" w:sz="4" w:space="8" w:color="E2E8F0"/></w:pBdr><w:spacing w:after="0"/><w:jc w:val="left"/></w:pPr><w:rPr><w:sz w:val="18"/></w:rPr></w:style>`)
	b.WriteString(`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:tblPr><w:tblBorders><w:top w:val="single" w:sz="4" w:space="0" w:color="E2E8F0"/><w:left w:val="single" w:sz="4" w:space="0" w:color="E2E8F0"/><w:bottom w:val="single" w:sz="4" w:space="0" w:color="E2E8F0"/><w:right w:val="single" w:sz="4" w:space="0" w:color="E2E8F0"/><w:insideH w:val="single" w:sz="4" w:space="0" w:color="E2E8F0"/><w:insideV w:val="single" w:sz="4" w:space="0" w:color="E2E8F0"/></w:tblBorders><w:tblCellMar><w:left w:w="120" w:type="dxa"/><w:right w:w="120" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style>`)
	b.WriteString(`</w:styles>`)
	return b.String()
}

func coreXML(title string, now time.Time) string {
	ts := now.UTC().Format(time.RFC3339)
	return fmt.Sprintf(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><dc:title>%s</dc:title><dc:creator>Letterhead</dc:creator><dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created><dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified></cp:coreProperties>`,
		xmlEscape(title), ts, ts)
}

func contentTypes(footer bool) opcTypes {
	t := opcTypes{
		NS: nsTypes,
		Defaults: []opcDefault{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []opcOverride{
			{PartName: "/word/document.xml", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"},
			{PartName: "/word/styles.xml", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"},
			{PartName: "/word/numbering.xml", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"},
			{PartName: "/docProps/core.xml", ContentType: "application/vnd.openxmlformats-package.core-properties+xml"},
		},
	}
	if footer {
		t.Overrides = append(t.Overrides, opcOverride{
			PartName:    "/word/footer1.xml",
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml",
		})
	}
	return t
}

func documentRels(footer bool) opcRelationships {
	rels := opcRelationships{NS: nsPkgRels, Items: []opcRelationship{
		{ID: "rId1", Type: relDoc + "/styles", Target: "styles.xml"},
		{ID: "rId2", Type: relDoc + "/numbering", Target: "numbering.xml"},
	}}
	if footer {
		rels.Items = append(rels.Items, opcRelationship{ID: "rId3", Type: relDoc + "/footer", Target: "footer1.xml"})
	}
	return rels
}

// docxColor converts a CSS hex color to the RRGGBB form Word expects
func docxColor(css string) string {
	if !models.IsValidColor(css) {
		return "0F172A"
	}
	hex := strings.ToUpper(strings.TrimPrefix(css, "#"))
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return hex
}

func xmlEscape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
