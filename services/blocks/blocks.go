// Package blocks cuts a letter body into the top-level fragments that the
// paginator places on pages.
package blocks

import (
	"bytes"
	"fmt"
	"strings"

	"letterhead/services/pagination"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags are elements that start their own block when found at the top level
var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "blockquote": true, "table": true, "img": true,
	"div": true, "pre": true, "hr": true, "figure": true, "section": true,
}

// SplitIntoBlocks parses a body fragment and returns one RawBlock per top-level
// block element, in document order. Runs of loose text and inline elements
// between blocks are wrapped in a <p>; whitespace-only runs and comments are
// dropped. IDs are sequential (blk-0001, blk-0002, ...) so the same body always
// yields the same IDs.
func SplitIntoBlocks(body string) ([]pagination.RawBlock, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(body), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse letter body: %w", err)
	}

	var out []pagination.RawBlock
	var pending *html.Node

	emit := func(n *html.Node) error {
		var buf bytes.Buffer
		if err := html.Render(&buf, n); err != nil {
			return fmt.Errorf("failed to render block: %w", err)
		}
		out = append(out, pagination.RawBlock{
			ID:     fmt.Sprintf("blk-%04d", len(out)+1),
			Tag:    n.Data,
			Markup: buf.String(),
		})
		return nil
	}
	flush := func() error {
		if pending == nil {
			return nil
		}
		p := pending
		pending = nil
		if strings.TrimSpace(TextContent(p)) == "" && !hasElement(p) {
			return nil
		}
		return emit(p)
	}

	for _, n := range nodes {
		switch {
		case n.Type == html.CommentNode:
			continue
		case n.Type == html.ElementNode && blockTags[n.Data]:
			if err := flush(); err != nil {
				return nil, err
			}
			if err := emit(n); err != nil {
				return nil, err
			}
		case n.Type == html.TextNode || n.Type == html.ElementNode:
			if pending == nil {
				if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
					continue
				}
				pending = &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
			}
			pending.AppendChild(n)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// TextContent returns the concatenated text of n and its descendants
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func hasElement(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// ParseBlock parses a single block's markup and returns its root element.
// Markup without an element (bare text) is returned wrapped in a <p>.
func ParseBlock(markup string) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse block: %w", err)
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n, nil
		}
	}
	p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
	for _, n := range nodes {
		if n.Type == html.TextNode {
			p.AppendChild(n)
		}
	}
	return p, nil
}

// Attr returns the value of the named attribute, or ""
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
