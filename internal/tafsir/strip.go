package tafsir

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup converts the raw HTML of a section into plain text. The
// tafsir databases store commentary as h1/h2/p blocks; those blocks are
// collected in order and joined by blank lines. Entity references are
// resolved by the parser, whitespace inside a block is normalized.
//
// Empty input yields empty output; the caller treats that as a section
// to skip, not an error.
func StripMarkup(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "h1", "h2", "p":
				text := collapseSpace(nodeText(n))
				if text != "" {
					blocks = append(blocks, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// Markup without block elements, or bare text: fall back to all
	// visible text
	if len(blocks) == 0 {
		text := collapseSpace(nodeText(doc))
		if text == "" {
			return "", nil
		}
		return text, nil
	}

	return strings.Join(blocks, "\n\n"), nil
}

// nodeText collects the text content beneath a node
func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// collapseSpace normalizes runs of whitespace to single spaces
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
