package docpub

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// generatorName marks documents this tool has already styled. Injection is
// idempotent: a document carrying the marker passes through unchanged, so
// running the injector twice is byte-identical to running it once.
const generatorName = "docpub"

// sanitizeCSS escapes sequences that would let stylesheet content terminate
// the style element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", "<\\/")
}

// hasGeneratorMarker reports whether the document already carries the
// generator meta tag.
func hasGeneratorMarker(doc *html.Node) bool {
	found := false
	walk(doc, func(n *html.Node) bool {
		if found {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta &&
			getAttr(n, "name") == "generator" && getAttr(n, "content") == generatorName {
			found = true
			return false
		}
		return true
	})
	return found
}

func generatorMeta() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Meta,
		Data:     "meta",
		Attr: []html.Attribute{
			{Key: "name", Val: "generator"},
			{Key: "content", Val: generatorName},
		},
	}
}

func parseDocument(src []byte) (*html.Node, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrMalformedHTML)
	}
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHTML, err)
	}
	return doc, nil
}

func renderDocument(doc *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return buf.Bytes(), nil
}

// InjectStylesheetLink attaches the stylesheet as a linked reference, for
// HTML artifacts served next to their CSS file. A document already carrying
// the generator marker is returned unchanged; a link with the same href is
// never duplicated.
func InjectStylesheetLink(src []byte, href string) ([]byte, error) {
	doc, err := parseDocument(src)
	if err != nil {
		return nil, err
	}
	if hasGeneratorMarker(doc) {
		return src, nil
	}

	head := findElement(doc, atom.Head)
	if head == nil {
		return nil, fmt.Errorf("%w: document has no head element", ErrMalformedHTML)
	}

	head.AppendChild(generatorMeta())

	linked := false
	walk(head, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Link &&
			getAttr(n, "rel") == "stylesheet" && getAttr(n, "href") == href {
			linked = true
		}
		return !linked
	})
	if !linked {
		head.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Link,
			Data:     "link",
			Attr: []html.Attribute{
				{Key: "rel", Val: "stylesheet"},
				{Key: "href", Val: href},
			},
		})
	}

	return renderDocument(doc)
}

// inlineStyleClass marks the style element this tool injects, so the check
// below does not trip over style blocks a converter emitted on its own.
const inlineStyleClass = "docpub-style"

// hasInlineStyle reports whether head already carries the injected style
// element.
func hasInlineStyle(head *html.Node) bool {
	found := false
	walk(head, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style &&
			getAttr(n, "class") == inlineStyleClass {
			found = true
		}
		return !found
	})
	return found
}

// InjectInlineCSS embeds the stylesheet as a style element in head, for the
// PDF stage: print renderers do not fetch external resources reliably, so
// the document must carry its CSS. Idempotence keys on the injected style
// element rather than the generator marker: HTML published with a linked
// stylesheet carries the marker but no inline CSS, and rendering that
// artifact to PDF still needs the style block.
func InjectInlineCSS(src []byte, css []byte) ([]byte, error) {
	doc, err := parseDocument(src)
	if err != nil {
		return nil, err
	}

	head := findElement(doc, atom.Head)
	if head == nil {
		return nil, fmt.Errorf("%w: document has no head element", ErrMalformedHTML)
	}
	if hasInlineStyle(head) {
		return src, nil
	}

	if !hasGeneratorMarker(doc) {
		head.AppendChild(generatorMeta())
	}

	style := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Style,
		Data:     "style",
		Attr:     []html.Attribute{{Key: "class", Val: inlineStyleClass}},
	}
	style.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: sanitizeCSS(string(css)),
	})
	head.AppendChild(style)

	return renderDocument(doc)
}
