package docpub

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PostProcessOptions parameterizes the DOM rewriting applied to converter
// output before it is written to the target directory.
type PostProcessOptions struct {
	SourceDir   string // Directory the Markdown source lived in
	TargetDir   string // Directory the HTML is published to
	Description string // Populates <meta name="description">; "-" or "" skips
	ModifyDate  string // Populates <meta name="last-modified">; "-" or "" skips
	PageBreaks  bool   // Replace hr markers with explicit page-break elements
	TOC         bool   // Insert a table-of-contents nav at the top of body
	Logo        bool   // Insert the organization logo at the top of body
	LogoURL     string // Logo image source; empty means DefaultLogoURL
}

// DefaultLogoURL is the organization logo injected into published pages.
const DefaultLogoURL = "https://docs.oasis-open.org/templates/OASISLogo-v3.0.png"

const logoClass = "oasis-logo"

// tocID is the id of the generated table-of-contents nav. The stylesheet
// targets it directly.
const tocID = "table-of-contents"

// bareURLPattern matches unlinked http(s) URLs in prose. Trailing sentence
// punctuation is excluded so "see https://example.org." links cleanly.
var bareURLPattern = regexp.MustCompile(`https?://[^\s<>"']+[^\s<>"'.,;:!?)\]]`)

// PostProcess parses the converter's HTML output, applies the rewrite passes
// in a fixed order, and returns the serialized document. Input that is not
// valid UTF-8 or that the parser rejects yields ErrMalformedHTML.
//
// Pass order is load-bearing: path rewriting must see original attribute
// values, heading ids must exist before the TOC is built, and script
// stripping must run before autolinking adds new anchors.
func PostProcess(src []byte, opts PostProcessOptions) ([]byte, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrMalformedHTML)
	}

	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHTML, err)
	}

	rewriteAssetPaths(doc, opts.SourceDir, opts.TargetDir)
	normalizeHeadings(doc)
	stripScripts(doc)
	if opts.PageBreaks {
		markPageBreaks(doc)
	}
	autolinkBareURLs(doc)
	if opts.TOC {
		insertTOC(doc)
	}
	if opts.Logo {
		logoURL := opts.LogoURL
		if logoURL == "" {
			logoURL = DefaultLogoURL
		}
		insertLogo(doc, logoURL)
	}
	if desc := strings.TrimSpace(opts.Description); desc != "" && desc != "-" {
		setHeadMeta(doc, "description", desc)
	}
	if date := strings.TrimSpace(opts.ModifyDate); date != "" && date != "-" {
		setHeadMeta(doc, "last-modified", date)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return buf.Bytes(), nil
}

// walk applies fn to every node in document order. fn returning false prunes
// the node's subtree.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// isRelativeLocal reports whether ref is a relative filesystem reference
// rather than an absolute URL, an absolute path, or a fragment.
func isRelativeLocal(ref string) bool {
	if ref == "" {
		return false
	}
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") {
		return false
	}
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "mailto:") || strings.HasPrefix(ref, "data:") {
		return false
	}
	return true
}

// rewriteAssetPaths adjusts relative img src and a href values so they
// resolve from the target directory instead of the source directory.
// A no-op when the two directories coincide.
func rewriteAssetPaths(doc *html.Node, sourceDir, targetDir string) {
	if sourceDir == "" || targetDir == "" || sourceDir == targetDir {
		return
	}
	rel, err := filepath.Rel(targetDir, sourceDir)
	if err != nil || rel == "." {
		return
	}
	prefix := filepath.ToSlash(rel) + "/"

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		var attr string
		switch n.DataAtom {
		case atom.Img:
			attr = "src"
		case atom.A:
			attr = "href"
		default:
			return true
		}
		for i, a := range n.Attr {
			if a.Key == attr && isRelativeLocal(a.Val) {
				n.Attr[i].Val = prefix + a.Val
			}
		}
		return true
	})
}

// slugPattern keeps only characters allowed in generated heading ids.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns heading text into a URL fragment identifier.
func slugify(text string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(s, "-")
}

// headingLevel returns 1..4 for h1-h4 elements, 0 otherwise. The h6
// citation convention and the h1big/h1gray cover-title pseudo-tags are
// deliberately outside this range so no pass rewrites them.
func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	}
	return 0
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return strings.TrimSpace(sb.String())
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// normalizeHeadings assigns slugified ids to h1-h4 elements that lack one,
// deduplicating with numeric suffixes. Levels are never changed; h6 and the
// cover-title pseudo-tags keep whatever attributes the author gave them.
func normalizeHeadings(doc *html.Node) {
	seen := make(map[string]int)
	walk(doc, func(n *html.Node) bool {
		if headingLevel(n) == 0 {
			return true
		}
		if existing := getAttr(n, "id"); existing != "" {
			seen[existing]++
			return true
		}
		slug := slugify(textContent(n))
		if slug == "" {
			slug = "section"
		}
		if count := seen[slug]; count > 0 {
			seen[slug] = count + 1
			slug = fmt.Sprintf("%s-%d", slug, count)
		} else {
			seen[slug] = 1
		}
		n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: slug})
		return true
	})
}

// stripScripts removes script elements, inline event handlers, and
// javascript: URLs. Published documents are static; anything executable in
// converter output is either author error or injection.
func stripScripts(doc *html.Node) {
	var scripts []*html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if n.DataAtom == atom.Script {
			scripts = append(scripts, n)
			return false
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if strings.HasPrefix(strings.ToLower(a.Key), "on") {
				continue
			}
			if (a.Key == "href" || a.Key == "src") &&
				strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
		return true
	})
	for _, s := range scripts {
		s.Parent.RemoveChild(s)
	}
}

// markPageBreaks replaces each hr marker with one explicit page-break
// element at the same position. The stylesheet maps the class to
// page-break-after for print renderers.
func markPageBreaks(doc *html.Node) {
	var rules []*html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Hr {
			rules = append(rules, n)
			return false
		}
		return true
	})
	for _, hr := range rules {
		div := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Div,
			Data:     "div",
			Attr:     []html.Attribute{{Key: "class", Val: "page-break"}},
		}
		hr.Parent.InsertBefore(div, hr)
		hr.Parent.RemoveChild(hr)
	}
}

// noAutolink marks elements whose text must not be rewritten into anchors.
// Head is excluded wholesale: an anchor inside title or meta is invalid
// markup.
func noAutolink(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Head, atom.A, atom.Code, atom.Pre, atom.Script, atom.Style, atom.Textarea:
		return true
	}
	return false
}

// autolinkBareURLs wraps unlinked http(s) URLs in prose text with anchor
// elements. Text inside existing links and code blocks is left alone.
func autolinkBareURLs(doc *html.Node) {
	var texts []*html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && noAutolink(n) {
			return false
		}
		if n.Type == html.TextNode && bareURLPattern.MatchString(n.Data) {
			texts = append(texts, n)
		}
		return true
	})

	for _, t := range texts {
		parent := t.Parent
		if parent == nil {
			continue
		}
		data := t.Data
		next := t.NextSibling
		parent.RemoveChild(t)

		last := 0
		for _, loc := range bareURLPattern.FindAllStringIndex(data, -1) {
			if loc[0] > last {
				parent.InsertBefore(&html.Node{Type: html.TextNode, Data: data[last:loc[0]]}, next)
			}
			url := data[loc[0]:loc[1]]
			a := &html.Node{
				Type:     html.ElementNode,
				DataAtom: atom.A,
				Data:     "a",
				Attr:     []html.Attribute{{Key: "href", Val: url}},
			}
			a.AppendChild(&html.Node{Type: html.TextNode, Data: url})
			parent.InsertBefore(a, next)
			last = loc[1]
		}
		if last < len(data) {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: data[last:]}, next)
		}
	}
}

// findElement returns the first element matching a in document order.
func findElement(doc *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return false
		}
		return true
	})
	return found
}

// insertTOC builds a nav listing the document's h1-h4 headings and inserts
// it at the top of body. Headings inside the nav itself are excluded, so the
// pass is idempotent across re-runs. A document with no headings gets no nav.
func insertTOC(doc *html.Node) {
	body := findElement(doc, atom.Body)
	if body == nil {
		return
	}

	// Drop a previously generated nav before rebuilding.
	var stale []*html.Node
	walk(body, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Nav && getAttr(n, "id") == tocID {
			stale = append(stale, n)
			return false
		}
		return true
	})
	for _, n := range stale {
		n.Parent.RemoveChild(n)
	}

	type entry struct {
		level int
		id    string
		text  string
	}
	var entries []entry
	walk(body, func(n *html.Node) bool {
		if lvl := headingLevel(n); lvl > 0 {
			if id := getAttr(n, "id"); id != "" {
				entries = append(entries, entry{level: lvl, id: id, text: textContent(n)})
			}
			return false
		}
		return true
	})
	if len(entries) == 0 {
		return
	}

	nav := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Nav,
		Data:     "nav",
		Attr:     []html.Attribute{{Key: "id", Val: tocID}},
	}
	ul := &html.Node{Type: html.ElementNode, DataAtom: atom.Ul, Data: "ul"}
	nav.AppendChild(ul)
	for _, e := range entries {
		li := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Li,
			Data:     "li",
			Attr:     []html.Attribute{{Key: "class", Val: fmt.Sprintf("toc-level-%d", e.level)}},
		}
		a := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.A,
			Data:     "a",
			Attr:     []html.Attribute{{Key: "href", Val: "#" + e.id}},
		}
		a.AppendChild(&html.Node{Type: html.TextNode, Data: e.text})
		li.AppendChild(a)
		ul.AppendChild(li)
	}
	body.InsertBefore(nav, body.FirstChild)
}

// insertLogo places the organization logo image at the top of body unless
// one is already present.
func insertLogo(doc *html.Node, logoURL string) {
	body := findElement(doc, atom.Body)
	if body == nil {
		return
	}

	present := false
	walk(body, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img &&
			strings.Contains(getAttr(n, "class"), logoClass) {
			present = true
		}
		return !present
	})
	if present {
		return
	}

	img := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Img,
		Data:     "img",
		Attr: []html.Attribute{
			{Key: "src", Val: logoURL},
			{Key: "alt", Val: "OASIS Logo"},
			{Key: "class", Val: logoClass},
		},
	}
	body.InsertBefore(img, body.FirstChild)
}

// setHeadMeta sets (or replaces) a named meta element in head.
func setHeadMeta(doc *html.Node, name, content string) {
	head := findElement(doc, atom.Head)
	if head == nil {
		return
	}
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Meta && getAttr(c, "name") == name {
			for i, a := range c.Attr {
				if a.Key == "content" {
					c.Attr[i].Val = content
					return
				}
			}
			c.Attr = append(c.Attr, html.Attribute{Key: "content", Val: content})
			return
		}
	}
	meta := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Meta,
		Data:     "meta",
		Attr: []html.Attribute{
			{Key: "name", Val: name},
			{Key: "content", Val: content},
		},
	}
	head.AppendChild(meta)
}
