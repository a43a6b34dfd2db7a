package docpub

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// HTMLOptions parameterizes a Markdown-to-HTML conversion.
type HTMLOptions struct {
	Title   string // Document title for the HTML head
	CSSHref string // Linked stylesheet reference (pandoc -c contract)
}

// HTMLConverter abstracts Markdown to HTML conversion to allow different
// backends: the Pandoc CLI in production, a pure-Go engine where Pandoc is
// unavailable, and fakes in tests.
type HTMLConverter interface {
	ToHTML(ctx context.Context, srcPath, outPath string, opts HTMLOptions) error
}

// pandocFormat enables the Markdown extensions the authoring convention
// relies on: bare URLs become links and single newlines become hard breaks.
const pandocFormat = "markdown+autolink_bare_uris+hard_line_breaks"

// PandocConverter converts Markdown to HTML by invoking the Pandoc CLI.
type PandocConverter struct {
	Runner CommandRunner
}

// NewPandocConverter creates a PandocConverter with a real command runner.
func NewPandocConverter() *PandocConverter {
	return &PandocConverter{Runner: &ExecRunner{}}
}

// ToHTML converts the Markdown file at srcPath into a standalone HTML5
// document at outPath. A nonzero Pandoc exit is terminal for the job and
// surfaces as a ConversionError carrying captured stderr.
func (c *PandocConverter) ToHTML(ctx context.Context, srcPath, outPath string, opts HTMLOptions) error {
	args := []string{srcPath, "-f", pandocFormat, "-t", "html5", "-s", "-o", outPath}
	if opts.CSSHref != "" {
		args = append(args, "-c", opts.CSSHref)
	}
	if opts.Title != "" {
		args = append(args, "--metadata", "title="+opts.Title)
	}

	_, stderr, err := c.Runner.Run(ctx, "pandoc", args...)
	return wrapRunError(ctx, "pandoc", StageConverting, stderr, err)
}

// ToolName names the external binary this converter depends on.
func (c *PandocConverter) ToolName() string { return "pandoc" }

// builtinTemplate wraps goldmark's fragment output in a complete HTML5
// document, mirroring pandoc's --standalone layout closely enough for the
// post-processor to treat both engines identically.
const builtinTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
%s</head>
<body>
%s</body>
</html>
`

// GoldmarkConverter converts Markdown to HTML in-process using goldmark.
// It exists for environments without a Pandoc installation; output follows
// the same standalone-document contract as PandocConverter.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and
// syntax highlighting.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes instead of inline styles
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // Heading IDs for TOC anchors
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(), // Treat newlines as <br>, matching pandoc hard_line_breaks
			goldmarkhtml.WithXHTML(),
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts the Markdown file at srcPath to a standalone HTML5
// document at outPath.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, srcPath, outPath string, opts HTMLOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source, err := os.ReadFile(srcPath) // #nosec G304 -- path resolved and sanitized upstream
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}

	var buf bytes.Buffer
	if err := c.md.Convert(source, &buf); err != nil {
		return fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	title := opts.Title
	if title == "" {
		title = "-"
	}
	var head string
	if opts.CSSHref != "" {
		head = fmt.Sprintf("<link rel=\"stylesheet\" href=%q />\n", opts.CSSHref)
	}

	doc := fmt.Sprintf(builtinTemplate, html.EscapeString(title), head, buf.String())
	if err := os.WriteFile(outPath, []byte(doc), 0o644); err != nil { // #nosec G306 -- HTML output is meant to be readable
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}
