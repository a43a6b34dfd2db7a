package docpub

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const injectFixture = `<html><head><title>Doc</title></head><body><p>text</p></body></html>`

func TestInjectStylesheetLink(t *testing.T) {
	t.Parallel()

	out, err := InjectStylesheetLink([]byte(injectFixture), "styles/markdown-styles-v1.8.1.css")
	if err != nil {
		t.Fatalf("InjectStylesheetLink() error = %v", err)
	}
	got := string(out)

	if !strings.Contains(got, `<link rel="stylesheet" href="styles/markdown-styles-v1.8.1.css"`) {
		t.Errorf("stylesheet link missing:\n%s", got)
	}
	if !strings.Contains(got, `<meta name="generator" content="docpub"`) {
		t.Errorf("generator marker missing:\n%s", got)
	}
}

func TestInjectStylesheetLinkIdempotent(t *testing.T) {
	t.Parallel()

	once, err := InjectStylesheetLink([]byte(injectFixture), "s.css")
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	twice, err := InjectStylesheetLink(once, "s.css")
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if !bytes.Equal(once, twice) {
		t.Errorf("second run not byte-identical:\nfirst:\n%s\nsecond:\n%s", once, twice)
	}
	if n := strings.Count(string(twice), `rel="stylesheet"`); n != 1 {
		t.Errorf("stylesheet link count = %d, want 1", n)
	}
}

func TestInjectStylesheetLinkExistingSameHref(t *testing.T) {
	t.Parallel()

	src := `<html><head><link rel="stylesheet" href="s.css"></head><body></body></html>`
	out, err := InjectStylesheetLink([]byte(src), "s.css")
	if err != nil {
		t.Fatalf("InjectStylesheetLink() error = %v", err)
	}
	if n := strings.Count(string(out), `href="s.css"`); n != 1 {
		t.Errorf("same-href link duplicated:\n%s", out)
	}
}

func TestInjectInlineCSS(t *testing.T) {
	t.Parallel()

	css := []byte("body { margin: 0; }\n.page-break { page-break-after: always; }")
	out, err := InjectInlineCSS([]byte(injectFixture), css)
	if err != nil {
		t.Fatalf("InjectInlineCSS() error = %v", err)
	}
	got := string(out)

	if !strings.Contains(got, "page-break-after: always") {
		t.Errorf("inline CSS missing:\n%s", got)
	}
	if !strings.Contains(got, `<meta name="generator" content="docpub"`) {
		t.Errorf("generator marker missing:\n%s", got)
	}
}

func TestInjectInlineCSSIdempotent(t *testing.T) {
	t.Parallel()

	once, err := InjectInlineCSS([]byte(injectFixture), []byte("body{}"))
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	twice, err := InjectInlineCSS(once, []byte("body{}"))
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if !bytes.Equal(once, twice) {
		t.Errorf("second run not byte-identical")
	}
	if n := strings.Count(string(twice), "<style"); n != 1 {
		t.Errorf("style element count = %d, want 1", n)
	}
}

func TestInjectInlineCSSAfterStylesheetLink(t *testing.T) {
	t.Parallel()

	// Published HTML carries the generator marker and a linked stylesheet
	// but no inline CSS; rendering that artifact to PDF must still get a
	// style block.
	linked, err := InjectStylesheetLink([]byte(injectFixture), "styles/s.css")
	if err != nil {
		t.Fatalf("InjectStylesheetLink() error = %v", err)
	}

	inlined, err := InjectInlineCSS(linked, []byte(".page-break { page-break-after: always; }"))
	if err != nil {
		t.Fatalf("InjectInlineCSS() error = %v", err)
	}
	got := string(inlined)

	if !strings.Contains(got, "<style") || !strings.Contains(got, "page-break-after: always") {
		t.Fatalf("no inline CSS injected into link-styled document:\n%s", got)
	}
	if n := strings.Count(got, `content="docpub"`); n != 1 {
		t.Errorf("generator marker count = %d, want 1", n)
	}
}

func TestInjectInlineCSSKeepsConverterStyle(t *testing.T) {
	t.Parallel()

	// A converter-emitted style block does not satisfy the injection; only
	// the tool's own style element does.
	src := `<html><head><style>code{color:red}</style></head><body></body></html>`
	out, err := InjectInlineCSS([]byte(src), []byte("body{margin:0}"))
	if err != nil {
		t.Fatalf("InjectInlineCSS() error = %v", err)
	}
	got := string(out)

	if !strings.Contains(got, "body{margin:0}") {
		t.Errorf("stylesheet not injected alongside converter style:\n%s", got)
	}
	if !strings.Contains(got, "code{color:red}") {
		t.Errorf("converter style lost:\n%s", got)
	}
}

func TestInjectInlineCSSSanitizesBreakout(t *testing.T) {
	t.Parallel()

	out, err := InjectInlineCSS([]byte(injectFixture), []byte(`p::before { content: "</style><script>x()"; }`))
	if err != nil {
		t.Fatalf("InjectInlineCSS() error = %v", err)
	}
	if strings.Contains(string(out), "</style><script>") {
		t.Errorf("style breakout not sanitized:\n%s", out)
	}
}

func TestInjectRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := InjectStylesheetLink([]byte{0xff, 0xfe}, "s.css"); !errors.Is(err, ErrMalformedHTML) {
		t.Errorf("InjectStylesheetLink() error = %v, want ErrMalformedHTML", err)
	}
	if _, err := InjectInlineCSS([]byte{0xff, 0xfe}, nil); !errors.Is(err, ErrMalformedHTML) {
		t.Errorf("InjectInlineCSS() error = %v, want ErrMalformedHTML", err)
	}
}
