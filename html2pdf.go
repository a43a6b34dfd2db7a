package docpub

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/oasis-open/docpub/internal/fileutil"
)

// PDFConverter abstracts HTML to PDF conversion to allow different backends.
type PDFConverter interface {
	ToPDF(ctx context.Context, htmlPath, pdfPath string) error
	Close() error
}

// Compile-time interface checks.
var (
	_ PDFConverter = (*WkhtmltopdfConverter)(nil)
	_ PDFConverter = (*RodConverter)(nil)
)

// DefaultMarginMM is the page margin applied to all sides when none is
// configured.
const DefaultMarginMM = 20.0

// WkhtmltopdfConverter converts HTML to PDF by invoking the wkhtmltopdf CLI.
type WkhtmltopdfConverter struct {
	Runner   CommandRunner
	MarginMM float64 // All four sides; 0 means DefaultMarginMM
	Footer   string  // Footer template; wkhtmltopdf expands [page]/[topage]
}

// NewWkhtmltopdfConverter creates a WkhtmltopdfConverter with a real command
// runner and default page geometry.
func NewWkhtmltopdfConverter() *WkhtmltopdfConverter {
	return &WkhtmltopdfConverter{
		Runner: &ExecRunner{},
		Footer: "Page [page] of [topage]",
	}
}

// ToPDF renders the HTML file at htmlPath to pdfPath. The HTML must carry
// its CSS inline: the print renderer does not fetch external resources
// reliably, so linked stylesheets are inlined by post-processing before this
// stage runs. Page breaks are driven by the explicit page-break elements the
// post-processor emits for each horizontal-rule marker.
func (c *WkhtmltopdfConverter) ToPDF(ctx context.Context, htmlPath, pdfPath string) error {
	margin := c.MarginMM
	if margin <= 0 {
		margin = DefaultMarginMM
	}
	mm := strconv.FormatFloat(margin, 'f', -1, 64) + "mm"

	args := []string{
		"--enable-local-file-access",
		"--encoding", "utf-8",
		"--print-media-type",
		"--margin-top", mm,
		"--margin-bottom", mm,
		"--margin-left", mm,
		"--margin-right", mm,
	}
	if c.Footer != "" {
		args = append(args,
			"--footer-center", c.Footer,
			"--footer-font-size", "8",
			"--footer-spacing", "5",
		)
	}
	args = append(args, htmlPath, pdfPath)

	_, stderr, err := c.Runner.Run(ctx, "wkhtmltopdf", args...)
	return wrapRunError(ctx, "wkhtmltopdf", StagePostProcessing, stderr, err)
}

// Close is a no-op; wkhtmltopdf holds no persistent resources.
func (c *WkhtmltopdfConverter) Close() error { return nil }

// ToolName names the external binary this converter depends on.
func (c *WkhtmltopdfConverter) ToolName() string { return "wkhtmltopdf" }

// PDF page margins in inches for the Chrome engine.
const mmPerInch = 25.4

// RodConverter converts HTML to PDF using headless Chrome via go-rod, for
// environments without a wkhtmltopdf installation. Rod downloads Chromium on
// first run if no browser is found.
type RodConverter struct {
	browser  *rod.Browser
	timeout  time.Duration
	MarginMM float64
}

// NewRodConverter creates a RodConverter with the given page-load timeout.
func NewRodConverter(timeout time.Duration) *RodConverter {
	return &RodConverter{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (c *RodConverter) ensureBrowser() error {
	if c.browser != nil {
		return nil
	}

	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: chrome: %v", ErrMissingTool, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: chrome: %v", ErrMissingTool, err)
	}
	c.browser = browser
	return nil
}

// ToPDF opens the local HTML file in headless Chrome and renders it to
// pdfPath. Chrome honors the same page-break CSS the wkhtmltopdf path uses.
func (c *RodConverter) ToPDF(ctx context.Context, htmlPath, pdfPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.ensureBrowser(); err != nil {
		return err
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{URL: "file://" + htmlPath})
	if err != nil {
		return &ConversionError{Tool: "chrome", Stage: StagePostProcessing, ExitCode: 1, Stderr: err.Error()}
	}
	defer page.Close()

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return fmt.Errorf("%w: chrome during %s", ErrConversionTimeout, StagePostProcessing)
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return fmt.Errorf("%w: chrome during %s", ErrConversionTimeout, StagePostProcessing)
	}

	margin := c.MarginMM
	if margin <= 0 {
		margin = DefaultMarginMM
	}
	marginInches := margin / mmPerInch

	reader, err := page.PDF(&proto.PagePrintToPDF{
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return &ConversionError{Tool: "chrome", Stage: StagePostProcessing, ExitCode: 1, Stderr: err.Error()}
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return &ConversionError{Tool: "chrome", Stage: StagePostProcessing, ExitCode: 1, Stderr: err.Error()}
	}

	if err := fileutil.AtomicWrite(pdfPath, pdfBuf, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// Close releases browser resources.
func (c *RodConverter) Close() error {
	if c.browser != nil {
		err := c.browser.Close()
		c.browser = nil
		return err
	}
	return nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
