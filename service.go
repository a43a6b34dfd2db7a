package docpub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/oasis-open/docpub/internal/assets"
	"github.com/oasis-open/docpub/internal/fileutil"
)

// toolUser is implemented by stages backed by an external binary, so tool
// presence can be checked up front instead of failing mid-pipeline. Fakes
// and in-process engines simply do not implement it.
type toolUser interface {
	ToolName() string
}

// Service orchestrates the publishing pipeline for one document at a time.
// Construct with NewService; the zero value is not usable.
type Service struct {
	cfg           serviceConfig
	formatter     Formatter
	htmlConverter HTMLConverter
	pdfConverter  PDFConverter
	lookPath      func(string) (string, error)
	now           func() time.Time
	logSink       io.Writer
	styleName     string
	styleDir      string
	debug         bool
}

// WithStyle selects a named stylesheet instead of the default.
func WithStyle(name string) Option {
	return func(s *Service) { s.styleName = name }
}

// WithStyleDir reads stylesheets from a directory instead of the embedded
// set.
func WithStyleDir(dir string) Option {
	return func(s *Service) { s.styleDir = dir }
}

// WithDebug enables debug-level run log output.
func WithDebug(enabled bool) Option {
	return func(s *Service) { s.debug = enabled }
}

// NewService creates a Service wired to the production tool chain: Prettier
// for formatting, Pandoc for HTML conversion, wkhtmltopdf for PDF rendering.
// Options substitute alternatives.
func NewService(opts ...Option) *Service {
	s := &Service{
		cfg:           serviceConfig{timeout: defaultTimeout},
		formatter:     NewPrettierFormatter(),
		htmlConverter: NewPandocConverter(),
		pdfConverter:  NewWkhtmltopdfConverter(),
		lookPath:      exec.LookPath,
		now:           time.Now,
		styleName:     assets.DefaultStyle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases converter resources. Call when the Service is no longer
// needed; relevant for the headless-Chrome PDF engine.
func (s *Service) Close() error {
	if s.pdfConverter != nil {
		return s.pdfConverter.Close()
	}
	return nil
}

// exitCodeOf maps a pipeline error to the exit code a CI caller sees: the
// failing subprocess's own code when there is one, 1 otherwise.
func exitCodeOf(err error) int {
	var convErr *ConversionError
	if errors.As(err, &convErr) && convErr.ExitCode > 0 {
		return convErr.ExitCode
	}
	return 1
}

// Run executes the pipeline for one job, walking validating, input
// resolution, optional formatting, conversion, and post-processing, with
// failure terminal from any stage. The returned Result carries the exit
// code and the accumulated run log; the error preserves the sentinel chain
// for errors.Is dispatch.
//
// The run log is appended to the target directory whenever that directory
// exists, on success and failure alike.
func (s *Service) Run(ctx context.Context, job Job) (Result, error) {
	log := NewRunLog(s.now, s.logSink, s.debug)
	result, err := s.run(ctx, job, log)
	result.Log = log.Lines()
	if fileutil.DirExists(job.TargetDir) {
		if appendErr := log.Append(job.TargetDir); appendErr != nil && err == nil {
			log.Warnf("run log not written: %v", appendErr)
		}
	}
	return result, err
}

func (s *Service) run(ctx context.Context, job Job, log *RunLog) (Result, error) {
	fail := func(stage Stage, err error) (Result, error) {
		log.Errorf("%s failed: %v", stage, err)
		return Result{ExitCode: exitCodeOf(err)}, err
	}

	log.Infof("job %s starting for %s", job.ID, job.SourceDir)

	// Validating: everything that can be rejected without touching a
	// subprocess is rejected here.
	log.Debugf("stage %s", StageValidating)
	if err := job.Validate(s.now()); err != nil {
		return fail(StageValidating, err)
	}
	if err := s.checkTools(job.Stages); err != nil {
		return fail(StageValidating, err)
	}

	// Resolving input.
	log.Debugf("stage %s", StageResolving)
	ext := ".md"
	if !job.Stages.Format && !job.Stages.HTML {
		ext = ".html"
	}
	srcPath, err := ResolveSource(job.SourceDir, ext, log.Warnf)
	if err != nil {
		return fail(StageResolving, err)
	}
	log.Infof("source resolved to %s", srcPath)

	// Formatting, when enabled.
	if job.Stages.Format {
		log.Debugf("stage %s", StageFormatting)
		if err := s.withDeadline(ctx, func(ctx context.Context) error {
			return s.formatter.Format(ctx, srcPath)
		}); err != nil {
			return fail(StageFormatting, err)
		}
		log.Infof("formatted %s", srcPath)
	}

	meta, err := s.documentMeta(job, srcPath, ext)
	if err != nil {
		return fail(StageConverting, err)
	}

	css, err := s.loadStyle()
	if err != nil {
		return fail(StageConverting, err)
	}

	var processed []byte
	switch {
	case job.Stages.HTML:
		processed, err = s.convertToHTML(ctx, job, srcPath, meta, css, log)
		if err != nil {
			return fail(StageConverting, err)
		}
	case job.Stages.PDF:
		// PDF-only runs start from an existing HTML source.
		raw, readErr := os.ReadFile(srcPath) // #nosec G304 -- path resolved and sanitized upstream
		if readErr != nil {
			return fail(StagePostProcessing, fmt.Errorf("reading %s: %w", srcPath, readErr))
		}
		processed, err = s.postProcess(raw, job, meta)
		if err != nil {
			return fail(StagePostProcessing, err)
		}
	}

	if job.Stages.PDF {
		log.Debugf("stage %s", StagePostProcessing)
		pdfPath := filepath.Join(job.TargetDir, artifactBase(srcPath)+".pdf")
		if err := s.convertToPDF(ctx, processed, css, pdfPath); err != nil {
			return fail(StagePostProcessing, err)
		}
		log.Infof("wrote %s", pdfPath)
	}

	log.Infof("job %s done", job.ID)
	return Result{ExitCode: 0}, nil
}

// checkTools verifies the external binaries the enabled stages need are on
// PATH before any work starts.
func (s *Service) checkTools(stages Stages) error {
	var deps []any
	if stages.Format {
		deps = append(deps, s.formatter)
	}
	if stages.HTML {
		deps = append(deps, s.htmlConverter)
	}
	if stages.PDF {
		deps = append(deps, s.pdfConverter)
	}
	for _, dep := range deps {
		tu, ok := dep.(toolUser)
		if !ok {
			continue
		}
		if _, err := s.lookPath(tu.ToolName()); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingTool, tu.ToolName())
		}
	}
	return nil
}

// withDeadline bounds one subprocess invocation.
func (s *Service) withDeadline(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()
	return fn(ctx)
}

// documentMeta merges job overrides with metadata extracted from a Markdown
// source. HTML-only inputs carry no extractable metadata; the overrides and
// placeholders stand.
func (s *Service) documentMeta(job Job, srcPath, ext string) (DocumentMeta, error) {
	meta := DocumentMeta{
		Title:       job.Title,
		Description: job.Description,
		ModifyDate:  job.ModifyDate,
	}
	if ext != ".md" {
		if meta.Title == "" {
			meta.Title = "-"
		}
		if meta.Description == "" {
			meta.Description = "-"
		}
		return meta, nil
	}

	raw, err := os.ReadFile(srcPath) // #nosec G304 -- path resolved and sanitized upstream
	if err != nil {
		return meta, fmt.Errorf("reading %s: %w", srcPath, err)
	}
	markdown := string(raw)
	if meta.Title == "" {
		meta.Title = ExtractTitle(markdown)
	}
	if meta.Description == "" {
		meta.Description = ExtractDescription(markdown)
	}
	return meta, nil
}

// loadStyle reads the configured stylesheet, embedded or from an override
// directory.
func (s *Service) loadStyle() (string, error) {
	resolver, err := assets.NewResolver(s.styleDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	name := s.styleName
	if name == "" {
		name = assets.DefaultStyle
	}
	css, err := resolver.LoadStyle(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return css, nil
}

// artifactBase derives the output artifact base name from the source file.
func artifactBase(srcPath string) string {
	name := filepath.Base(srcPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// styleHref is the stylesheet reference written into published HTML,
// relative to the artifact.
func (s *Service) styleHref() string {
	name := s.styleName
	if name == "" {
		name = assets.DefaultStyle
	}
	return "styles/" + name + ".css"
}

func (s *Service) postProcess(raw []byte, job Job, meta DocumentMeta) ([]byte, error) {
	return PostProcess(raw, PostProcessOptions{
		SourceDir:   job.SourceDir,
		TargetDir:   job.TargetDir,
		Description: meta.Description,
		ModifyDate:  meta.ModifyDate,
		PageBreaks:  job.Stages.PDF,
		TOC:         true,
		Logo:        true,
	})
}

// convertToHTML runs the Markdown converter into a temp file, post-processes
// the result, and atomically publishes the HTML artifact plus its linked
// stylesheet. The post-processed bytes are returned for a following PDF
// stage.
func (s *Service) convertToHTML(ctx context.Context, job Job, srcPath string, meta DocumentMeta, css string, log *RunLog) ([]byte, error) {
	log.Debugf("stage %s", StageConverting)

	tmpPath, cleanup, err := fileutil.WriteTempFile("", "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	opts := HTMLOptions{CSSHref: s.styleHref()}
	if meta.Title != "" && meta.Title != "-" {
		opts.Title = meta.Title
	}
	if err := s.withDeadline(ctx, func(ctx context.Context) error {
		return s.htmlConverter.ToHTML(ctx, srcPath, tmpPath, opts)
	}); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(tmpPath) // #nosec G304 -- temp file created above
	if err != nil {
		return nil, fmt.Errorf("reading converter output: %w", err)
	}

	processed, err := s.postProcess(raw, job, meta)
	if err != nil {
		return nil, err
	}

	linked, err := InjectStylesheetLink(processed, s.styleHref())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(job.TargetDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	cssPath := filepath.Join(job.TargetDir, filepath.FromSlash(s.styleHref()))
	if err := os.MkdirAll(filepath.Dir(cssPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := fileutil.AtomicWrite(cssPath, []byte(css), 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	htmlPath := filepath.Join(job.TargetDir, artifactBase(srcPath)+".html")
	if err := fileutil.AtomicWrite(htmlPath, linked, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	log.Infof("wrote %s", htmlPath)
	return processed, nil
}

// convertToPDF inlines the stylesheet into the processed HTML, stages it in
// a temp file, and renders the PDF next to the other artifacts.
func (s *Service) convertToPDF(ctx context.Context, processed []byte, css string, pdfPath string) error {
	inlined, err := InjectInlineCSS(processed, []byte(css))
	if err != nil {
		return err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(string(inlined), "html")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := os.MkdirAll(filepath.Dir(pdfPath), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return s.withDeadline(ctx, func(ctx context.Context) error {
		return s.pdfConverter.ToPDF(ctx, tmpPath, pdfPath)
	})
}
