package docpub

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oasis-open/docpub/internal/dateutil"
	"github.com/oasis-open/docpub/internal/fileutil"
)

// Stage identifies a pipeline state for logging and error context.
type Stage string

// Pipeline states, in execution order. FAILED is terminal and reachable
// from any non-terminal state.
const (
	StageValidating     Stage = "validating"
	StageResolving      Stage = "resolving-input"
	StageFormatting     Stage = "formatting"
	StageConverting     Stage = "converting"
	StagePostProcessing Stage = "post-processing"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// Operation mode names accepted from the environment.
const (
	ModeFormat  = "format"
	ModeConvert = "convert"
	ModeBoth    = "both"
)

// Stages toggles the independently runnable steps within a job.
type Stages struct {
	Format bool // Run the Markdown formatter
	HTML   bool // Convert Markdown to HTML
	PDF    bool // Convert HTML to PDF
}

// ParseMode maps an operation-mode name to stage toggles.
// "format" runs the formatter only, "convert" the HTML conversion only,
// "both" runs formatter and HTML conversion.
func ParseMode(mode string) (Stages, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeFormat:
		return Stages{Format: true}, nil
	case ModeConvert:
		return Stages{HTML: true}, nil
	case ModeBoth, "":
		return Stages{Format: true, HTML: true}, nil
	default:
		return Stages{}, fmt.Errorf("%w: unknown operation mode %q", ErrConfigInvalid, mode)
	}
}

// Any reports whether at least one stage is enabled.
func (s Stages) Any() bool {
	return s.Format || s.HTML || s.PDF
}

// Job describes one end-to-end invocation of the pipeline against one
// source document. Immutable after validation; never persisted.
type Job struct {
	ID         string // Correlation ID for log lines
	SourceDir  string // Directory holding the single Markdown source
	BaseDir    string // Repository base directory
	TargetDir  string // Directory receiving output artifacts
	Stages     Stages
	ModifyDate string // yyyy-mm-dd or "auto"

	// Document metadata overrides; empty values are extracted from the
	// source file during conversion.
	Title       string
	Description string
}

// NewJob builds a Job with sanitized paths and a fresh correlation ID.
// Paths coming from CI variable interpolation may carry stray whitespace
// or newlines; they are cleaned here, once, before validation.
func NewJob(sourceDir, baseDir, targetDir string, stages Stages) Job {
	src := fileutil.SanitizePath(sourceDir)
	tgt := fileutil.SanitizePath(targetDir)
	if tgt == "" {
		tgt = src
	}
	return Job{
		ID:         uuid.NewString(),
		SourceDir:  src,
		BaseDir:    fileutil.SanitizePath(baseDir),
		TargetDir:  tgt,
		Stages:     stages,
		ModifyDate: "auto",
	}
}

// Validate checks required values before any subprocess is invoked.
func (j *Job) Validate(now time.Time) error {
	if j.SourceDir == "" {
		return fmt.Errorf("%w: source directory is required", ErrConfigInvalid)
	}
	if j.TargetDir == "" {
		return fmt.Errorf("%w: target directory is required", ErrConfigInvalid)
	}
	if !j.Stages.Any() {
		return fmt.Errorf("%w: no stages enabled", ErrConfigInvalid)
	}
	if j.ModifyDate != "" {
		resolved, err := dateutil.ResolveDate(j.ModifyDate, now)
		if err != nil {
			return fmt.Errorf("%w: modify_date %q does not parse as a calendar date", ErrConfigInvalid, j.ModifyDate)
		}
		j.ModifyDate = resolved
	}
	return nil
}

// Result is what a completed or failed run reports to the caller.
type Result struct {
	ExitCode int
	Log      []string
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
}

// defaultTimeout bounds each external converter invocation when no
// timeout is specified.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the per-invocation subprocess deadline.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docpub: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithFormatter overrides the Markdown formatter (tests).
func WithFormatter(f Formatter) Option {
	return func(s *Service) { s.formatter = f }
}

// WithHTMLConverter overrides the Markdown-to-HTML converter (tests, or
// the built-in goldmark engine).
func WithHTMLConverter(c HTMLConverter) Option {
	return func(s *Service) { s.htmlConverter = c }
}

// WithPDFConverter overrides the HTML-to-PDF converter.
func WithPDFConverter(c PDFConverter) Option {
	return func(s *Service) { s.pdfConverter = c }
}

// WithLookPath overrides external-tool discovery (tests).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(s *Service) { s.lookPath = fn }
}

// WithClock injects a fixed time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogSink mirrors run-log lines to the given writer as they are
// emitted, in addition to collecting them in the Result.
func WithLogSink(w io.Writer) Option {
	return func(s *Service) { s.logSink = w }
}
