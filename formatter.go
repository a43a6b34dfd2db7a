package docpub

import "context"

// Formatter abstracts Markdown source formatting.
type Formatter interface {
	Format(ctx context.Context, path string) error
}

// PrettierFormatter formats Markdown in place by invoking the Prettier CLI.
type PrettierFormatter struct {
	Runner CommandRunner
}

// NewPrettierFormatter creates a PrettierFormatter with a real command runner.
func NewPrettierFormatter() *PrettierFormatter {
	return &PrettierFormatter{Runner: &ExecRunner{}}
}

// Format rewrites the file at path with Prettier's canonical Markdown style.
func (f *PrettierFormatter) Format(ctx context.Context, path string) error {
	_, stderr, err := f.Runner.Run(ctx, "prettier", "--write", path)
	return wrapRunError(ctx, "prettier", StageFormatting, stderr, err)
}

// ToolName names the external binary this formatter depends on.
func (f *PrettierFormatter) ToolName() string { return "prettier" }
