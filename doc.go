// Package docpub publishes Markdown documentation as styled HTML and PDF.
//
// # Quick Start
//
// Create a service, build a job for a source directory, and run it:
//
//	svc := docpub.NewService()
//	defer svc.Close()
//
//	job := docpub.NewJob("docs/charter", "/repo", "/repo/published",
//	    docpub.Stages{Format: true, HTML: true})
//
//	result, err := svc.Run(ctx, job)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(strings.Join(result.Log, "\n"))
//
// The source directory must hold exactly one Markdown file; with several
// present the lexicographically-first is used and a warning is logged.
//
// # Pipeline
//
// A run walks these stages, any of which terminates the job on failure:
//
//  1. Validation (mode, dates, external tool presence)
//  2. Input resolution (single source file per directory)
//  3. Markdown formatting via Prettier (optional)
//  4. Markdown to HTML conversion via Pandoc (or built-in goldmark engine)
//  5. Post-processing (path rewriting, heading anchors, TOC, page breaks)
//     and, when enabled, PDF rendering via wkhtmltopdf (or headless Chrome)
//
// Artifacts are written atomically to the target directory together with
// the linked stylesheet and a timestamped run log.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := docpub.NewService(
//	    docpub.WithTimeout(90*time.Second),
//	    docpub.WithStyle("markdown-styles-v1.8.1"),
//	    docpub.WithHTMLConverter(docpub.NewGoldmarkConverter()),
//	)
//
// # Errors
//
// Failures map to sentinel errors (ErrConfigInvalid, ErrSourceNotFound,
// ErrConversionFailed, ErrConversionTimeout, ErrMalformedHTML,
// ErrMissingTool, ErrWriteOutput) checked with errors.Is. External tool
// failures additionally carry a *ConversionError with the tool name, stage,
// exit code, and captured stderr.
package docpub
