package main

import (
	"fmt"
	"io"
)

func printUsage(w io.Writer) {
	fmt.Fprint(w, `docpub - publish Markdown documentation as styled HTML and PDF

Usage:
  docpub [flags] <source_dir> [repo_base_dir] [target_dir]
  docpub doctor [--json]

With no stage flag, formatting and HTML conversion both run.
Target directory defaults to the source directory.

Stages:
      --md-format      format the Markdown source with prettier
      --md-to-html     convert Markdown to HTML
      --html-to-pdf    render the HTML to PDF

Flags:
  -c, --config string        config file name or path
  -t, --timeout string       converter timeout (e.g., 30s, 2m)
      --style string         CSS style name
      --style-dir string     directory with styles/*.css overrides
      --title string         document title ("" = from first H1)
      --description string   document description ("" = from source comment)
      --modify-date string   modification date, yyyy-mm-dd or "auto"
      --debug                enable debug log output
  -V, --version              print version and exit
  -h, --help                 show usage

Environment:
  DOCPUB_TARGET_PATH, DOCPUB_MODE, DOCPUB_MODIFY_DATE, DOCPUB_AUTH_TOKEN,
  DOCPUB_CONFIG, DOCPUB_TIMEOUT, DOCPUB_STYLE
`)
}
