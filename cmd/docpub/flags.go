package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage indicates invalid command-line arguments.
var ErrUsage = errors.New("invalid usage")

// cliFlags holds all flags for the publish run.
type cliFlags struct {
	config   string
	timeout  string
	style    string
	styleDir string

	mdFormat  bool
	mdToHTML  bool
	htmlToPDF bool

	title       string
	description string
	modifyDate  string

	debug   bool
	version bool
	help    bool
}

// parseFlags parses command-line flags and returns positional arguments.
// The positionals are source dir, repo base dir, and target dir; base and
// target are optional and default to the source directory.
func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("docpub", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "converter timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.style, "style", "", "CSS style name")
	fs.StringVar(&f.styleDir, "style-dir", "", "directory with styles/*.css overrides")

	fs.BoolVar(&f.mdFormat, "md-format", false, "format the Markdown source with prettier")
	fs.BoolVar(&f.mdToHTML, "md-to-html", false, "convert Markdown to HTML")
	fs.BoolVar(&f.htmlToPDF, "html-to-pdf", false, "render the HTML to PDF")

	fs.StringVar(&f.title, "title", "", "document title (\"\" = from first H1)")
	fs.StringVar(&f.description, "description", "", "document description (\"\" = from source comment)")
	fs.StringVar(&f.modifyDate, "modify-date", "", "modification date, yyyy-mm-dd or \"auto\"")

	fs.BoolVar(&f.debug, "debug", false, "enable debug log output")
	fs.BoolVarP(&f.version, "version", "V", false, "print version and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show usage")

	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return f, fs.Args(), nil
}
