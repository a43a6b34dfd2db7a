// Package config defines the explicit configuration struct for a publishing
// run. It is constructed once at process start (file, then environment, then
// flags) and passed to every component; no component reads ambient state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oasis-open/docpub/internal/fileutil"
	"github.com/oasis-open/docpub/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
)

// Converter engine names.
const (
	EnginePandoc  = "pandoc"
	EngineBuiltin = "builtin"
)

// PDF engine names.
const (
	PDFEngineWkhtmltopdf = "wkhtmltopdf"
	PDFEngineChrome      = "chrome"
)

// DefaultTimeout bounds each external converter invocation.
const DefaultTimeout = 2 * time.Minute

// Config holds all configuration for a publishing run.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Stages    StagesConfig    `yaml:"stages"`
	Document  DocumentConfig  `yaml:"document"`
	Style     StyleConfig     `yaml:"style"`
	Converter ConverterConfig `yaml:"converter"`
	PDF       PDFConfig       `yaml:"pdf"`
	Publish   PublishConfig   `yaml:"publish"`
	Debug     bool            `yaml:"debug"`
}

// SourceConfig locates the input document.
type SourceConfig struct {
	Dir       string `yaml:"dir"`       // Directory holding the single Markdown source
	BaseDir   string `yaml:"baseDir"`   // Repository base directory (CI workspace)
	TargetDir string `yaml:"targetDir"` // Directory receiving HTML/PDF output
}

// StagesConfig toggles the independently runnable pipeline stages.
type StagesConfig struct {
	Format bool `yaml:"format"` // Run the Markdown formatter (prettier)
	HTML   bool `yaml:"html"`   // Convert Markdown to HTML
	PDF    bool `yaml:"pdf"`    // Convert HTML to PDF
}

// DocumentConfig carries per-document metadata.
type DocumentConfig struct {
	ModifyDate  string `yaml:"modifyDate"`  // yyyy-mm-dd, or "auto" for today
	Title       string `yaml:"title"`       // Empty = extracted from first H1
	Description string `yaml:"description"` // Empty = extracted from source comment
}

// StyleConfig selects the CSS stylesheet.
type StyleConfig struct {
	Name     string `yaml:"name"`     // Style name, empty = versioned default
	AssetDir string `yaml:"assetDir"` // Override directory, empty = embedded only
}

// ConverterConfig selects the Markdown-to-HTML backend.
type ConverterConfig struct {
	Engine string `yaml:"engine"` // "pandoc" (default) or "builtin"
}

// PDFConfig selects and parameterizes the HTML-to-PDF backend.
type PDFConfig struct {
	Engine   string  `yaml:"engine"`   // "wkhtmltopdf" (default) or "chrome"
	MarginMM float64 `yaml:"marginMM"` // Page margin in millimeters, 0 = default
	Timeout  string  `yaml:"timeout"`  // Duration string, e.g. "90s"
}

// PublishConfig holds downstream-publishing settings the core carries but
// does not act on.
type PublishConfig struct {
	AuthToken string `yaml:"authToken"`
}

// DefaultConfig returns the baseline configuration: both conversion stages
// enabled (matching the CLI default when no stage flag is given), pandoc and
// wkhtmltopdf engines, versioned default stylesheet.
func DefaultConfig() *Config {
	return &Config{
		Stages:    StagesConfig{Format: true, HTML: true},
		Document:  DocumentConfig{ModifyDate: "auto"},
		Converter: ConverterConfig{Engine: EnginePandoc},
		PDF:       PDFConfig{Engine: PDFEngineWkhtmltopdf},
	}
}

// ResolveTimeout parses the configured PDF timeout, falling back to
// DefaultTimeout when unset.
func (c *Config) ResolveTimeout() (time.Duration, error) {
	if c.PDF.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.PDF.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: invalid timeout %q", ErrConfigParse, c.PDF.Timeout)
	}
	return d, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		resolved, err := resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
		configPath = resolved
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/docpub/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "docpub", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
