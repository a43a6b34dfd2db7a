// Package assets provides the embedded stylesheet catalogue with optional
// filesystem overrides. Styles are versioned CSS resources referenced by
// name; the published documents link or inline them, never mutate them.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed styles/*.css
var embeddedStyles embed.FS

// DefaultStyle is the stylesheet applied when none is configured.
const DefaultStyle = "markdown-styles-v1.8.1"

// Sentinel errors for asset loading.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidStyleName = errors.New("invalid style name")
	ErrInvalidBasePath  = errors.New("invalid asset base path")
)

// Resolver loads CSS styles by name. When a base path is configured,
// styles found there take precedence over embedded defaults.
type Resolver struct {
	basePath string // empty means embedded-only
}

// NewResolver creates a Resolver. basePath may be empty (embedded assets
// only); when set it must be a readable directory containing styles/*.css.
func NewResolver(basePath string) (*Resolver, error) {
	if basePath == "" {
		return &Resolver{}, nil
	}
	info, err := os.Stat(basePath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBasePath, basePath)
	}
	return &Resolver{basePath: basePath}, nil
}

// LoadStyle returns the CSS content for the named style (no .css suffix).
// Filesystem overrides are consulted first, then embedded styles.
func (r *Resolver) LoadStyle(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	if r.basePath != "" {
		path := filepath.Join(r.basePath, "styles", name+".css")
		data, err := os.ReadFile(path) // #nosec G304 -- name validated against traversal above
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading style %s: %w", path, err)
		}
	}

	data, err := embeddedStyles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(data), nil
}

// ListStyles returns the names of all embedded styles.
func (r *Resolver) ListStyles() ([]string, error) {
	entries, err := embeddedStyles.ReadDir("styles")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	return names, nil
}

// validateName rejects names that could escape the styles directory.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidStyleName)
	}
	if strings.ContainsAny(name, "/\\\x00") || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidStyleName, name)
	}
	return nil
}
