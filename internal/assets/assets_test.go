package assets_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oasis-open/docpub/internal/assets"
)

func TestLoadStyleEmbedded(t *testing.T) {
	t.Parallel()

	r, err := assets.NewResolver("")
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	css, err := r.LoadStyle(assets.DefaultStyle)
	if err != nil {
		t.Fatalf("LoadStyle(%q) error = %v", assets.DefaultStyle, err)
	}

	// The embedded stylesheet must carry the conventions post-processing
	// depends on: citation h6, cover pseudo-tags, and page-break class.
	for _, marker := range []string{"h6", "h1big", "h1gray", ".page-break"} {
		if !strings.Contains(css, marker) {
			t.Errorf("embedded style missing %q rule", marker)
		}
	}
}

func TestLoadStyleUnknown(t *testing.T) {
	t.Parallel()

	r, _ := assets.NewResolver("")
	_, err := r.LoadStyle("no-such-style")
	if !errors.Is(err, assets.ErrStyleNotFound) {
		t.Errorf("LoadStyle(unknown) error = %v, want ErrStyleNotFound", err)
	}
}

func TestLoadStyleInvalidName(t *testing.T) {
	t.Parallel()

	r, _ := assets.NewResolver("")

	for _, name := range []string{"", "../secrets", "a/b", "a\\b", "x..y"} {
		if _, err := r.LoadStyle(name); !errors.Is(err, assets.ErrInvalidStyleName) {
			t.Errorf("LoadStyle(%q) error = %v, want ErrInvalidStyleName", name, err)
		}
	}
}

func TestLoadStyleOverride(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	stylesDir := filepath.Join(base, "styles")
	if err := os.MkdirAll(stylesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	custom := "body { color: rebeccapurple; }"
	if err := os.WriteFile(filepath.Join(stylesDir, "corp.css"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := assets.NewResolver(base)
	if err != nil {
		t.Fatalf("NewResolver(%q) error = %v", base, err)
	}

	got, err := r.LoadStyle("corp")
	if err != nil {
		t.Fatalf("LoadStyle(corp) error = %v", err)
	}
	if got != custom {
		t.Errorf("LoadStyle(corp) = %q, want override content", got)
	}

	// Embedded fallback still works for names absent from the override dir.
	if _, err := r.LoadStyle(assets.DefaultStyle); err != nil {
		t.Errorf("LoadStyle(default) with override dir error = %v", err)
	}
}

func TestNewResolverBadPath(t *testing.T) {
	t.Parallel()

	_, err := assets.NewResolver(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, assets.ErrInvalidBasePath) {
		t.Errorf("NewResolver(missing) error = %v, want ErrInvalidBasePath", err)
	}
}

func TestListStyles(t *testing.T) {
	t.Parallel()

	r, _ := assets.NewResolver("")
	names, err := r.ListStyles()
	if err != nil {
		t.Fatalf("ListStyles() error = %v", err)
	}

	found := false
	for _, n := range names {
		if n == assets.DefaultStyle {
			found = true
		}
	}
	if !found {
		t.Errorf("ListStyles() = %v, missing %q", names, assets.DefaultStyle)
	}
}
