package main

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	flags, positionals, err := parseFlags([]string{
		"--md-to-html", "--html-to-pdf",
		"--style", "markdown-styles-v1.8.1",
		"-t", "90s",
		"--debug",
		"docs/charter", "/repo", "/repo/published",
	}, &stderr)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}

	if !flags.mdToHTML || !flags.htmlToPDF || flags.mdFormat {
		t.Errorf("stage flags = %+v", flags)
	}
	if flags.style != "markdown-styles-v1.8.1" {
		t.Errorf("style = %q", flags.style)
	}
	if flags.timeout != "90s" {
		t.Errorf("timeout = %q", flags.timeout)
	}
	if !flags.debug {
		t.Error("debug not set")
	}

	want := []string{"docs/charter", "/repo", "/repo/published"}
	if len(positionals) != 3 {
		t.Fatalf("positionals = %v, want %v", positionals, want)
	}
	for i := range want {
		if positionals[i] != want[i] {
			t.Errorf("positionals[%d] = %q, want %q", i, positionals[i], want[i])
		}
	}
}

func TestParseFlagsUnknownFlag(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	_, _, err := parseFlags([]string{"--no-such-flag"}, &stderr)
	if !errors.Is(err, ErrUsage) {
		t.Errorf("parseFlags() error = %v, want ErrUsage", err)
	}
}

func TestApplyFlagsPositionals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		positionals []string
		wantSource  string
		wantBase    string
		wantTarget  string
		wantErr     bool
	}{
		{
			name:        "source only",
			positionals: []string{"docs"},
			wantSource:  "docs",
		},
		{
			name:        "source and base",
			positionals: []string{"docs", "/repo"},
			wantSource:  "docs",
			wantBase:    "/repo",
		},
		{
			name:        "all three",
			positionals: []string{"docs", "/repo", "/out"},
			wantSource:  "docs",
			wantBase:    "/repo",
			wantTarget:  "/out",
		},
		{
			name:        "none without config",
			positionals: nil,
			wantErr:     true,
		},
		{
			name:        "too many",
			positionals: []string{"a", "b", "c", "d"},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			err := applyFlags(&cliFlags{}, tt.positionals, &envConfig{}, cfg)
			if tt.wantErr {
				if !errors.Is(err, ErrUsage) {
					t.Fatalf("applyFlags() error = %v, want ErrUsage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("applyFlags() error = %v", err)
			}
			if cfg.Source.Dir != tt.wantSource {
				t.Errorf("Source.Dir = %q, want %q", cfg.Source.Dir, tt.wantSource)
			}
			if cfg.Source.BaseDir != tt.wantBase {
				t.Errorf("Source.BaseDir = %q, want %q", cfg.Source.BaseDir, tt.wantBase)
			}
			if cfg.Source.TargetDir != tt.wantTarget {
				t.Errorf("Source.TargetDir = %q, want %q", cfg.Source.TargetDir, tt.wantTarget)
			}
		})
	}
}

func TestApplyFlagsStages(t *testing.T) {
	t.Parallel()

	t.Run("default stages kept without flags", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		if err := applyFlags(&cliFlags{}, []string{"docs"}, &envConfig{}, cfg); err != nil {
			t.Fatal(err)
		}
		if !cfg.Stages.Format || !cfg.Stages.HTML || cfg.Stages.PDF {
			t.Errorf("Stages = %+v, want default format+html", cfg.Stages)
		}
	})

	t.Run("stage flags replace defaults wholesale", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		flags := &cliFlags{htmlToPDF: true}
		if err := applyFlags(flags, []string{"docs"}, &envConfig{}, cfg); err != nil {
			t.Fatal(err)
		}
		if cfg.Stages.Format || cfg.Stages.HTML || !cfg.Stages.PDF {
			t.Errorf("Stages = %+v, want pdf only", cfg.Stages)
		}
	})

	t.Run("env mode applies without stage flags", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		if err := applyFlags(&cliFlags{}, []string{"docs"}, &envConfig{Mode: "format"}, cfg); err != nil {
			t.Fatal(err)
		}
		if !cfg.Stages.Format || cfg.Stages.HTML || cfg.Stages.PDF {
			t.Errorf("Stages = %+v, want format only", cfg.Stages)
		}
	})

	t.Run("stage flags beat env mode", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		flags := &cliFlags{mdToHTML: true}
		if err := applyFlags(flags, []string{"docs"}, &envConfig{Mode: "format"}, cfg); err != nil {
			t.Fatal(err)
		}
		if cfg.Stages.Format || !cfg.Stages.HTML {
			t.Errorf("Stages = %+v, want html only", cfg.Stages)
		}
	})

	t.Run("unknown env mode rejected", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		err := applyFlags(&cliFlags{}, []string{"docs"}, &envConfig{Mode: "publish"}, cfg)
		if err == nil {
			t.Error("applyFlags() accepted unknown mode")
		}
	})
}
