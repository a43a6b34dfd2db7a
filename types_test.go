package docpub

import (
	"errors"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mode    string
		want    Stages
		wantErr bool
	}{
		{name: "format", mode: "format", want: Stages{Format: true}},
		{name: "convert", mode: "convert", want: Stages{HTML: true}},
		{name: "both", mode: "both", want: Stages{Format: true, HTML: true}},
		{name: "empty defaults to both", mode: "", want: Stages{Format: true, HTML: true}},
		{name: "case and whitespace", mode: "  Format\n", want: Stages{Format: true}},
		{name: "unknown", mode: "publish", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMode(tt.mode)
			if tt.wantErr {
				if !errors.Is(err, ErrConfigInvalid) {
					t.Fatalf("ParseMode(%q) error = %v, want ErrConfigInvalid", tt.mode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error = %v", tt.mode, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %+v, want %+v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestNewJobSanitizesPaths(t *testing.T) {
	t.Parallel()

	job := NewJob(" docs/charter\n", "/repo\n", "", Stages{HTML: true})
	if job.SourceDir != "docs/charter" {
		t.Errorf("SourceDir = %q", job.SourceDir)
	}
	if job.BaseDir != "/repo" {
		t.Errorf("BaseDir = %q", job.BaseDir)
	}
	// Target defaults to the source directory.
	if job.TargetDir != "docs/charter" {
		t.Errorf("TargetDir = %q", job.TargetDir)
	}
	if job.ID == "" {
		t.Error("job has no correlation ID")
	}
	if job.ModifyDate != "auto" {
		t.Errorf("ModifyDate = %q, want auto", job.ModifyDate)
	}
}

func TestJobValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("auto date resolves to today", func(t *testing.T) {
		t.Parallel()

		job := NewJob("src", "", "out", Stages{HTML: true})
		if err := job.Validate(now); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if job.ModifyDate != "2026-08-25" {
			t.Errorf("ModifyDate = %q, want 2026-08-25", job.ModifyDate)
		}
	})

	t.Run("explicit date kept", func(t *testing.T) {
		t.Parallel()

		job := NewJob("src", "", "out", Stages{HTML: true})
		job.ModifyDate = "2025-01-31"
		if err := job.Validate(now); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if job.ModifyDate != "2025-01-31" {
			t.Errorf("ModifyDate = %q", job.ModifyDate)
		}
	})

	t.Run("malformed date rejected", func(t *testing.T) {
		t.Parallel()

		job := NewJob("src", "", "out", Stages{HTML: true})
		job.ModifyDate = "08/25/2026"
		if err := job.Validate(now); !errors.Is(err, ErrConfigInvalid) {
			t.Errorf("Validate() error = %v, want ErrConfigInvalid", err)
		}
	})

	t.Run("no stages rejected", func(t *testing.T) {
		t.Parallel()

		job := NewJob("src", "", "out", Stages{})
		if err := job.Validate(now); !errors.Is(err, ErrConfigInvalid) {
			t.Errorf("Validate() error = %v, want ErrConfigInvalid", err)
		}
	})

	t.Run("empty source rejected", func(t *testing.T) {
		t.Parallel()

		job := NewJob("", "", "", Stages{HTML: true})
		if err := job.Validate(now); !errors.Is(err, ErrConfigInvalid) {
			t.Errorf("Validate() error = %v, want ErrConfigInvalid", err)
		}
	})
}
