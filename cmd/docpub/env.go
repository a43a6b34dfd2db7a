package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/oasis-open/docpub/internal/config"
)

// envConfig holds configuration from environment variables. CI pipelines set
// these instead of passing flags.
type envConfig struct {
	TargetPath string        // DOCPUB_TARGET_PATH: output directory
	Mode       string        // DOCPUB_MODE: format, convert, or both
	ModifyDate string        // DOCPUB_MODIFY_DATE: yyyy-mm-dd or "auto"
	AuthToken  string        // DOCPUB_AUTH_TOKEN: carried for the downstream publisher
	ConfigPath string        // DOCPUB_CONFIG: config file name or path
	Style      string        // DOCPUB_STYLE: CSS style name
	Timeout    time.Duration // DOCPUB_TIMEOUT: converter timeout
}

// knownEnvVars lists valid DOCPUB_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCPUB_TARGET_PATH": true,
	"DOCPUB_MODE":        true,
	"DOCPUB_MODIFY_DATE": true,
	"DOCPUB_AUTH_TOKEN":  true,
	"DOCPUB_CONFIG":      true,
	"DOCPUB_TIMEOUT":     true,
	"DOCPUB_STYLE":       true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		TargetPath: getenv("DOCPUB_TARGET_PATH"),
		Mode:       getenv("DOCPUB_MODE"),
		ModifyDate: getenv("DOCPUB_MODIFY_DATE"),
		AuthToken:  getenv("DOCPUB_AUTH_TOKEN"),
		ConfigPath: getenv("DOCPUB_CONFIG"),
		Style:      getenv("DOCPUB_STYLE"),
	}

	if timeout := getenv("DOCPUB_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOCPUB_* variables.
// Helps catch typos like DOCPUB_TAGET_PATH instead of DOCPUB_TARGET_PATH.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DOCPUB_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values the config does not already carry, keeping the
// precedence order: CLI flags > env vars > config file > defaults.
// (CLI flags are applied later via applyFlags.)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.TargetPath != "" && cfg.Source.TargetDir == "" {
		cfg.Source.TargetDir = env.TargetPath
	}
	if env.ModifyDate != "" && (cfg.Document.ModifyDate == "" || cfg.Document.ModifyDate == "auto") {
		cfg.Document.ModifyDate = env.ModifyDate
	}
	if env.Style != "" && cfg.Style.Name == "" {
		cfg.Style.Name = env.Style
	}
	if env.Timeout > 0 && cfg.PDF.Timeout == "" {
		cfg.PDF.Timeout = env.Timeout.String()
	}
	if env.AuthToken != "" && cfg.Publish.AuthToken == "" {
		cfg.Publish.AuthToken = env.AuthToken
	}
}
