package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	docpub "github.com/oasis-open/docpub"
	"github.com/oasis-open/docpub/internal/config"
)

// run executes the publish pipeline for the given command line.
func run(args []string, env *Environment) error {
	flags, positionals, err := parseFlags(args[1:], env.Stderr)
	if err != nil {
		return err
	}
	if flags.help {
		printUsage(env.Stdout)
		return nil
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "docpub %s\n", Version)
		return nil
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig(env.Getenv)

	cfg := env.Config
	if configPath := pick(flags.config, envCfg.ConfigPath); configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyEnvConfig(envCfg, cfg)
	if err := applyFlags(flags, positionals, envCfg, cfg); err != nil {
		return err
	}

	timeout, err := resolveTimeout(flags, envCfg, cfg)
	if err != nil {
		return err
	}

	svc := buildService(cfg, timeout, env)
	defer svc.Close()

	stages := docpub.Stages(cfg.Stages)
	job := docpub.NewJob(cfg.Source.Dir, cfg.Source.BaseDir, cfg.Source.TargetDir, stages)
	if cfg.Document.ModifyDate != "" {
		job.ModifyDate = cfg.Document.ModifyDate
	}
	job.Title = cfg.Document.Title
	job.Description = cfg.Document.Description

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = svc.Run(ctx, job)
	return err
}

// pick returns the first non-empty value.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// applyFlags merges flag values and positional arguments into the config.
// Flags win over everything loaded before them.
func applyFlags(flags *cliFlags, positionals []string, envCfg *envConfig, cfg *config.Config) error {
	switch len(positionals) {
	case 0:
		if cfg.Source.Dir == "" {
			return fmt.Errorf("%w: source directory argument is required", ErrUsage)
		}
	case 1:
		cfg.Source.Dir = positionals[0]
	case 2:
		cfg.Source.Dir = positionals[0]
		cfg.Source.BaseDir = positionals[1]
	case 3:
		cfg.Source.Dir = positionals[0]
		cfg.Source.BaseDir = positionals[1]
		cfg.Source.TargetDir = positionals[2]
	default:
		return fmt.Errorf("%w: too many arguments: %s", ErrUsage, strings.Join(positionals[3:], " "))
	}

	// Explicit stage flags replace the configured stages wholesale; an
	// environment mode applies when no stage flag is given.
	switch {
	case flags.mdFormat || flags.mdToHTML || flags.htmlToPDF:
		cfg.Stages = config.StagesConfig{
			Format: flags.mdFormat,
			HTML:   flags.mdToHTML,
			PDF:    flags.htmlToPDF,
		}
	case envCfg.Mode != "":
		stages, err := docpub.ParseMode(envCfg.Mode)
		if err != nil {
			return err
		}
		cfg.Stages = config.StagesConfig(stages)
	}

	if flags.title != "" {
		cfg.Document.Title = flags.title
	}
	if flags.description != "" {
		cfg.Document.Description = flags.description
	}
	if flags.modifyDate != "" {
		cfg.Document.ModifyDate = flags.modifyDate
	}
	if flags.style != "" {
		cfg.Style.Name = flags.style
	}
	if flags.styleDir != "" {
		cfg.Style.AssetDir = flags.styleDir
	}
	if flags.debug {
		cfg.Debug = true
	}
	return nil
}

// resolveTimeout applies the precedence order to the converter timeout.
func resolveTimeout(flags *cliFlags, envCfg *envConfig, cfg *config.Config) (time.Duration, error) {
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return 0, fmt.Errorf("%w: invalid timeout %q", ErrUsage, flags.timeout)
		}
		return d, nil
	}
	if envCfg.Timeout > 0 {
		return envCfg.Timeout, nil
	}
	return cfg.ResolveTimeout()
}

// buildService wires the Service from the resolved configuration.
func buildService(cfg *config.Config, timeout time.Duration, env *Environment) *docpub.Service {
	opts := []docpub.Option{
		docpub.WithTimeout(timeout),
		docpub.WithClock(env.Now),
		docpub.WithLogSink(env.Stderr),
		docpub.WithDebug(cfg.Debug),
	}
	if cfg.Style.Name != "" {
		opts = append(opts, docpub.WithStyle(cfg.Style.Name))
	}
	if cfg.Style.AssetDir != "" {
		opts = append(opts, docpub.WithStyleDir(cfg.Style.AssetDir))
	}
	if cfg.Converter.Engine == config.EngineBuiltin {
		opts = append(opts, docpub.WithHTMLConverter(docpub.NewGoldmarkConverter()))
	}
	switch cfg.PDF.Engine {
	case config.PDFEngineChrome:
		rodConv := docpub.NewRodConverter(timeout)
		rodConv.MarginMM = cfg.PDF.MarginMM
		opts = append(opts, docpub.WithPDFConverter(rodConv))
	default:
		wk := docpub.NewWkhtmltopdfConverter()
		wk.MarginMM = cfg.PDF.MarginMM
		opts = append(opts, docpub.WithPDFConverter(wk))
	}
	return docpub.NewService(opts...)
}
