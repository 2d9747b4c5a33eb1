package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/internal/errors"
)

func (a *app) compileCmd() *cobra.Command {
	var (
		source string
		output string
		clean  bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile every component into a bundle",
		Long: `Compile every component source into bundle.cbor and manifest.json.

A component that fails to compile is reported and skipped; the
remaining components are still written. The command exits non-zero
when any component failed.

Examples:
  wcdk compile
  wcdk compile --source=src/components --output=public/wc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompile(cmd.Context(), source, output, clean)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Source directory (default from wcdk.yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from wcdk.yaml)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Clean output directory before build")

	return cmd
}

func (a *app) runCompile(ctx context.Context, source, output string, clean bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if source != "" {
		cfg.Source.Dir = source
	}
	if output != "" {
		cfg.Build.Output = output
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := build.New(cfg, build.Options{
		Logger:     a.logger(cfg),
		OnProgress: func(step string) { a.info(step) },
	})
	if clean {
		a.info("Cleaning output directory...")
		if err := builder.Clean(); err != nil {
			return err
		}
	}

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	for _, f := range result.Failures {
		file := filepath.Join(cfg.SourcePath(), filepath.FromSlash(f.File))
		errors.Print(a.stderr, errors.Diagnose(f.Err, file))
	}

	fmt.Fprintln(a.stdout)
	a.success("Compiled %d component(s) in %s", len(result.Modules), result.Duration.Round(time.Millisecond))
	for _, m := range result.Modules {
		a.info("%-24s %s", m.Name, m.File)
	}
	fmt.Fprintln(a.stdout)
	a.info("Bundle:   %s", result.Bundle)
	a.info("Manifest: %s", result.Manifest)

	if n := len(result.Failures); n > 0 {
		return fmt.Errorf("%d component(s) failed to compile", n)
	}
	return nil
}
