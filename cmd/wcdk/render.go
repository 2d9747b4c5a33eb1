package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/internal/config"
	"github.com/vango-dev/wcdk/internal/dev"
	"github.com/vango-dev/wcdk/internal/errors"
	"github.com/vango-dev/wcdk/pkg/component"
)

func (a *app) renderCmd() *cobra.Command {
	var (
		props    []string
		dispatch []string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "render <file|name>",
		Short: "Render a component to HTML",
		Long: `Mount a component on an in-memory document, dispatch actions in
order and print the resulting markup.

The argument is either a component source file or the element name of
a component in the compiled bundle.

Examples:
  wcdk render components/counter.wcdk
  wcdk render my-counter --prop label=Clicks --dispatch increment,increment
  wcdk render my-counter --format=json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			values, err := parseProps(props)
			if err != nil {
				return err
			}

			name, c, err := resolveComponent(cfg, args[0])
			if err != nil {
				return err
			}

			p, err := dev.RenderPreview(name, c, values, dispatch, component.WithLogger(a.logger(cfg)))
			if err != nil {
				return errors.New("W060").Wrap(err)
			}
			return a.printPreview(p, format)
		},
	}

	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "Prop value as key=value (repeatable)")
	cmd.Flags().StringSliceVarP(&dispatch, "dispatch", "d", nil, "Actions to dispatch after mounting, in order")
	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format (html, json, yaml)")

	return cmd
}

// resolveComponent compiles target when it names a source file and
// otherwise looks it up in the compiled bundle.
func resolveComponent(cfg *config.Config, target string) (string, *component.Component, error) {
	if isSourceFile(cfg, target) {
		m, err := compileFile(target)
		if err != nil {
			return "", nil, err
		}
		c, err := m.Component()
		if err != nil {
			return "", nil, errors.Diagnose(err, target)
		}
		return m.Name, c, nil
	}

	reg := component.NewRegistry()
	if _, err := build.LoadBundle(filepath.Join(cfg.OutputPath(), build.BundleFile), reg); err != nil {
		return "", nil, err
	}
	c, ok := reg.Lookup(target)
	if !ok {
		return "", nil, errors.New("W061").
			WithSuggestion(fmt.Sprintf("Compiled components: %s", strings.Join(reg.Names(), ", "))).
			Wrap(fmt.Errorf("no component named %q", target))
	}
	return target, c, nil
}

func isSourceFile(cfg *config.Config, target string) bool {
	if strings.HasSuffix(target, cfg.Source.Extension) {
		return true
	}
	info, err := os.Stat(target)
	return err == nil && !info.IsDir()
}

func (a *app) printPreview(p *dev.Preview, format string) error {
	switch format {
	case "html":
		for _, w := range p.Warnings {
			a.warn("%s", w)
		}
		fmt.Fprintln(a.stdout, p.HTML)
		return nil
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "yaml":
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New("W060").WithDetail(fmt.Sprintf("unknown format %q, want html, json or yaml", format))
	}
}
