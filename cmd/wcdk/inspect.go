package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/internal/errors"
)

// inspection is the printed form of a compiled module.
type inspection struct {
	Hash         string `json:"hash" yaml:"hash"`
	build.Module `yaml:",inline"`
}

func (a *app) inspectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the compiled form of a component",
		Long: `Compile one component source and print its definition and
template tree.

Examples:
  wcdk inspect components/counter.wcdk
  wcdk inspect components/counter.wcdk --format=yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := compileFile(args[0])
			if err != nil {
				return err
			}
			return a.printModule(m, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")

	return cmd
}

// compileFile transforms one source file, attaching the source to any
// diagnostic.
func compileFile(file string) (*build.Module, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.New("W060").WithLocation(file, 0, 0).Wrap(err)
	}
	m, err := build.Transform(string(src), file)
	if err != nil {
		return nil, errors.Diagnose(err, file).WithSource(string(src))
	}
	return m, nil
}

func (a *app) printModule(m *build.Module, format string) error {
	out := inspection{Hash: m.HashString(), Module: *m}
	switch format {
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New("W060").WithDetail(fmt.Sprintf("unknown format %q, want json or yaml", format))
	}
}
