// Command wcdk compiles, previews and publishes single-file web components.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/wcdk/internal/config"
	"github.com/vango-dev/wcdk/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬ ┬┌─┐┌┬┐┬┌─
  ││││  ││├┴┐
  └┴┘└─┘─┴┘┴ ┴
`

// app holds the global flags shared by every command.
type app struct {
	configFile string
	dir        string
	logLevel   string
	noColor    bool

	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		errors.Print(stderr, err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wcdk",
		Short: "Single-file web component compiler and runtime",
		Long: `wcdk compiles single-file components into a registrable bundle.

A component file holds four sections separated by '---':
a preamble, the template, a style block and the script.

  • Scaffold a new project
  • Compile a directory of components into bundle.cbor
  • Inspect the compiled form of one component
  • Render a component with props and replayed actions
  • Preview components with hot reload
  • Publish a build to S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.noColor {
				errors.DisableColors()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Config file (default: wcdk.yaml in --dir)")
	flags.StringVarP(&a.dir, "dir", "C", ".", "Project directory")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		a.initCmd(),
		a.compileCmd(),
		a.inspectCmd(),
		a.renderCmd(),
		a.devCmd(),
		a.publishCmd(),
		a.versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the configuration named by --config, or the one in --dir,
// falling back to defaults when the project has none.
func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.configFile != "" {
		cfg, err = config.LoadFile(a.configFile)
	} else {
		cfg, err = config.LoadOrDefault(a.dir)
	}
	if err != nil {
		return nil, err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (a *app) logger(cfg *config.Config) *slog.Logger {
	return cfg.NewLogger(a.stderr)
}

// success prints a success message.
func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.stdout, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func (a *app) info(format string, args ...any) {
	fmt.Fprintf(a.stdout, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func (a *app) warn(format string, args ...any) {
	fmt.Fprintf(a.stderr, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// parseProps turns repeated key=value flags into a props map.
func parseProps(pairs []string) (map[string]any, error) {
	props := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New("W060").WithDetail(fmt.Sprintf("--prop %q must be key=value", p))
		}
		props[key] = value
	}
	return props, nil
}
