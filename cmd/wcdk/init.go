package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/wcdk/internal/templates"
)

func (a *app) initCmd() *cobra.Command {
	var (
		template    string
		name        string
		description string
		port        int
		list        bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a new component project",
		Long: `Create a new component project from a template.

Existing files are never overwritten.

Examples:
  wcdk init widgets
  wcdk init --template=minimal --name=acme
  wcdk init --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, n := range templates.List() {
					t, _ := templates.Get(n)
					a.info("%s", t)
				}
				return nil
			}

			dir := a.dir
			if len(args) > 0 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			tmpl, err := templates.Get(template)
			if err != nil {
				return err
			}
			written, err := tmpl.Create(abs, templates.Config{
				Name:        name,
				Description: description,
				Port:        port,
			})
			if err != nil {
				return err
			}

			a.success("Created %s project in %s", tmpl.Name, abs)
			for _, f := range written {
				rel, _ := filepath.Rel(abs, f)
				a.info("%s", rel)
			}
			fmt.Fprintln(a.stdout)
			if wd, err := os.Getwd(); err != nil || wd != abs {
				a.info("cd %s", dir)
			}
			a.info("wcdk dev")
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "starter", "Project template")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Dev server port")
	cmd.Flags().BoolVar(&list, "list", false, "List available templates")

	return cmd
}
