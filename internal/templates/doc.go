// Package templates provides project scaffolding templates.
//
// This package contains the starter files written by wcdk init. Every
// template produces a wcdk.yaml and a components directory that compiles
// as-is.
//
// # Available Templates
//
//   - minimal: wcdk.yaml and one component
//   - starter: a counter and a greeting component with a stylesheet
//
// # Usage
//
//	tmpl, err := templates.Get("starter")
//	if err != nil {
//	    return err
//	}
//	files, err := tmpl.Create(projectDir, templates.Config{Name: "widgets"})
//
// # Template Variables
//
//	{{.Name}}        - Project name
//	{{.Prefix}}      - Element name prefix derived from the project name
//	{{.Description}} - Project description
//	{{.Port}}        - Dev server port
package templates
