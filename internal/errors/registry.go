package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Parse (W001-W009)
	"W001": {
		Category:   CategoryParse,
		Message:    "Malformed component source",
		Detail:     "A component file has four sections separated by '---': preamble, template, style and script.",
		Suggestion: "Check the section delimiters and the syntax of the props, state and methods blocks.",
	},
	"W002": {
		Category:   CategoryParse,
		Message:    "Missing section",
		Detail:     "A required part of the component definition is missing, such as a prop type.",
		Suggestion: "Declare props as name: (Type, default value), for example count: (Number, default 0).",
	},
	"W003": {
		Category:   CategoryParse,
		Message:    "Unterminated block",
		Suggestion: "Check that every '{' in the script has a matching '}'.",
	},

	// Evaluation (W010-W019)
	"W010": {
		Category:   CategoryEvaluation,
		Message:    "Expression evaluation failed",
		Detail:     "Only literals, references to state and props, and simple operators can be evaluated.",
		Suggestion: "Declare every referenced name in state before it is used.",
	},
	"W011": {
		Category:   CategoryEvaluation,
		Message:    "Unsupported method statement",
		Detail:     "Methods may assign to state fields, increment or decrement them, call other methods and return.",
		Suggestion: "Move other logic into a Go action registered with Component.Setup.",
	},

	// Render (W020-W029)
	"W020": {
		Category:   CategoryRender,
		Message:    "Action not found",
		Detail:     "An event binding names an action the component does not define. The binding was skipped.",
		Suggestion: "Add a method with that name or fix the @event attribute.",
	},
	"W021": {
		Category:   CategoryRender,
		Message:    "Re-render budget exceeded",
		Detail:     "State kept changing during updates, usually because an update hook writes state unconditionally.",
	},

	// Registry (W030-W039)
	"W030": {
		Category:   CategoryRegistry,
		Message:    "Invalid element name",
		Suggestion: "Element names are lower case and contain a hyphen, for example my-counter.",
	},
	"W031": {
		Category:   CategoryRegistry,
		Message:    "Duplicate element name",
		Suggestion: "Give each component a distinct name: field or file name.",
	},

	// Config (W040-W049)
	"W040": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"W041": {
		Category: CategoryConfig,
		Message:  "Configuration file could not be read",
	},

	// Build (W045-W049)
	"W045": {
		Category:   CategoryBuild,
		Message:    "Source directory not found",
		Suggestion: "Set source.dir in wcdk.yaml or pass the directory explicitly.",
	},
	"W046": {
		Category: CategoryBuild,
		Message:  "Build output could not be written",
	},
	"W047": {
		Category:   CategoryBuild,
		Message:    "Bundle could not be read",
		Suggestion: "Run wcdk compile again to regenerate bundle.cbor.",
	},

	// Publish (W050-W059)
	"W050": {
		Category: CategoryPublish,
		Message:  "Publish failed",
	},
	"W051": {
		Category:   CategoryPublish,
		Message:    "Publish bucket not configured",
		Suggestion: "Set publish.bucket in wcdk.yaml or WCDK_PUBLISH_BUCKET.",
	},

	// CLI (W060-W069)
	"W060": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},
	"W061": {
		Category: CategoryCLI,
		Message:  "Component not found",
	},
	"W062": {
		Category:   CategoryCLI,
		Message:    "Project file already exists",
		Suggestion: "Run wcdk init in an empty directory or remove the existing file.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered code in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
