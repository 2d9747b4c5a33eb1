package sfc

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// buildSource assembles a source with one prop, two state entries and one method.
func buildSource(name string, value int, text string) string {
	var b strings.Builder
	b.WriteString("---\n<p>" + text + "</p>\n---\n---\n")
	b.WriteString("props: {\n  " + name + ": (Number, default " + fmt.Sprint(value) + ")\n}\n")
	b.WriteString("state: {\n  " + name + ": " + fmt.Sprint(value) + ",\n  " + name + "List: [" + fmt.Sprint(value) + "]\n}\n")
	b.WriteString("methods: {\n  bump() { state." + name + " = state." + name + " + 1 }\n}\n")
	return b.String()
}

func TestParseRoundTripProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 30
	properties := gopter.NewProperties(params)

	properties.Property("parsing the same source twice yields equal definitions", prop.ForAll(
		func(name string, value int, text string) bool {
			src := buildSource(name, value, text)

			first, err := Parse(src)
			if err != nil {
				return false
			}
			second, err := Parse(src)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(first, second)
		},
		gen.RegexMatch(`^[a-z][a-zA-Z0-9]{0,8}$`),
		gen.IntRange(-1000, 1000),
		gen.AlphaString(),
	))

	properties.Property("state values are evaluated to int64", prop.ForAll(
		func(name string, value int) bool {
			def, err := Parse(buildSource(name, value, "x"))
			if err != nil {
				return false
			}
			return def.State[name] == int64(value) &&
				def.Props[name].Default == fmt.Sprint(value)
		},
		gen.RegexMatch(`^[a-z][a-zA-Z0-9]{0,8}$`),
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t)
}
