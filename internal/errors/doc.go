// Package errors turns pipeline failures into coded, actionable diagnostics.
//
// Every failure the compiler or runtime can report maps to a registered code
// (e.g., "W001") carrying a short message, a longer explanation and, where
// possible, a hint. Diagnose classifies an arbitrary error from the parser,
// evaluator, renderer or registry and attaches the source location.
//
// # Error Categories
//
//   - parse: malformed component sources
//   - evaluation: expressions and method statements
//   - render: event bindings and update storms
//   - registry: custom element names
//   - config, build, publish, cli: tooling
//
// # Usage
//
//	d := errors.Diagnose(err, "components/counter.wcdk").WithSource(src)
//	fmt.Fprint(os.Stderr, d.Format())
//	// Output:
//	// ERROR W003: Unterminated block
//	//
//	//   components/counter.wcdk:9
//	//
//	//        7 │ export default {
//	//        8 │   name: 'my-counter',
//	//   →    9 │   state: {
//	//       10 │     count: 0
//	//
//	//   Hint: Check that every '{' in the script has a matching '}'.
package errors
