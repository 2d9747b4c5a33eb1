// Package sfc parses single-file component sources.
//
// A source is a sequence of sections separated by "---":
//
//	<!-- preamble, ignored -->
//	---
//	<button @click="inc">{{count}}</button>
//	---
//	<style src="./counter.css"></style>
//	---
//	export default {
//	  name: 'my-counter',
//	  props: {
//	    count: (Number, default 0)
//	  },
//	  state: {
//	    count: 0
//	  },
//	  methods: {
//	    inc() { state.count = state.count + 1 }
//	  }
//	}
//
// The second section is the template, the third the style reference and the
// fourth the script. Parse extracts a Definition from the script blocks:
// prop declarations keep their default as raw expression text, state values
// are evaluated immediately by the restricted evaluator in package expr, and
// method bodies are kept as raw text.
package sfc
