package dom

import (
	"errors"
	"sort"

	"github.com/vango-dev/wcdk/pkg/vdom"
)

// Action is a named component behaviour invoked by an event listener.
type Action func()

// Actions maps action names to actions.
type Actions map[string]Action

// Render replaces the target's children with the materialized tree.
//
// Fragments contribute their children directly. Each Events entry becomes one
// listener invoking actions[name]; a binding whose action is missing is
// skipped and reported as an *ActionNotFoundError in the joined result while
// everything else renders normally. A nil v just clears the target.
func Render(v *vdom.VNode, target Target, actions Actions) error {
	target.ClearChildren()
	if v == nil {
		return nil
	}
	var errs []error
	for _, n := range build(v, target, actions, &errs) {
		target.AppendChild(n)
	}
	return errors.Join(errs...)
}

func build(v *vdom.VNode, target Target, actions Actions, errs *[]error) []Node {
	switch v.Kind {
	case vdom.KindText:
		return []Node{target.CreateTextNode(v.Text)}

	case vdom.KindElement:
		el := target.CreateElement(v.Tag)
		for _, a := range v.Attrs {
			el.SetAttribute(a.Key, a.Value)
		}
		bindEvents(el, v, actions, errs)
		for _, c := range v.Children {
			for _, n := range build(c, target, actions, errs) {
				el.AppendChild(n)
			}
		}
		return []Node{el}

	default:
		var out []Node
		for _, c := range v.Children {
			out = append(out, build(c, target, actions, errs)...)
		}
		return out
	}
}

func bindEvents(el Element, v *vdom.VNode, actions Actions, errs *[]error) {
	for _, ev := range sortedEvents(v) {
		name := v.Events[ev]
		action, ok := actions[name]
		if !ok || action == nil {
			*errs = append(*errs, &ActionNotFoundError{Tag: v.Tag, Event: ev, Action: name})
			continue
		}
		el.AddEventListener(ev, action)
	}
}

func sortedEvents(v *vdom.VNode) []string {
	if len(v.Events) == 0 {
		return nil
	}
	events := make([]string, 0, len(v.Events))
	for ev := range v.Events {
		events = append(events, ev)
	}
	sort.Strings(events)
	return events
}

// unbound returns an *ActionNotFoundError for every binding in v, in document
// order, whose action is missing.
func unbound(v *vdom.VNode, actions Actions) []error {
	if v == nil {
		return nil
	}
	var errs []error
	for _, ev := range sortedEvents(v) {
		name := v.Events[ev]
		if action, ok := actions[name]; !ok || action == nil {
			errs = append(errs, &ActionNotFoundError{Tag: v.Tag, Event: ev, Action: name})
		}
	}
	for _, c := range v.Children {
		errs = append(errs, unbound(c, actions)...)
	}
	return errs
}
