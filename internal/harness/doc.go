// Package harness runs YAML scenarios against the todo service.
//
// A scenario is a list of user actions applied to a fresh store with
// deterministic ids ("todo-0001", ...) and timestamps. Every step is
// recorded in a trace that notes whether the list actually changed, which
// makes no-op behaviour (toggling to the same state, clearing with nothing
// completed) visible and comparable against golden files.
//
// # Scenario Format
//
//	name: clear_completed
//	description: "Clearing removes only completed todos"
//	seed:
//	  - text: Write report
//	    as: report
//	steps:
//	  - action: add
//	    text: Buy milk
//	    as: milk
//	  - action: toggle
//	    ref: milk
//	  - action: clear_completed
//	    expect: { total: 1 }
//	  - action: remove
//	    ref: milk
//	    error: NOT_FOUND
//	expect:
//	  total: 1
//	  texts: [Write report]
//	assertions:
//	  - type: trace_count
//	    action: toggle
//	    count: 1
//	  - type: final_state
//	    ref: report
//	    expect: { completed: false }
//
// # Actions
//
//   - add: text, tags, as
//   - toggle, remove: ref
//   - set: ref, completed
//   - edit: ref, text (empty text removes)
//   - retag: ref, tags
//   - toggle_all, clear_completed
//
// A ref is an alias introduced with "as", or a literal todo id.
//
// # Assertions
//
//   - trace_contains: a step with the action (and ref, if given) ran
//   - trace_order: actions ran in this order
//   - trace_count: the action ran exactly count times
//   - final_state: the referenced todo has the expected fields, or is absent
package harness
