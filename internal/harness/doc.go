// Package harness runs marlang scenarios: a program given as commands, the
// rules it is simplified with, and assertions about the result.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: add_zero
//	description: "(+ y 0) simplifies to y"
//	rules: ../../rules/testdata/arith.cue
//	rewrites:
//	  - name: extra
//	    lhs: "(marlang.operator.core.not (marlang.operator.core.not ?p))"
//	    rhs: "?p"
//	iterations: 5
//	commands:
//	  - "(marlang.command.assert ...)"
//	assertions:
//	  - type: best
//	    expect: "(marlang.meta.cons ...)"
//	  - type: equivalent
//	    lhs: "..."
//	    rhs: "..."
//
// The rules path is relative to the scenario file. Commands are committed in
// order and form the program root. Unknown fields are rejected.
//
// # Assertion Types
//
//   - best, any: the extracted or as-built program equals expect
//   - best_of: the smallest term equivalent to term equals expect
//   - equivalent, not_equivalent: lhs and rhs are (not) known to be equal
//   - explains: an explanation of lhs = rhs exists and, when rule is set,
//     uses that rule
//   - constant: the resolved constant of term prints as expect
//   - stop_reason: the runner stopped for reason expect
//   - sorts: the simplified program is well sorted, or, when expect is set,
//     fails with an error containing it
//
// # Golden Files
//
// RunWithGolden compares a canonical JSON snapshot of the run against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
