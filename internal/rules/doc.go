// Package rules loads rewrite rule sets from CUE.
//
// A rule set file names each rule by its field label and gives both sides as
// s-expressions in the marlang vocabulary:
//
//	iterations: 10
//	rule: "add-zero": {
//		lhs: "(marlang.operator.int.+ (marlang.meta.cons ?x (marlang.meta.cons (marlang.value.int 0) marlang.meta.nil)))"
//		rhs: "?x"
//	}
//
// Rules keep their declaration order; iterations defaults to 30 when omitted.
// Unknown fields are rejected.
package rules
