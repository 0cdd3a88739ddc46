// Package lang implements the criteria expression language: a small grammar
// of booleans, integers, single-quoted strings, comparison, guard, and
// arithmetic operators, parenthesized groups, and variable and function
// references bound by a host-supplied [Resolver].
//
// # Evaluation
//
// An expression is lexed, built, and solved in one call:
//
//	v, err := lang.Evaluate("(foo(3) == bar) ? 'Got It!!!'", resolver)
//
// The lexer resolves every reference as soon as it is read, so the tree
// only ever holds concrete values. Each token is folded into a binary
// [Tree] as it arrives, using operator precedence to decide where it
// attaches. [Tree.Solve] then reduces the tree bottom-up.
//
// # Operators
//
// Binary operators, loosest to tightest:
//
//	?  ||  &&
//	==  !=  >=  >  <=  <
//	+  -
//	*  /  %
//
// Operators of equal precedence associate to the left. The prefix
// operators "!" and "-" bind tighter than any binary operator.
//
// "?" yields its right operand when the left is true, and false otherwise.
// "||" and "&&" require a boolean left operand; when it does not decide the
// result, the right operand is returned as-is, whatever its kind. None of
// the three evaluates its right operand unless it is selected.
//
// # Types
//
// Values never convert between kinds. Comparing a number with a string is
// [ErrInvalidOperation], not false. A reference with no binding resolves
// to [None], which is a legal operand until an operator rejects it.
//
// # Function Arguments
//
// Arguments are a comma-separated list of literals and references. They
// are not general expressions: "f(1 + 2)" is a syntax error.
package lang
