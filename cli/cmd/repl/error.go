package repl

import "github.com/ardnew/criteria/lang"

// Predefined errors (sentinel values).
var (
	ErrOutOfBounds  = lang.NewError("index out of range")
	ErrNoEvaluator  = lang.NewError("no evaluator")
	ErrUnknownInput = lang.NewError("unknown command")
)
