package cmd

import "github.com/ardnew/criteria/lang"

// Predefined errors (sentinel values).
var (
	ErrReadInput = lang.NewError("read input")
	ErrEvaluate  = lang.NewError("evaluate expression")
	ErrBadCount  = lang.NewError("count must be positive")
	ErrNoStore   = lang.NewError("no binding store (use --db)")
	ErrBadName   = lang.NewError("invalid variable name")
)
