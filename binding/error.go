package binding

import "github.com/ardnew/criteria/lang"

// Predefined errors (sentinel values).
var (
	ErrInvalidBinding = lang.NewError("invalid binding")
	ErrArity          = lang.NewError("wrong number of arguments")
	ErrCompile        = lang.NewError("function compile failed")
	ErrRun            = lang.NewError("function run failed")
	ErrDecode         = lang.NewError("bindings decode failed")
	ErrStore          = lang.NewError("binding store failure")
	ErrStoreClosed    = lang.NewError("binding store closed")
)
