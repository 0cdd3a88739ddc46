package lang

import "sync"

// Resolver supplies values for the variable and function references found
// in an expression. Both methods are called synchronously while the
// expression is lexed. Returning [None] means the name has no binding.
//
// A Resolver shared between goroutines must be safe for concurrent use.
type Resolver interface {
	HandleVariable(name string) Value
	HandleFunction(name string, args []Value) Value
}

// RefKind distinguishes the two kinds of reference passed to a [ResolveFunc].
type RefKind uint8

const (
	RefVariable RefKind = iota // variable
	RefFunction                // function
)

func (k RefKind) String() string {
	if k == RefFunction {
		return "function"
	}

	return "variable"
}

// ResolveFunc adapts a single callback to the [Resolver] interface.
// Variables are passed with nil args.
type ResolveFunc func(kind RefKind, name string, args []Value) Value

// HandleVariable implements [Resolver].
func (f ResolveFunc) HandleVariable(name string) Value {
	if f == nil {
		return None()
	}

	return f(RefVariable, name, nil)
}

// HandleFunction implements [Resolver].
func (f ResolveFunc) HandleFunction(name string, args []Value) Value {
	if f == nil {
		return None()
	}

	return f(RefFunction, name, args)
}

// Default returns the shared resolver that binds nothing.
var Default = sync.OnceValue(func() Resolver { return unbound{} })

type unbound struct{}

func (unbound) HandleVariable(string) Value          { return None() }
func (unbound) HandleFunction(string, []Value) Value { return None() }
