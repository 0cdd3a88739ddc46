package lang

// precedence orders binary operators from loosest to tightest binding.
type precedence uint8

const (
	precGuard          precedence = iota + 1 // ? || &&
	precRelational                           // == != >= > <= <
	precAdditive                             // + -
	precMultiplicative                       // * / %
)

var operators = map[string]precedence{
	"?":  precGuard,
	"||": precGuard,
	"&&": precGuard,
	"==": precRelational,
	"!=": precRelational,
	">=": precRelational,
	">":  precRelational,
	"<=": precRelational,
	"<":  precRelational,
	"+":  precAdditive,
	"-":  precAdditive,
	"*":  precMultiplicative,
	"/":  precMultiplicative,
	"%":  precMultiplicative,
}

var prefixes = map[string]struct{}{
	"!": {},
	"-": {},
}

// rank is the structural priority of a token during tree insertion.
// Operands and groups rank lowest, then prefixes, then binary operators.
func (v Value) rank() int {
	switch v.kind {
	case KindPrefix:
		return 1
	case KindOperation:
		return 2
	default:
		return 0
	}
}

func (v Value) precedence() precedence {
	return operators[v.text]
}
