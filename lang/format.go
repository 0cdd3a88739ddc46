package lang

import (
	"fmt"
	"strconv"
)

// FormatResult renders a native evaluation result for display.
// Strings are quoted the way they are written in expressions.
func FormatResult(result any) string {
	switch r := result.(type) {
	case nil:
		return "<none>"
	case Value:
		if r.IsNone() {
			return "<none>"
		}

		return r.String()
	case string:
		return quote(r)
	case bool:
		return strconv.FormatBool(r)
	case int64:
		return strconv.FormatInt(r, 10)
	default:
		return fmt.Sprint(r)
	}
}

func typeName(x any) string {
	if x == nil {
		return "nil"
	}

	return fmt.Sprintf("%T", x)
}
