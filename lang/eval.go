package lang

import "log/slog"

// Solve reduces the tree to a single value.
//
// The guard operators short-circuit: the right operand of "?", "||", and
// "&&" is evaluated only when the left operand selects it.
func (t *Tree) Solve() (Value, error) {
	if t.Empty() {
		return None(), ErrEmptyExpression
	}

	return t.solve(t.top())
}

func (t *Tree) solve(id nodeID) (Value, error) {
	n := t.nodes[id]

	switch n.value.kind {
	case KindNone, KindBoolean, KindNumber, KindString:
		return n.value, nil

	case KindPrefix:
		if n.right == nilNode {
			return None(), t.illFormed(id, "prefix without operand")
		}

		x, err := t.solve(n.right)
		if err != nil {
			return None(), err
		}

		if n.value.text == "!" {
			return x.Not()
		}

		return x.Neg()

	case KindOperation:
		if n.left == nilNode || n.right == nilNode {
			return None(), t.illFormed(id, "operation without two operands")
		}

		return t.operate(n.value.text, n.left, n.right)

	case KindGroupOpen:
		if n.left == nilNode {
			return None(), t.illFormed(id, "empty group")
		}

		return t.solve(n.left)
	}

	return None(), t.illFormed(id, "unexpected node")
}

func (t *Tree) operate(op string, l, r nodeID) (Value, error) {
	left, err := t.solve(l)
	if err != nil {
		return None(), err
	}

	switch op {
	case "?":
		if b, err := left.Bool(); err == nil && b {
			return t.solve(r)
		}

		return Bool(false), nil

	case "||", "&&":
		b, err := left.Bool()
		if err != nil {
			return None(), invalid(op, left)
		}

		if b == (op == "||") {
			return Bool(b), nil
		}

		return t.solve(r)
	}

	right, err := t.solve(r)
	if err != nil {
		return None(), err
	}

	return left.apply(op, right)
}

func (t *Tree) illFormed(id nodeID, reason string) error {
	return ErrIllFormedTree.With(
		slog.String("reason", reason),
		slog.String("node", t.nodes[id].value.String()),
	)
}
