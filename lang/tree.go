package lang

import (
	"cmp"
	"strings"
)

// nodeID addresses a node in a [Tree]'s arena.
type nodeID int32

const nilNode nodeID = -1

type slot uint8

const (
	slotLeft slot = iota
	slotRight
)

type node struct {
	value  Value
	parent nodeID
	left   nodeID
	right  nodeID
}

// Tree is a binary expression tree built incrementally, one token at a time.
//
// Nodes live in an arena and refer to each other by index. Parent links are
// used only to walk upward while inserting; ownership runs strictly from
// parent to child.
type Tree struct {
	nodes  []node
	groups []nodeID // open groups, innermost last
	root   nodeID
	last   nodeID // frontier: most recently placed node
}

func newTree() *Tree {
	return &Tree{root: nilNode, last: nilNode}
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Empty reports whether no token has been placed in the tree.
func (t *Tree) Empty() bool { return t == nil || t.root == nilNode }

func (t *Tree) alloc(v Value) nodeID {
	t.nodes = append(t.nodes, node{
		value:  v,
		parent: nilNode,
		left:   nilNode,
		right:  nilNode,
	})

	return nodeID(len(t.nodes) - 1)
}

// top returns the ultimate ancestor of the last known root.
func (t *Tree) top() nodeID {
	if t.root == nilNode {
		return nilNode
	}

	for p := t.nodes[t.root].parent; p != nilNode; p = t.nodes[p].parent {
		t.root = p
	}

	return t.root
}

// open reports whether id is the innermost open group.
func (t *Tree) open(id nodeID) bool {
	return len(t.groups) > 0 && t.groups[len(t.groups)-1] == id
}

// append folds v into the tree. It returns false if v cannot legally be
// placed given the tree built so far.
func (t *Tree) append(v Value) bool {
	if v.kind == KindGroupClose {
		return t.close()
	}

	id := t.alloc(v)

	if t.last == nilNode {
		t.root = id
		t.advance(id)

		return true
	}

	root := t.top()
	prev := nilNode

	for a := t.last; a != nilNode; prev, a = a, t.nodes[a].parent {
		c := t.compare(a, v)

		switch {
		case a == root && c <= 0:
			if !t.takesLeft(id) {
				return false
			}

			t.link(id, slotLeft, a)
			t.root = id

		case c == 0:
			parent := t.nodes[a].parent
			s := t.slotOf(a)

			if !t.takesLeft(id) || !t.accepts(parent, s, v) {
				return false
			}

			t.link(parent, s, id)
			t.link(id, slotLeft, a)

		case c > 0 && t.open(a):
			child := t.nodes[a].left
			if (child != nilNode) != t.takesLeft(id) {
				return false
			}

			if child != nilNode {
				t.link(id, slotLeft, child)
			}

			t.link(a, slotLeft, id)

		case c > 0 && prev != nilNode:
			s := t.slotOf(prev)

			if !t.takesLeft(id) || !t.accepts(a, s, v) {
				return false
			}

			t.link(a, s, id)
			t.link(id, slotLeft, prev)

		case c > 0:
			if t.takesLeft(id) || t.nodes[a].right != nilNode ||
				!t.accepts(a, slotRight, v) {
				return false
			}

			t.link(a, slotRight, id)

		default:
			continue
		}

		t.advance(id)

		return true
	}

	return false
}

// close pops the innermost open group, which becomes the frontier.
func (t *Tree) close() bool {
	n := len(t.groups)
	if n == 0 {
		return false
	}

	t.last = t.groups[n-1]
	t.groups = t.groups[:n-1]

	return true
}

func (t *Tree) advance(id nodeID) {
	t.last = id

	if t.nodes[id].value.kind == KindGroupOpen {
		t.groups = append(t.groups, id)
	}
}

// compare returns the insertion priority of node a relative to v: positive
// when a binds tighter than v, zero when they tie, negative otherwise.
// The innermost open group outranks everything so insertion cannot climb
// past it.
func (t *Tree) compare(a nodeID, v Value) int {
	if t.open(a) {
		return 1
	}

	x := t.nodes[a].value

	c := cmp.Compare(x.rank(), v.rank())
	if c == 0 && x.kind == KindOperation && v.kind == KindOperation {
		return -cmp.Compare(x.precedence(), v.precedence())
	}

	return c
}

// takesLeft reports whether the new node id owns a left child. Only binary
// operators do, and they must always be given one.
func (t *Tree) takesLeft(id nodeID) bool {
	return t.nodes[id].value.kind == KindOperation
}

// accepts reports whether parent can take a child holding v in slot s.
func (t *Tree) accepts(parent nodeID, s slot, v Value) bool {
	if parent == nilNode {
		return false
	}

	switch t.nodes[parent].value.kind {
	case KindOperation:
		return true
	case KindGroupOpen:
		return s == slotLeft
	case KindPrefix:
		return s == slotRight && (v.kind.IsOperand() || v.kind == KindGroupOpen)
	default:
		return false
	}
}

func (t *Tree) slotOf(id nodeID) slot {
	if p := t.nodes[id].parent; p != nilNode && t.nodes[p].left == id {
		return slotLeft
	}

	return slotRight
}

// link makes child the s-slot child of parent, replacing whatever occupied
// that slot. The displaced node, if any, must be re-linked by the caller.
func (t *Tree) link(parent nodeID, s slot, child nodeID) {
	if s == slotLeft {
		t.nodes[parent].left = child
	} else {
		t.nodes[parent].right = child
	}

	t.nodes[child].parent = parent
}

// String renders the tree as an s-expression, for example
// "(+ 1 (* 2 3))" for "1 + 2 * 3". Groups render as "(group x)".
func (t *Tree) String() string {
	if t.Empty() {
		return ""
	}

	var b strings.Builder

	t.format(&b, t.top())

	return b.String()
}

func (t *Tree) format(b *strings.Builder, id nodeID) {
	if id == nilNode {
		b.WriteString("_")

		return
	}

	n := t.nodes[id]

	switch n.value.kind {
	case KindPrefix:
		b.WriteString("(")
		b.WriteString(n.value.text)
		b.WriteString(" ")
		t.format(b, n.right)
		b.WriteString(")")

	case KindOperation:
		b.WriteString("(")
		b.WriteString(n.value.text)
		b.WriteString(" ")
		t.format(b, n.left)
		b.WriteString(" ")
		t.format(b, n.right)
		b.WriteString(")")

	case KindGroupOpen:
		b.WriteString("(group ")
		t.format(b, n.left)
		b.WriteString(")")

	default:
		b.WriteString(n.value.String())
	}
}
