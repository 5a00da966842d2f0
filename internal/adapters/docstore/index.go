package docstore

import "math/rand"

// index is a treap over one numeric field of a collection.
//
// Ordering: value DESC, then id ASC. In-order traversal yields the
// descending order; reverse in-order yields ascending.
type index struct {
	field string
	root  *node
}

type node struct {
	id    string
	value float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func newIndex(field string) *index {
	return &index{field: field}
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// before reports whether (aValue, aID) sorts ahead of (bValue, bID).
func before(aValue float64, aID string, bValue float64, bID string) bool {
	if aValue != bValue {
		return aValue > bValue
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insertNode(n *node, id string, value float64, prio uint64) *node {
	if n == nil {
		return &node{id: id, value: value, prio: prio, size: 1}
	}
	if before(value, id, n.value, n.id) {
		n.left = insertNode(n.left, id, value, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insertNode(n.right, id, value, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// put indexes id under value. Documents are append-only and ids unique per
// collection, so an id is never put twice.
func (ix *index) put(id string, value float64) {
	ix.root = insertNode(ix.root, id, value, rand.Uint64()) //nolint:gosec // treap priority
}

func (ix *index) len() int { return nsize(ix.root) }

// walk visits ids in index order until fn returns false.
func (ix *index) walk(descending bool, fn func(id string) bool) {
	if descending {
		walkDesc(ix.root, fn)
		return
	}
	walkAsc(ix.root, fn)
}

func walkDesc(n *node, fn func(string) bool) bool {
	if n == nil {
		return true
	}
	if !walkDesc(n.left, fn) {
		return false
	}
	if !fn(n.id) {
		return false
	}
	return walkDesc(n.right, fn)
}

func walkAsc(n *node, fn func(string) bool) bool {
	if n == nil {
		return true
	}
	if !walkAsc(n.right, fn) {
		return false
	}
	if !fn(n.id) {
		return false
	}
	return walkAsc(n.left, fn)
}
