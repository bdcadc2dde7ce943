package ast

import "iter"

// Match is a node predicate used by the Find functions.
type Match func(Node) bool

// OfKind matches branches and error nodes of any of the given kinds. An
// error node also matches the kind it stands in for.
func OfKind(kinds ...Kind) Match {
	return func(n Node) bool {
		k := KindOf(n)
		e, isErr := n.(*ErrorNode)
		for _, want := range kinds {
			if k == want || (isErr && e.Intended == want) {
				return true
			}
		}
		return false
	}
}

// WithTag matches nodes carrying every tag in t.
func WithTag(t Tag) Match {
	return func(n Node) bool { return TagsOf(n).Has(t) }
}

// IsToken matches tokens.
func IsToken(n Node) bool {
	_, ok := n.(*Token)
	return ok
}

// IsError matches recovery placeholders.
func IsError(n Node) bool {
	_, ok := n.(*ErrorNode)
	return ok
}

// Preorder returns an iterator over the tree rooted at n in pre-order,
// starting with n itself.
func Preorder(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		preorder(n, yield)
	}
}

func preorder(n Node, yield func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !yield(n) {
		return false
	}
	for i := 0; i < n.Len(); i++ {
		if !preorder(n.Child(i), yield) {
			return false
		}
	}
	return true
}

// FindAll returns every node under n, n included, that matches m, in
// pre-order.
func FindAll(n Node, m Match) []Node {
	var out []Node
	for c := range Preorder(n) {
		if m(c) {
			out = append(out, c)
		}
	}
	return out
}

// FindFirst returns the first node in pre-order that matches m, or nil.
// The traversal stops at the first match.
func FindFirst(n Node, m Match) Node {
	for c := range Preorder(n) {
		if m(c) {
			return c
		}
	}
	return nil
}

// FindLast returns the last node in pre-order that matches m, or nil.
func FindLast(n Node, m Match) Node {
	var last Node
	for c := range Preorder(n) {
		if m(c) {
			last = c
		}
	}
	return last
}

// All returns every node of type T under n in pre-order.
func All[T Node](n Node) []T {
	var out []T
	for c := range Preorder(n) {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// FindNearestAncestor returns the closest proper ancestor of n that
// matches m, or nil.
func FindNearestAncestor(n Node, m Match) Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if m(p) {
			return p
		}
	}
	return nil
}

// FindFirstToken returns the first token under n, or nil.
func FindFirstToken(n Node) *Token {
	t, _ := FindFirst(n, IsToken).(*Token)
	return t
}

// FindLastToken returns the last token under n, or nil.
func FindLastToken(n Node) *Token {
	t, _ := FindLast(n, IsToken).(*Token)
	return t
}

// Root returns the root of the tree containing n.
func Root(n Node) Node {
	for n != nil && n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// IsAncestor reports whether a is a proper ancestor of n.
func IsAncestor(a, n Node) bool {
	if a == nil || n == nil {
		return false
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p == a {
			return true
		}
	}
	return false
}

// NextSibling returns the next non-empty slot after n in its parent, or
// nil.
func NextSibling(n Node) Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	for i := indexOf(p, n) + 1; i > 0 && i < p.Len(); i++ {
		if c := p.Child(i); c != nil {
			return c
		}
	}
	return nil
}

// PrevSibling returns the closest non-empty slot before n in its parent,
// or nil.
func PrevSibling(n Node) Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	for i := indexOf(p, n) - 1; i >= 0; i-- {
		if c := p.Child(i); c != nil {
			return c
		}
	}
	return nil
}

// IsFirstChildInList reports whether n is the first element of the list
// or separated list that holds it.
func IsFirstChildInList(n Node) bool {
	switch p := n.Parent().(type) {
	case *List:
		return len(p.elems) > 0 && p.elems[0] == n
	case *SeparatedList:
		return len(p.elems) > 0 && p.elems[0] == n
	}
	return false
}
