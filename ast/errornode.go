package ast

import "github.com/odvcencio/accparse/token"

// ErrorNode stands in for a construct the parser could not build. It keeps
// every symbol it swallowed, in source order, so the tree still prints the
// original text.
type ErrorNode struct {
	// Intended is the kind the parser was building when it recovered.
	Intended Kind
	// Expected lists the terminals that were legal at the error.
	Expected []token.Kind
	// Lookahead is the token that triggered the error.
	Lookahead *Token

	children []Node
	parent   Node
}

// NewErrorNode creates a placeholder of the intended kind holding
// children, reparenting each. Nil children are skipped.
func NewErrorNode(intended Kind, children ...Node) *ErrorNode {
	e := &ErrorNode{Intended: intended}
	for _, c := range children {
		if c == nil {
			continue
		}
		c.setParent(e)
		e.children = append(e.children, c)
	}
	return e
}

func (e *ErrorNode) Parent() Node     { return e.parent }
func (e *ErrorNode) Len() int         { return len(e.children) }
func (e *ErrorNode) setParent(p Node) { e.parent = p }

func (e *ErrorNode) Child(i int) Node {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// SetChild replaces the i-th child. Storing nil removes it.
func (e *ErrorNode) SetChild(i int, c Node) {
	if i < 0 || i >= len(e.children) {
		return
	}
	if old := e.children[i]; old != c && old.Parent() == Node(e) {
		old.setParent(nil)
	}
	if c == nil {
		e.children = append(e.children[:i], e.children[i+1:]...)
		return
	}
	c.setParent(e)
	e.children[i] = c
}
