// Package ast implements the syntax tree of an OpenACC directive.
//
// Every node exposes the same small surface: a parent link and a fixed,
// indexed set of child slots. Concrete directive, clause and expression
// nodes are all *Branch values whose Kind selects a Schema naming the
// slots and the capability tags, so traversal, search, mutation, cloning
// and printing are written once for the whole tree.
package ast

import (
	"unicode/utf8"

	"github.com/odvcencio/accparse/token"
)

// Node is a syntax tree node. A nil slot is reported as a nil Node, never
// as a typed nil.
type Node interface {
	// Parent returns the node's parent, or nil if it is the root.
	Parent() Node
	// Len returns the number of child slots, including empty ones.
	Len() int
	// Child returns the i-th slot, or nil if it is empty or out of range.
	Child(i int) Node
	// SetChild stores c in the i-th slot and reparents it.
	SetChild(i int, c Node)

	setParent(p Node)
}

// Token is a terminal leaf. It keeps the whitespace and comments that
// surrounded it in the source so the tree reprints verbatim.
type Token struct {
	Kind        token.Kind
	Text        string
	Pos         token.Position
	WhiteBefore string
	WhiteAfter  string

	parent Node
}

// NewToken creates a detached token.
func NewToken(kind token.Kind, text string) *Token {
	return &Token{Kind: kind, Text: text}
}

func (t *Token) Parent() Node        { return t.parent }
func (t *Token) Len() int            { return 0 }
func (t *Token) Child(i int) Node    { return nil }
func (t *Token) SetChild(int, Node)  {}
func (t *Token) setParent(p Node)    { t.parent = p }
func (t *Token) String() string      { return t.WhiteBefore + t.Text + t.WhiteAfter }
func (t *Token) End() token.Position { return advance(t.Pos, t.Text) }

func advance(p token.Position, s string) token.Position {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		p = p.Advance(r, size)
		s = s[size:]
	}
	return p
}

// Branch is an interior node whose slot layout and tags come from the
// schema of its Kind.
type Branch struct {
	kind   Kind
	slots  []Node
	parent Node
}

// NewBranch creates a detached node of the given kind with empty slots.
func NewBranch(kind Kind) *Branch {
	return &Branch{kind: kind, slots: make([]Node, len(kind.Slots()))}
}

// Kind returns the node's kind.
func (b *Branch) Kind() Kind { return b.kind }

func (b *Branch) Parent() Node     { return b.parent }
func (b *Branch) Len() int         { return len(b.slots) }
func (b *Branch) setParent(p Node) { b.parent = p }

func (b *Branch) Child(i int) Node {
	if i < 0 || i >= len(b.slots) {
		return nil
	}
	return b.slots[i]
}

func (b *Branch) SetChild(i int, c Node) {
	if i < 0 || i >= len(b.slots) {
		return
	}
	if old := b.slots[i]; old != nil && old != c && old.Parent() == Node(b) {
		old.setParent(nil)
	}
	b.slots[i] = c
	if c != nil {
		c.setParent(b)
	}
}

// Get returns the child in the named slot, or nil if the slot is empty or
// the kind has no such slot.
func (b *Branch) Get(slot string) Node {
	return b.Child(b.kind.Slot(slot))
}

// Set stores c in the named slot. It reports false if the kind has no such
// slot.
func (b *Branch) Set(slot string, c Node) bool {
	i := b.kind.Slot(slot)
	if i < 0 {
		return false
	}
	b.SetChild(i, c)
	return true
}

// Token returns the token in the named slot, or nil.
func (b *Branch) Token(slot string) *Token {
	t, _ := b.Get(slot).(*Token)
	return t
}

// Children returns the non-empty slots of n in order.
func Children(n Node) []Node {
	if n == nil {
		return nil
	}
	out := make([]Node, 0, n.Len())
	for i := 0; i < n.Len(); i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// KindOf returns the kind of a branch or error node, and Invalid for
// tokens and lists.
func KindOf(n Node) Kind {
	switch n := n.(type) {
	case *Branch:
		return n.kind
	case *ErrorNode:
		return Error
	}
	return Invalid
}

// TagsOf returns the capability tags of n. An error node carries the tags
// of the kind it stands in for plus TagError.
func TagsOf(n Node) Tag {
	switch n := n.(type) {
	case *Branch:
		return n.kind.Tags()
	case *ErrorNode:
		return n.Intended.Tags() | TagError
	}
	return 0
}

// indexOf returns the slot holding c by identity, or -1.
func indexOf(parent, c Node) int {
	for i := 0; i < parent.Len(); i++ {
		if parent.Child(i) == c {
			return i
		}
	}
	return -1
}
