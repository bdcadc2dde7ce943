package ast

import (
	"errors"
	"fmt"

	"github.com/odvcencio/accparse/token"
)

var (
	// ErrChildNotFound is returned when a node is not a child of the
	// parent it was looked up in.
	ErrChildNotFound = errors.New("ast: node is not a child of parent")
	// ErrRootNode is returned when removing or replacing a node that has
	// no parent.
	ErrRootNode = errors.New("ast: node has no parent")
	// ErrCycle is returned when the replacement contains the parent it
	// would be stored in.
	ErrCycle = errors.New("ast: replacement is an ancestor of the parent")
)

// ReplaceChild stores repl in the slot of parent that holds old, matched
// by identity. A nil repl empties the slot; in a list it removes the
// element. repl is first detached from wherever it sits, which may be
// another slot of parent. old is detached.
func ReplaceChild(parent, old, repl Node) error {
	if parent == nil || old == nil {
		return fmt.Errorf("replace child: %w", ErrChildNotFound)
	}
	if indexOf(parent, old) < 0 {
		return fmt.Errorf("replace %s in %s: %w", describe(old), describe(parent), ErrChildNotFound)
	}
	if old == repl {
		return nil
	}
	if repl != nil {
		if repl == parent || IsAncestor(repl, parent) {
			return fmt.Errorf("replace %s in %s: %w", describe(old), describe(parent), ErrCycle)
		}
		if p := repl.Parent(); p != nil {
			if err := ReplaceChild(p, repl, nil); err != nil {
				return err
			}
		}
	}
	// Detaching repl may have shifted list elements.
	i := indexOf(parent, old)
	if i < 0 {
		return fmt.Errorf("replace %s in %s: %w", describe(old), describe(parent), ErrChildNotFound)
	}
	parent.SetChild(i, repl)
	old.setParent(nil)
	return nil
}

// Remove detaches n from its parent.
func Remove(n Node) error {
	if n == nil || n.Parent() == nil {
		return fmt.Errorf("remove %s: %w", describe(n), ErrRootNode)
	}
	return ReplaceChild(n.Parent(), n, nil)
}

// ReplaceWith puts repl where n is in the tree. n is detached.
func ReplaceWith(n, repl Node) error {
	if n == nil || n.Parent() == nil {
		return fmt.Errorf("replace %s: %w", describe(n), ErrRootNode)
	}
	return ReplaceChild(n.Parent(), n, repl)
}

// ReplaceWithText replaces n by a copy of itself that prints as text. The
// copy's first token carries text and keeps n's leading whitespace, its
// last token keeps n's trailing whitespace, and every other token becomes
// empty. The copy is returned.
func ReplaceWithText(n Node, text string) (Node, error) {
	if n == nil || n.Parent() == nil {
		return nil, fmt.Errorf("replace %s with text: %w", describe(n), ErrRootNode)
	}
	repl := Clone(n)
	toks := All[*Token](repl)
	if len(toks) == 0 {
		return nil, fmt.Errorf("replace %s with text: node has no tokens", describe(n))
	}
	last := len(toks) - 1
	for i, t := range toks {
		if i > 0 {
			t.WhiteBefore = ""
			t.Text = ""
		}
		if i < last {
			t.WhiteAfter = ""
		}
	}
	toks[0].Text = text
	if err := ReplaceWith(n, repl); err != nil {
		return nil, err
	}
	return repl, nil
}

// Clone returns a deep copy of n. The copy is detached and shares no
// mutable state with n.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	toks := map[*Token]*Token{}
	c := clone(n, toks)
	// Error lookaheads normally point into the node's own children.
	for e := range Preorder(c) {
		if e, ok := e.(*ErrorNode); ok && e.Lookahead != nil {
			if t, ok := toks[e.Lookahead]; ok {
				e.Lookahead = t
			} else {
				cp := *e.Lookahead
				cp.parent = nil
				e.Lookahead = &cp
			}
		}
	}
	return c
}

func clone(n Node, toks map[*Token]*Token) Node {
	switch n := n.(type) {
	case *Token:
		cp := *n
		cp.parent = nil
		toks[n] = &cp
		return &cp
	case *Branch:
		cp := NewBranch(n.kind)
		for i, c := range n.slots {
			if c != nil {
				cp.SetChild(i, clone(c, toks))
			}
		}
		return cp
	case *List:
		cp := &List{}
		for _, e := range n.elems {
			cp.Append(clone(e, toks))
		}
		return cp
	case *SeparatedList:
		cp := &SeparatedList{}
		for i, e := range n.elems {
			var sep *Token
			if s := n.seps[i]; s != nil {
				sep = clone(s, toks).(*Token)
			}
			cp.Append(sep, clone(e, toks))
		}
		return cp
	case *ErrorNode:
		cp := &ErrorNode{
			Intended:  n.Intended,
			Expected:  append([]token.Kind(nil), n.Expected...),
			Lookahead: n.Lookahead,
		}
		for _, c := range n.children {
			cc := clone(c, toks)
			cc.setParent(cp)
			cp.children = append(cp.children, cc)
		}
		return cp
	}
	panic(fmt.Sprintf("ast: clone of unexpected node type %T", n))
}

func describe(n Node) string {
	switch n := n.(type) {
	case nil:
		return "<nil>"
	case *Token:
		return fmt.Sprintf("token %q", n.Text)
	case *List, *SeparatedList:
		return "list"
	}
	return KindOf(n).String()
}
