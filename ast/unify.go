package ast

import "github.com/odvcencio/accparse/token"

// Unify matches tree against pattern structurally, ignoring whitespace.
// Name tokens in the pattern act as variables: each binds to the text of
// the name at the same place in tree, and a variable must
// bind to the same text everywhere it appears. All other tokens must
// match exactly. The returned map sends pattern identifiers to the texts
// they matched.
func Unify(pattern, tree Node) (map[string]string, bool) {
	names := map[string]string{}
	if !unify(pattern, tree, names) {
		return nil, false
	}
	return names, true
}

func unify(p, t Node, names map[string]string) bool {
	if p == nil || t == nil {
		return p == nil && t == nil
	}
	switch p := p.(type) {
	case *Token:
		tt, ok := t.(*Token)
		if !ok {
			return false
		}
		if isName(p) && isName(tt) {
			if bound, ok := names[p.Text]; ok {
				return bound == tt.Text
			}
			names[p.Text] = tt.Text
			return true
		}
		return p.Kind == tt.Kind && p.Text == tt.Text
	case *Branch:
		tb, ok := t.(*Branch)
		if !ok || tb.kind != p.kind {
			return false
		}
	case *List:
		if _, ok := t.(*List); !ok {
			return false
		}
	case *SeparatedList:
		if _, ok := t.(*SeparatedList); !ok {
			return false
		}
	case *ErrorNode:
		te, ok := t.(*ErrorNode)
		if !ok || te.Intended != p.Intended {
			return false
		}
	}
	if p.Len() != t.Len() {
		return false
	}
	for i := 0; i < p.Len(); i++ {
		if !unify(p.Child(i), t.Child(i), names) {
			return false
		}
	}
	return true
}

// isName reports whether t names a variable. Keywords count when they sit
// where the grammar expects a name, as in copyin(device).
func isName(t *Token) bool {
	if t.Kind == token.IDENTIFIER {
		return true
	}
	if !t.Kind.IsKeyword() {
		return false
	}
	b, ok := t.Parent().(*Branch)
	return ok && (b.kind == Identifier || b.kind == IdentifierExpr)
}
