package ast

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses the tree rooted at node in depth-first order, skipping
// empty slots.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	for i := 0; i < node.Len(); i++ {
		if c := node.Child(i); c != nil {
			Walk(v, c)
		}
	}
	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at node, calling f for each node and
// then f(nil) after its children. Children are skipped when f returns
// false.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Handlers dispatches each node to the handlers registered for it. For a
// branch or error node it calls, in order, the handler for its kind, the
// handler for each tag it carries (lowest tag first) and Default. The
// node's children are visited afterwards unless one of those handlers
// returned false. Handlers left nil descend, so a caller only registers
// the granularity it cares about.
type Handlers struct {
	Kinds   map[Kind]func(Node) bool
	Tags    map[Tag]func(Node) bool
	Default func(Node) bool
	// Token is called for every token.
	Token func(*Token)
	// List is called for lists and separated lists.
	List func(Node) bool
}

// Visit implements Visitor.
func (h *Handlers) Visit(node Node) Visitor {
	if node == nil {
		return nil
	}
	if t, ok := node.(*Token); ok {
		if h.Token != nil {
			h.Token(t)
		}
		return nil
	}
	descend := true
	call := func(f func(Node) bool) {
		if f != nil && !f(node) {
			descend = false
		}
	}
	switch node.(type) {
	case *List, *SeparatedList:
		call(h.List)
	default:
		call(h.Kinds[KindOf(node)])
		for _, tag := range TagsOf(node).Each() {
			call(h.Tags[tag])
		}
		call(h.Default)
	}
	if !descend {
		return nil
	}
	return h
}

// Accept walks node with h.
func (h *Handlers) Accept(node Node) { Walk(h, node) }
