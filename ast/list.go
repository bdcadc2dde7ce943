package ast

// List is an ordered sequence of nodes, such as the tokens of adjacent
// string literals.
type List struct {
	elems  []Node
	parent Node
}

// NewList creates a list holding elems, reparenting each.
func NewList(elems ...Node) *List {
	l := &List{}
	for _, e := range elems {
		l.Append(e)
	}
	return l
}

// Append adds e to the end of the list. Nil elements are ignored.
func (l *List) Append(e Node) {
	if e == nil {
		return
	}
	e.setParent(l)
	l.elems = append(l.elems, e)
}

// Elems returns the elements. The slice must not be modified.
func (l *List) Elems() []Node { return l.elems }

func (l *List) Parent() Node     { return l.parent }
func (l *List) Len() int         { return len(l.elems) }
func (l *List) setParent(p Node) { l.parent = p }

func (l *List) Child(i int) Node {
	if i < 0 || i >= len(l.elems) {
		return nil
	}
	return l.elems[i]
}

// SetChild replaces the i-th element. Storing nil removes the element.
func (l *List) SetChild(i int, c Node) {
	if i < 0 || i >= len(l.elems) {
		return
	}
	if old := l.elems[i]; old != c && old.Parent() == Node(l) {
		old.setParent(nil)
	}
	if c == nil {
		l.elems = append(l.elems[:i], l.elems[i+1:]...)
		return
	}
	c.setParent(l)
	l.elems[i] = c
}

// SeparatedList is an ordered sequence of elements, each preceded by an
// optional separator token. Children interleave separators and elements:
// slot 2i is the separator before element i and slot 2i+1 the element.
// The first separator is always empty, and so is the separator of clauses
// written side by side without a comma.
type SeparatedList struct {
	seps   []*Token
	elems  []Node
	parent Node
}

// NewSeparatedList creates a list whose first element is first.
func NewSeparatedList(first Node) *SeparatedList {
	l := &SeparatedList{}
	l.Append(nil, first)
	return l
}

// Append adds elem, preceded by sep (which may be nil).
func (l *SeparatedList) Append(sep *Token, elem Node) {
	if elem == nil {
		return
	}
	if sep != nil {
		sep.setParent(l)
	}
	elem.setParent(l)
	l.seps = append(l.seps, sep)
	l.elems = append(l.elems, elem)
}

// Elems returns the elements without separators. The slice must not be
// modified.
func (l *SeparatedList) Elems() []Node { return l.elems }

// Separator returns the separator preceding element i, or nil.
func (l *SeparatedList) Separator(i int) *Token {
	if i < 0 || i >= len(l.seps) {
		return nil
	}
	return l.seps[i]
}

func (l *SeparatedList) Parent() Node     { return l.parent }
func (l *SeparatedList) Len() int         { return 2 * len(l.elems) }
func (l *SeparatedList) setParent(p Node) { l.parent = p }

func (l *SeparatedList) Child(i int) Node {
	if i < 0 || i >= l.Len() {
		return nil
	}
	if i%2 == 0 {
		if s := l.seps[i/2]; s != nil {
			return s
		}
		return nil
	}
	return l.elems[i/2]
}

// SetChild replaces a separator or an element. Storing nil in an element
// slot removes the element together with one adjacent separator, so
// "a, b, c" minus b prints as "a, c" and minus a as "b, c".
func (l *SeparatedList) SetChild(i int, c Node) {
	if i < 0 || i >= l.Len() {
		return
	}
	k := i / 2
	if i%2 == 0 {
		if old := l.seps[k]; old != nil && Node(old) != c {
			old.setParent(nil)
		}
		t, _ := c.(*Token)
		if t != nil {
			t.setParent(l)
		}
		l.seps[k] = t
		return
	}
	old := l.elems[k]
	if old != c && old.Parent() == Node(l) {
		old.setParent(nil)
	}
	if c != nil {
		c.setParent(l)
		l.elems[k] = c
		return
	}
	l.removeAt(k)
}

func (l *SeparatedList) removeAt(k int) {
	switch {
	case k > 0:
		if s := l.seps[k]; s != nil {
			s.setParent(nil)
		}
	case len(l.elems) > 1:
		// The next element becomes first and loses its separator.
		if s := l.seps[1]; s != nil {
			s.setParent(nil)
		}
		l.seps[1] = l.seps[0]
	}
	l.seps = append(l.seps[:k], l.seps[k+1:]...)
	l.elems = append(l.elems[:k], l.elems[k+1:]...)
}
