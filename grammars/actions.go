package grammars

import (
	"errors"
	"fmt"
	"slices"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/lr"
)

// ErrUnknownProduction is returned when the parser reduces a production
// that has no semantic action.
var ErrUnknownProduction = errors.New("unknown production")

type shape uint8

const (
	shapePass shape = iota
	shapeNode
	shapeGroup
	shapeList
	shapeListAppend
	shapeSepList
	shapeSepListAppend
	shapeRecover
)

var shapeNames = [...]string{"pass", "node", "group", "list", "list-append", "sep-list", "sep-list-append", "recover"}

func (s shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", s)
}

// action is the semantic action of one production.
type action struct {
	shape shape
	kind  ast.Kind // node kind, or the kind an error production stands for
	index int      // pass: value to return
	slots []int    // node: first slot of each value; nil fills in order
}

func pass(i int) action { return action{shape: shapePass, index: i} }

func recoverAs(k ast.Kind) action { return action{shape: shapeRecover, kind: k} }

// group bundles a clause fragment such as "( expression )". Its symbols
// fill consecutive slots of the node that receives it.
type group struct {
	syms []any
}

// Actions builds the AST of one dialect while its parser reduces. It
// implements lr.Reducer and is safe for concurrent use.
type Actions struct {
	acts  []action
	names []string
}

var _ lr.Reducer = (*Actions)(nil)

func (a *Actions) lookup(prod int) (action, error) {
	if prod < 0 || prod >= len(a.acts) {
		return action{}, fmt.Errorf("production %d: %w", prod, ErrUnknownProduction)
	}
	return a.acts[prod], nil
}

// Reduce builds the value of an ordinary production.
func (a *Actions) Reduce(prod int, values []any) (any, error) {
	act, err := a.lookup(prod)
	if err != nil {
		return nil, err
	}
	switch act.shape {
	case shapePass:
		if act.index >= len(values) {
			return nil, a.mismatch(prod, act, values)
		}
		return values[act.index], nil

	case shapeNode:
		return a.node(prod, act, values)

	case shapeGroup:
		return group{syms: slices.Clone(values)}, nil

	case shapeList:
		l := ast.NewList()
		for _, v := range values {
			l.Append(asNode(v))
		}
		return l, nil

	case shapeListAppend:
		l, ok := first[*ast.List](values)
		if !ok {
			return nil, a.mismatch(prod, act, values)
		}
		for _, v := range values[1:] {
			l.Append(asNode(v))
		}
		return l, nil

	case shapeSepList:
		if len(values) != 1 {
			return nil, a.mismatch(prod, act, values)
		}
		return ast.NewSeparatedList(asNode(values[0])), nil

	case shapeSepListAppend:
		l, ok := first[*ast.SeparatedList](values)
		if !ok {
			return nil, a.mismatch(prod, act, values)
		}
		switch len(values) {
		case 2:
			l.Append(nil, asNode(values[1]))
		case 3:
			sep, _ := values[1].(*ast.Token)
			l.Append(sep, asNode(values[2]))
		default:
			return nil, a.mismatch(prod, act, values)
		}
		return l, nil
	}
	return nil, fmt.Errorf("production %d (%s): %s action used for reduce: %w", prod, a.name(prod), act.shape, ErrUnknownProduction)
}

// Recover builds the error node of an error production. Its children are
// the symbols matched before the error followed by everything discarded.
func (a *Actions) Recover(prod int, r *lr.Recovery) (any, error) {
	act, err := a.lookup(prod)
	if err != nil {
		return nil, err
	}
	if act.shape != shapeRecover {
		return nil, fmt.Errorf("production %d (%s) is not an error production: %w", prod, a.name(prod), ErrUnknownProduction)
	}
	var children []ast.Node
	for _, v := range r.Prefix {
		children = flatten(children, v)
	}
	for _, v := range r.Discarded {
		children = flatten(children, v)
	}
	e := ast.NewErrorNode(act.kind, children...)
	e.Expected = slices.Clone(r.Expected)
	e.Lookahead = r.Lookahead
	return e, nil
}

func (a *Actions) node(prod int, act action, values []any) (ast.Node, error) {
	b := ast.NewBranch(act.kind)
	slot := 0
	for i, v := range values {
		if act.slots != nil {
			slot = act.slots[i]
		}
		if g, ok := v.(group); ok {
			for _, s := range g.syms {
				if slot >= b.Len() {
					return nil, a.mismatch(prod, act, values)
				}
				b.SetChild(slot, asNode(s))
				slot++
			}
			continue
		}
		if slot >= b.Len() {
			return nil, a.mismatch(prod, act, values)
		}
		b.SetChild(slot, asNode(v))
		slot++
	}
	return b, nil
}

func (a *Actions) name(prod int) string {
	if prod >= 0 && prod < len(a.names) {
		return a.names[prod]
	}
	return "?"
}

func (a *Actions) mismatch(prod int, act action, values []any) error {
	return fmt.Errorf("production %d (%s): %s action does not fit %d values", prod, a.name(prod), act.shape, len(values))
}

func first[T any](values []any) (T, bool) {
	var zero T
	if len(values) == 0 {
		return zero, false
	}
	v, ok := values[0].(T)
	return v, ok
}

// asNode converts a semantic value to a node, mapping nil and nil tokens
// to an untyped nil.
func asNode(v any) ast.Node {
	switch v := v.(type) {
	case *ast.Token:
		if v == nil {
			return nil
		}
		return v
	case ast.Node:
		return v
	}
	return nil
}

func flatten(out []ast.Node, v any) []ast.Node {
	if g, ok := v.(group); ok {
		for _, s := range g.syms {
			out = flatten(out, s)
		}
		return out
	}
	if n := asNode(v); n != nil {
		out = append(out, n)
	}
	return out
}
