package lr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/accparse/token"
)

// Grammar collects the lexer rules and productions of a language and
// compiles them into a Language.
type Grammar struct {
	name    string
	ntNames []string
	ntIndex map[string]Symbol
	defined []bool
	prods   []Production
	pairs   map[token.Kind]token.Kind
	rules   []LexRule
	errs    []error
}

// NewGrammar creates an empty grammar.
func NewGrammar(name string) *Grammar {
	return &Grammar{
		name:    name,
		ntIndex: map[string]Symbol{},
		pairs:   map[token.Kind]token.Kind{},
	}
}

// Name returns the grammar name.
func (g *Grammar) Name() string { return g.name }

// Lex appends lexer rules. Earlier rules win ties.
func (g *Grammar) Lex(rules ...LexRule) { g.rules = append(g.rules, rules...) }

// Pair declares a bracket pair used to guide error recovery.
func (g *Grammar) Pair(open, close token.Kind) { g.pairs[open] = close }

func (g *Grammar) nonterminal(name string) Symbol {
	if s, ok := g.ntIndex[name]; ok {
		return s
	}
	s := ErrorSymbol + 1 + Symbol(len(g.ntNames))
	g.ntIndex[name] = s
	g.ntNames = append(g.ntNames, name)
	g.defined = append(g.defined, false)
	return s
}

// Add appends the production lhs → rhs and returns its ID. Each element of
// rhs is a token.Kind, the name of a nonterminal, or ErrorSymbol. An empty
// rhs is an ε production. Mistakes are reported by Compile.
func (g *Grammar) Add(lhs string, rhs ...any) int {
	id := len(g.prods)
	p := Production{LHS: g.nonterminal(lhs)}
	g.defined[p.LHS-ErrorSymbol-1] = true
	names := []string{lhs, "→"}
	for _, r := range rhs {
		switch r := r.(type) {
		case token.Kind:
			p.RHS = append(p.RHS, Symbol(r))
			names = append(names, r.String())
		case string:
			p.RHS = append(p.RHS, g.nonterminal(r))
			names = append(names, r)
		case Symbol:
			if r != ErrorSymbol {
				g.errs = append(g.errs, fmt.Errorf("production %d: raw symbol %d", id, r))
			}
			p.RHS = append(p.RHS, r)
			names = append(names, "error")
		default:
			g.errs = append(g.errs, fmt.Errorf("production %d: unsupported element %T", id, r))
		}
	}
	if len(p.RHS) == 0 {
		names = append(names, "ε")
	}
	if len(p.RHS) > 255 {
		g.errs = append(g.errs, fmt.Errorf("production %d: right-hand side too long", id))
	}
	for i, s := range p.RHS {
		if s == ErrorSymbol && (i+2 != len(p.RHS) || !p.RHS[i+1].IsTerminal() || p.RHS[i+1] == ErrorSymbol) {
			g.errs = append(g.errs, fmt.Errorf("production %d: error must be followed by exactly one terminal at the end", id))
		}
	}
	p.Name = strings.Join(names, " ")
	g.prods = append(g.prods, p)
	return id
}

// Compile builds the lexer and LALR(1) tables with start as the start
// symbol. Any conflict is an error.
func (g *Grammar) Compile(start string) (*Language, error) {
	if len(g.errs) > 0 {
		return nil, fmt.Errorf("grammar %s: %w", g.name, errors.Join(g.errs...))
	}
	if _, ok := g.ntIndex[start]; !ok {
		return nil, fmt.Errorf("grammar %s: unknown start symbol %q", g.name, start)
	}
	for i, ok := range g.defined {
		if !ok {
			return nil, fmt.Errorf("grammar %s: nonterminal %q has no productions", g.name, g.ntNames[i])
		}
	}

	lexStates, err := BuildLexStates(g.rules)
	if err != nil {
		return nil, fmt.Errorf("grammar %s: %w", g.name, err)
	}

	b := newLALRBuilder(g, g.ntIndex[start])
	lang, err := b.build()
	if err != nil {
		return nil, fmt.Errorf("grammar %s: %w", g.name, err)
	}
	lang.Name = g.name
	lang.LexStates = lexStates
	lang.Pairs = make(map[token.Kind]token.Kind, len(g.pairs))
	for k, v := range g.pairs {
		lang.Pairs[k] = v
	}
	return lang, nil
}
