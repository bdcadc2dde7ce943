package lr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/token"
)

// Reducer builds semantic values as the parser reduces productions.
// Values of terminals are *ast.Token; values of nonterminals are whatever
// the Reducer returned for them.
type Reducer interface {
	// Reduce is called for every ordinary reduction with one value per
	// right-hand-side symbol.
	Reduce(prod int, values []any) (any, error)
	// Recover is called when an error production absorbs broken input.
	Recover(prod int, r *Recovery) (any, error)
}

// Recovery describes the input absorbed by an error production.
type Recovery struct {
	// Prefix holds the values matched before the error symbol.
	Prefix []any
	// Discarded holds values popped from the stack (deepest first), then
	// the skipped terminals, then the synchronizing token.
	Discarded []any
	// Lookahead is the token that triggered the error.
	Lookahead *ast.Token
	// Expected lists the terminals that were acceptable at the error.
	Expected []token.Kind
}

// Parser drives the parse tables of a Language. It holds no per-parse
// state and may be shared between goroutines.
type Parser struct {
	lang   *Language
	logger *slog.Logger
	closes map[token.Kind]token.Kind
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug tracing of parser actions.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser creates a parser for lang.
func NewParser(lang *Language, opts ...Option) *Parser {
	p := &Parser{
		lang:   lang,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		closes: make(map[token.Kind]token.Kind, len(lang.Pairs)),
	}
	for open, cl := range lang.Pairs {
		p.closes[cl] = open
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Language returns the tables the parser runs.
func (p *Parser) Language() *Language { return p.lang }

type stackEntry struct {
	state StateID
	value any
	sym   Symbol
}

// Parse reads tokens from src until the start symbol is accepted and
// returns the value the Reducer produced for it.
func (p *Parser) Parse(src TokenSource, r Reducer) (any, error) {
	ctx := context.Background()
	debug := p.logger.Enabled(ctx, slog.LevelDebug)

	stack := []stackEntry{{state: 0}}
	tok, err := p.next(src, stack)
	if err != nil {
		return nil, err
	}
	for {
		top := stack[len(stack)-1].state
		act, ok := p.lang.Action(top, tok.Kind)
		if !ok {
			stack, tok, err = p.recover(src, r, stack, tok)
			if err != nil {
				return nil, err
			}
			continue
		}

		switch act.Type {
		case ParseActionShift:
			if debug {
				p.logger.Debug("shift", "state", top, "token", tok.Kind.String(), "pos", tok.Pos.String(), "next", act.State)
			}
			stack = append(stack, stackEntry{state: act.State, value: tok, sym: Symbol(tok.Kind)})
			if tok, err = p.next(src, stack); err != nil {
				return nil, err
			}

		case ParseActionReduce:
			n := int(act.ChildCount)
			values := make([]any, n)
			for i, e := range stack[len(stack)-n:] {
				values[i] = e.value
			}
			stack = stack[:len(stack)-n]
			v, err := r.Reduce(int(act.ProductionID), values)
			if err != nil {
				return nil, fmt.Errorf("reduce %s: %w", p.lang.Productions[act.ProductionID].Name, err)
			}
			next, ok := p.lang.Goto(stack[len(stack)-1].state, act.Symbol)
			if !ok {
				return nil, fmt.Errorf("no goto from state %d on %s", stack[len(stack)-1].state, p.lang.SymbolName(act.Symbol))
			}
			if debug {
				p.logger.Debug("reduce", "state", top, "production", p.lang.Productions[act.ProductionID].Name, "next", next)
			}
			stack = append(stack, stackEntry{state: next, value: v, sym: act.Symbol})

		case ParseActionAccept:
			if debug {
				p.logger.Debug("accept", "state", top)
			}
			return stack[len(stack)-1].value, nil
		}
	}
}

// next reads a token, turning lexical failures into syntax errors that
// carry the terminals acceptable in the current state.
func (p *Parser) next(src TokenSource, stack []stackEntry) (*ast.Token, error) {
	tok, err := src.Next()
	if err == nil {
		return tok, nil
	}
	var lexErr *LexicalError
	if errors.As(err, &lexErr) {
		return nil, &SyntaxError{
			Pos:      lexErr.Pos,
			Expected: p.lang.Expected(stack[len(stack)-1].state),
			Err:      lexErr,
		}
	}
	return nil, err
}

// recover pops states until one has error items, then discards terminals
// until one synchronizes outside any open bracket pair, and reduces the
// error production there.
func (p *Parser) recover(src TokenSource, r Reducer, stack []stackEntry, bad *ast.Token) ([]stackEntry, *ast.Token, error) {
	expected := p.lang.Expected(stack[len(stack)-1].state)
	fail := func() error {
		return &SyntaxError{Token: bad, Pos: bad.Pos, Expected: expected}
	}

	var popped []stackEntry // top first
	var skipped []*ast.Token
	tok := bad
	for {
		top := stack[len(stack)-1].state
		action, item := p.lang.Recovery(top, tok.Kind)
		switch action {
		case DiscardState:
			if len(stack) == 1 {
				return nil, nil, fail()
			}
			popped = append(popped, stack[len(stack)-1])
			stack = stack[:len(stack)-1]
			continue
		case Recover:
			if p.balanced(popped, skipped) {
				return p.reduceError(src, r, stack, popped, skipped, tok, bad, expected, item)
			}
		}
		if tok.Kind == token.EOF {
			return nil, nil, fail()
		}
		skipped = append(skipped, tok)
		var err error
		if tok, err = src.Next(); err != nil {
			var lexErr *LexicalError
			if errors.As(err, &lexErr) {
				return nil, nil, &SyntaxError{Token: bad, Pos: bad.Pos, Expected: expected, Err: lexErr}
			}
			return nil, nil, err
		}
	}
}

func (p *Parser) reduceError(src TokenSource, r Reducer, stack, popped []stackEntry, skipped []*ast.Token, sync, bad *ast.Token, expected []token.Kind, item ErrorItem) ([]stackEntry, *ast.Token, error) {
	rec := &Recovery{Lookahead: bad, Expected: expected}
	n := int(item.Prefix)
	for _, e := range stack[len(stack)-n:] {
		rec.Prefix = append(rec.Prefix, e.value)
	}
	for i := len(popped) - 1; i >= 0; i-- {
		rec.Discarded = append(rec.Discarded, popped[i].value)
	}
	for _, t := range skipped {
		rec.Discarded = append(rec.Discarded, t)
	}
	rec.Discarded = append(rec.Discarded, sync)
	stack = stack[:len(stack)-n]

	v, err := r.Recover(int(item.ProductionID), rec)
	if err != nil {
		return nil, nil, fmt.Errorf("recover %s: %w", p.lang.Productions[item.ProductionID].Name, err)
	}
	next, ok := p.lang.Goto(stack[len(stack)-1].state, item.LHS)
	if !ok {
		return nil, nil, fmt.Errorf("no goto from state %d on %s", stack[len(stack)-1].state, p.lang.SymbolName(item.LHS))
	}
	p.logger.Debug("recover",
		"production", p.lang.Productions[item.ProductionID].Name,
		"at", bad.Pos.String(),
		"discarded", len(rec.Discarded),
	)
	stack = append(stack, stackEntry{state: next, value: v, sym: item.LHS})

	tok, err := p.next(src, stack)
	if err != nil {
		return nil, nil, err
	}
	return stack, tok, nil
}

// balanced reports whether every bracket pair opened by the popped
// terminals and skipped tokens has been closed. Popped nonterminals are
// complete phrases and contribute nothing.
func (p *Parser) balanced(popped []stackEntry, skipped []*ast.Token) bool {
	if len(p.lang.Pairs) == 0 {
		return true
	}
	depth := map[token.Kind]int{}
	count := func(k token.Kind) {
		if _, ok := p.lang.Pairs[k]; ok {
			depth[k]++
		} else if open, ok := p.closes[k]; ok && depth[open] > 0 {
			depth[open]--
		}
	}
	for i := len(popped) - 1; i >= 0; i-- {
		if popped[i].sym < ErrorSymbol {
			count(token.Kind(popped[i].sym))
		}
	}
	for _, t := range skipped {
		count(t.Kind)
	}
	for _, d := range depth {
		if d != 0 {
			return false
		}
	}
	return true
}
