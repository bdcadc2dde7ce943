// Package parser parses OpenACC directives into syntax trees.
//
//	root, err := parser.ParseString("#pragma acc parallel loop gang vector_length(128)")
//
// The tree reprints the input byte for byte through ast.String. Input
// without a directive, including a commented-out one, yields a
// NoConstruct node holding the end-of-input token.
package parser

import (
	"io"
	"log/slog"
	"strings"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/grammars"
	"github.com/odvcencio/accparse/lr"
)

// Errors returned by Parse. Match them with errors.As.
type (
	LexicalError = lr.LexicalError
	SyntaxError  = lr.SyntaxError
)

type options struct {
	dialect string
	logger  *slog.Logger
}

// Option configures a Parser.
type Option func(*options)

// WithDialect selects the OpenACC dialect by name. The empty name selects
// grammars.Default.
func WithDialect(name string) Option {
	return func(o *options) { o.dialect = name }
}

// WithLogger sets the logger for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Parser parses directives of one dialect. It is safe for concurrent use;
// every call gets its own lexer and parse stack.
type Parser struct {
	entry  *grammars.LangEntry
	lang   *lr.Language
	acts   *grammars.Actions
	engine *lr.Parser
	logger *slog.Logger
}

// New returns a parser for the configured dialect, compiling the
// dialect's tables on first use.
func New(opts ...Option) (*Parser, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	entry, err := grammars.Lookup(o.dialect)
	if err != nil {
		return nil, err
	}
	lang, acts, err := entry.Load()
	if err != nil {
		return nil, err
	}
	logger := o.logger.With("dialect", entry.Name)
	return &Parser{
		entry:  entry,
		lang:   lang,
		acts:   acts,
		engine: lr.NewParser(lang, lr.WithLogger(logger)),
		logger: logger,
	}, nil
}

// Dialect returns the name of the parser's dialect.
func (p *Parser) Dialect() string { return p.entry.Name }

// Language returns the compiled tables.
func (p *Parser) Language() *lr.Language { return p.lang }

// Parse reads one directive from r. The reader is not closed.
func (p *Parser) Parse(r io.Reader) (ast.Node, error) {
	src := &recorder{src: lr.NewLexer(p.lang.LexStates, r)}
	v, err := p.engine.Parse(src, p.acts)
	if err != nil {
		p.logger.Debug("parse failed", "err", err)
		return nil, err
	}
	root, _ := v.(ast.Node)
	if b, ok := root.(*ast.Branch); ok && b.Kind() == ast.NoConstruct && b.Get("end") == nil && src.last != nil {
		b.Set("end", src.last)
	}
	return root, nil
}

// ParseString parses src.
func (p *Parser) ParseString(src string) (ast.Node, error) {
	return p.Parse(strings.NewReader(src))
}

// Tokenize returns every token of r up to and including EOF.
func (p *Parser) Tokenize(r io.Reader) ([]*ast.Token, error) {
	return lr.Tokenize(lr.NewLexer(p.lang.LexStates, r))
}

// Parse parses one directive from r with a one-off parser.
func Parse(r io.Reader, opts ...Option) (ast.Node, error) {
	p, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return p.Parse(r)
}

// ParseString parses src with a one-off parser.
func ParseString(src string, opts ...Option) (ast.Node, error) {
	return Parse(strings.NewReader(src), opts...)
}

// Tokenize lexes r with a one-off parser's lexer.
func Tokenize(r io.Reader, opts ...Option) ([]*ast.Token, error) {
	p, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return p.Tokenize(r)
}

// recorder remembers the last token read so an empty parse can keep the
// end-of-input token and the whitespace it carries.
type recorder struct {
	src  lr.TokenSource
	last *ast.Token
}

func (r *recorder) Next() (*ast.Token, error) {
	tok, err := r.src.Next()
	if tok != nil {
		r.last = tok
	}
	return tok, err
}
