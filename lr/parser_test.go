package lr

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/token"
)

// sexpr renders reductions as s-expressions so tests can compare shapes.
type sexpr struct{}

func (s sexpr) Reduce(prod int, values []any) (any, error) {
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return str(values[0]), nil
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, str(v))
	}
	return "(" + strings.Join(parts, " ") + ")", nil
}

func (s sexpr) Recover(prod int, r *Recovery) (any, error) {
	parts := make([]string, 0, len(r.Discarded))
	for _, v := range r.Discarded {
		parts = append(parts, str(v))
	}
	return "error[" + strings.Join(parts, " ") + "]", nil
}

func str(v any) string {
	switch v := v.(type) {
	case *ast.Token:
		return v.Text
	case string:
		return v
	case nil:
		return "<nil>"
	}
	return fmt.Sprint(v)
}

func arithmetic(t *testing.T) *Language {
	t.Helper()
	g := NewGrammar("arith")
	g.Lex(testLexRules()...)
	g.Pair(token.LPAREN, token.RPAREN)
	g.Add("list", "expr")
	g.Add("list", "list", token.COMMA, "expr")
	g.Add("expr", "expr", token.ADD, "term")
	g.Add("expr", "term")
	g.Add("term", "term", token.MUL, "factor")
	g.Add("term", "factor")
	g.Add("factor", token.INTEGER_CONSTANT)
	g.Add("factor", token.IDENTIFIER)
	g.Add("factor", token.LPAREN, "expr", token.RPAREN)
	g.Add("factor", token.LPAREN, ErrorSymbol, token.RPAREN)
	lang, err := g.Compile("list")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return lang
}

func parse(t *testing.T, lang *Language, src string) (string, error) {
	t.Helper()
	p := NewParser(lang)
	v, err := p.Parse(NewLexer(lang.LexStates, strings.NewReader(src)), sexpr{})
	if err != nil {
		return "", err
	}
	return str(v), nil
}

func TestParseArithmetic(t *testing.T) {
	lang := arithmetic(t)
	tests := []struct {
		src  string
		want string
	}{
		{"1", "1"},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 + 2 + 3", "((1 + 2) + 3)"},
		{"(1 + 2) * x", "((( (1 + 2) )) * x)"},
		{"a, b", "(a , b)"},
	}
	for _, tt := range tests {
		got, err := parse(t, lang, tt.src)
		if err != nil {
			t.Errorf("parse(%q): %v", tt.src, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parse(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestLanguageTables(t *testing.T) {
	lang := arithmetic(t)
	if lang.Name != "arith" {
		t.Fatalf("name = %q", lang.Name)
	}
	if int(lang.StateCount) != len(lang.ParseTable) {
		t.Fatalf("StateCount %d, table rows %d", lang.StateCount, len(lang.ParseTable))
	}
	if lang.SymbolName(ErrorSymbol) != "error" || lang.SymbolName(Symbol(token.COMMA)) != "," {
		t.Fatalf("symbol names: %q %q", lang.SymbolName(ErrorSymbol), lang.SymbolName(Symbol(token.COMMA)))
	}
	if got := lang.SymbolNames[len(lang.SymbolNames)-1]; got != "list'" {
		t.Fatalf("augmented start named %q", got)
	}
	if len(lang.Productions) != 11 || !strings.HasPrefix(lang.Productions[10].Name, "list'") {
		t.Fatalf("productions: %d, last %q", len(lang.Productions), lang.Productions[len(lang.Productions)-1].Name)
	}
	if lang.Productions[9].Name != "factor → ( error )" {
		t.Fatalf("production 9 = %q", lang.Productions[9].Name)
	}
	// Initial state expects the start of an expression.
	want := []token.Kind{token.IDENTIFIER, token.INTEGER_CONSTANT, token.LPAREN}
	if got := lang.Expected(0); !sameKinds(got, want) {
		t.Fatalf("Expected(0) = %v, want %v", got, want)
	}
	errorStates := 0
	for _, items := range lang.ErrorItems {
		for _, it := range items {
			errorStates++
			if it.Sync != token.RPAREN || it.Prefix != 1 || it.ProductionID != 9 {
				t.Fatalf("unexpected error item %+v", it)
			}
		}
	}
	if errorStates != 1 {
		t.Fatalf("got %d error items, want 1", errorStates)
	}
}

func TestParseRecovery(t *testing.T) {
	lang := arithmetic(t)
	got, err := parse(t, lang, "(1 + + 2) * 3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := "(error[1 + + 2 )] * 3)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseRecoveryWaitsForBalancedBrackets(t *testing.T) {
	lang := arithmetic(t)
	got, err := parse(t, lang, "(1 (2) 3) * 4")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := "(error[1 ( 2 ) 3 )] * 4)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRecoveryDetails(t *testing.T) {
	lang := arithmetic(t)
	var rec *Recovery
	r := recordingReducer{sexpr: sexpr{}, got: &rec}
	_, err := NewParser(lang).Parse(NewLexer(lang.LexStates, strings.NewReader("(1 2)")), r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec == nil {
		t.Fatal("Recover was not called")
	}
	if rec.Lookahead == nil || rec.Lookahead.Text != "2" {
		t.Fatalf("lookahead = %v", rec.Lookahead)
	}
	if len(rec.Prefix) != 1 || str(rec.Prefix[0]) != "(" {
		t.Fatalf("prefix = %v", rec.Prefix)
	}
	if len(rec.Discarded) != 3 || str(rec.Discarded[2]) != ")" {
		t.Fatalf("discarded = %v", rec.Discarded)
	}
	hasRParen := false
	for _, k := range rec.Expected {
		hasRParen = hasRParen || k == token.RPAREN
	}
	if !hasRParen {
		t.Fatalf("expected = %v, want it to contain )", rec.Expected)
	}
}

type recordingReducer struct {
	sexpr
	got **Recovery
}

func (r recordingReducer) Recover(prod int, rec *Recovery) (any, error) {
	*r.got = rec
	return r.sexpr.Recover(prod, rec)
}

func TestParseSyntaxError(t *testing.T) {
	lang := arithmetic(t)
	_, err := parse(t, lang, "1 + )")
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if synErr.Token == nil || synErr.Token.Kind != token.RPAREN {
		t.Fatalf("token = %v", synErr.Token)
	}
	if synErr.Pos.Column != 5 {
		t.Fatalf("pos = %v", synErr.Pos)
	}
	want := []token.Kind{token.IDENTIFIER, token.INTEGER_CONSTANT, token.LPAREN}
	if !sameKinds(synErr.Expected, want) {
		t.Fatalf("expected = %v, want %v", synErr.Expected, want)
	}
	if !synErr.Expects(token.LPAREN) || synErr.Expects(token.RPAREN) {
		t.Fatal("Expects disagrees with Expected")
	}
	if !strings.Contains(err.Error(), `unexpected ")"`) {
		t.Fatalf("message %q", err.Error())
	}
}

func TestParseUnexpectedEOF(t *testing.T) {
	lang := arithmetic(t)
	_, err := parse(t, lang, "1 +")
	var synErr *SyntaxError
	if !errors.As(err, &synErr) || synErr.Token.Kind != token.EOF {
		t.Fatalf("err = %v, want syntax error at EOF", err)
	}
	if !strings.Contains(err.Error(), "unexpected end of input") {
		t.Fatalf("message %q", err.Error())
	}
}

func TestParseLexicalError(t *testing.T) {
	lang := arithmetic(t)
	_, err := parse(t, lang, "1 + @")
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	var lexErr *LexicalError
	if synErr.Token != nil || !errors.As(err, &lexErr) {
		t.Fatalf("err = %#v, want wrapped lexical error", synErr)
	}
	if synErr.Pos.Line != 1 || synErr.Pos.Column != 5 {
		t.Fatalf("pos = %v", synErr.Pos)
	}
	if !synErr.Expects(token.INTEGER_CONSTANT) {
		t.Fatalf("expected = %v", synErr.Expected)
	}
}

func TestLexicalErrorDuringRecovery(t *testing.T) {
	lang := arithmetic(t)
	_, err := parse(t, lang, "(1 + , @ )")
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if synErr.Token == nil || synErr.Token.Kind != token.COMMA {
		t.Fatalf("token = %v, want the original lookahead ,", synErr.Token)
	}
	if synErr.Pos.Column != 6 {
		t.Fatalf("pos = %v, want 1:6", synErr.Pos)
	}
	want := []token.Kind{token.IDENTIFIER, token.INTEGER_CONSTANT, token.LPAREN}
	if !sameKinds(synErr.Expected, want) {
		t.Fatalf("expected = %v, want %v", synErr.Expected, want)
	}
	var lexErr *LexicalError
	if !errors.As(err, &lexErr) || lexErr.Pos.Column != 8 {
		t.Fatalf("err = %#v, want wrapped lexical error at column 8", synErr.Err)
	}
}

type failingReducer struct{ sexpr }

var errBoom = errors.New("boom")

func (failingReducer) Reduce(int, []any) (any, error) { return nil, errBoom }

func TestReduceErrorIsWrapped(t *testing.T) {
	lang := arithmetic(t)
	_, err := NewParser(lang).Parse(NewLexer(lang.LexStates, strings.NewReader("1")), failingReducer{})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want wrapped errBoom", err)
	}
}

func TestCompileReportsConflicts(t *testing.T) {
	g := NewGrammar("ambiguous")
	g.Lex(testLexRules()...)
	g.Add("e", "e", token.ADD, "e")
	g.Add("e", token.INTEGER_CONSTANT)
	_, err := g.Compile("e")
	if err == nil || !strings.Contains(err.Error(), "shift/reduce") {
		t.Fatalf("err = %v, want shift/reduce conflict", err)
	}
}

func TestCompileValidates(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *Grammar)
		start string
		want  string
	}{
		{"undefined", func(g *Grammar) { g.Add("s", "missing") }, "s", "no productions"},
		{"start", func(g *Grammar) { g.Add("s", token.IDENTIFIER) }, "t", "unknown start"},
		{"error position", func(g *Grammar) { g.Add("s", ErrorSymbol, token.IDENTIFIER, token.COMMA) }, "s", "error must be followed"},
		{"element", func(g *Grammar) { g.Add("s", 42) }, "s", "unsupported element"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrammar(tt.name)
			g.Lex(testLexRules()...)
			tt.build(g)
			_, err := g.Compile(tt.start)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestEpsilonStart(t *testing.T) {
	g := NewGrammar("opt")
	g.Lex(testLexRules()...)
	g.Add("s")
	g.Add("s", token.IDENTIFIER)
	lang, err := g.Compile("s")
	if err != nil {
		t.Fatal(err)
	}
	got, err := parse(t, lang, "  ")
	if err != nil || got != "<nil>" {
		t.Fatalf("empty input = %q, %v", got, err)
	}
	got, err = parse(t, lang, "x")
	if err != nil || got != "x" {
		t.Fatalf("x = %q, %v", got, err)
	}
}
