package lr

import (
	"errors"
	"strings"
	"testing"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/token"
)

func blockComment() Pattern {
	return Cat(Lit("/*"), Star(Alt(Class("^*"), Cat(Plus(Lit("*")), Class("^*/")))), Plus(Lit("*")), Lit("/"))
}

func testLexRules() []LexRule {
	return []LexRule{
		{Kind: token.EOF, Pattern: Plus(Class(" \t\r\n")), Skip: true},
		{Kind: token.EOF, Pattern: blockComment(), Skip: true},
		Keyword(token.COPY),
		Keyword(token.COPYIN),
		{Kind: token.IDENTIFIER, Pattern: Cat(Class("a-zA-Z_"), Star(Class("a-zA-Z0-9_")))},
		{Kind: token.INTEGER_CONSTANT, Pattern: Plus(Class("0-9"))},
		Keyword(token.SUB),
		Keyword(token.ARROW),
		Keyword(token.DEC),
		Keyword(token.ADD),
		Keyword(token.MUL),
		Keyword(token.COMMA),
		Keyword(token.LPAREN),
		Keyword(token.RPAREN),
	}
}

func mustLexStates(t *testing.T) []LexState {
	t.Helper()
	states, err := BuildLexStates(testLexRules())
	if err != nil {
		t.Fatalf("BuildLexStates: %v", err)
	}
	return states
}

func lexAll(t *testing.T, src string) []*ast.Token {
	t.Helper()
	toks, err := Tokenize(NewLexer(mustLexStates(t), strings.NewReader(src)))
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return toks
}

func kindsOf(toks []*ast.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func sameKinds(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLexerMaximalMunch(t *testing.T) {
	toks := lexAll(t, "a->b--c - d")
	want := []token.Kind{
		token.IDENTIFIER, token.ARROW, token.IDENTIFIER, token.DEC,
		token.IDENTIFIER, token.SUB, token.IDENTIFIER, token.EOF,
	}
	if got := kindsOf(toks); !sameKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLexerRulePriority(t *testing.T) {
	toks := lexAll(t, "copy copyin copyx copyin2")
	want := []token.Kind{token.COPY, token.COPYIN, token.IDENTIFIER, token.IDENTIFIER, token.EOF}
	if got := kindsOf(toks); !sameKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if toks[2].Text != "copyx" || toks[3].Text != "copyin2" {
		t.Fatalf("identifier texts = %q, %q", toks[2].Text, toks[3].Text)
	}
}

func TestLexerWhitespaceFolding(t *testing.T) {
	toks := lexAll(t, " a /* c ** */ b  ")
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3", len(toks))
	}
	a, b, eof := toks[0], toks[1], toks[2]
	if a.WhiteBefore != " " || a.WhiteAfter != "" {
		t.Fatalf("a whitespace = %q/%q", a.WhiteBefore, a.WhiteAfter)
	}
	if b.WhiteBefore != " /* c ** */ " || b.WhiteAfter != "  " {
		t.Fatalf("b whitespace = %q/%q", b.WhiteBefore, b.WhiteAfter)
	}
	if eof.WhiteBefore != "" || eof.Text != "" {
		t.Fatalf("eof carries %q/%q", eof.WhiteBefore, eof.Text)
	}

	toks = lexAll(t, "  /* only */ ")
	if len(toks) != 1 || toks[0].Kind != token.EOF || toks[0].WhiteBefore != "  /* only */ " {
		t.Fatalf("comment-only input: %+v", toks)
	}
}

func TestLexerPositions(t *testing.T) {
	toks := lexAll(t, "a\r\nb\rc\n  d")
	want := []token.Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 3, Line: 2, Column: 1},
		{Offset: 5, Line: 2, Column: 1},
		{Offset: 9, Line: 3, Column: 3},
		{Offset: 10, Line: 3, Column: 4},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, tok := range toks {
		if tok.Pos != want[i] {
			t.Errorf("token %d (%s) at %+v, want %+v", i, tok.Kind, tok.Pos, want[i])
		}
	}
}

func TestLexerError(t *testing.T) {
	lx := NewLexer(mustLexStates(t), strings.NewReader("a @"))
	if tok, err := lx.Next(); err != nil || tok.Kind != token.IDENTIFIER {
		t.Fatalf("first token = %v, %v", tok, err)
	}
	_, err := lx.Next()
	var lexErr *LexicalError
	if !errors.As(err, &lexErr) {
		t.Fatalf("err = %v, want *LexicalError", err)
	}
	if lexErr.Char != '@' || lexErr.Pos.Line != 1 || lexErr.Pos.Column != 3 {
		t.Fatalf("lexical error = %+v", lexErr)
	}
	if !strings.Contains(lexErr.Error(), "line 1, column 3") {
		t.Fatalf("message %q", lexErr.Error())
	}
}

func TestLexerUnterminatedComment(t *testing.T) {
	_, err := Tokenize(NewLexer(mustLexStates(t), strings.NewReader("a /* open")))
	var lexErr *LexicalError
	if !errors.As(err, &lexErr) || !lexErr.AtEOF {
		t.Fatalf("err = %v, want lexical error at end of input", err)
	}
}

func TestLexerEOFIsSticky(t *testing.T) {
	lx := NewLexer(mustLexStates(t), strings.NewReader("a"))
	for i := 0; i < 3; i++ {
		if _, err := lx.Next(); err != nil {
			t.Fatal(err)
		}
	}
	tok, err := lx.Next()
	if err != nil || tok.Kind != token.EOF {
		t.Fatalf("after EOF got %v, %v", tok, err)
	}
}

func TestLexerInvalidUTF8IsVerbatim(t *testing.T) {
	states, err := BuildLexStates([]LexRule{
		{Kind: token.STRING_LITERAL, Pattern: Cat(Lit(`"`), Star(Class(`^"`)), Lit(`"`))},
	})
	if err != nil {
		t.Fatal(err)
	}
	src := "\"a\xffb\""
	toks, err := Tokenize(NewLexer(states, strings.NewReader(src)))
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Text != src {
		t.Fatalf("text = %q, want %q", toks[0].Text, src)
	}
}

func TestBuildLexStatesRejectsEmptyMatch(t *testing.T) {
	_, err := BuildLexStates([]LexRule{{Kind: token.IDENTIFIER, Pattern: Star(Class("a"))}})
	if err == nil {
		t.Fatal("expected error for a rule matching the empty string")
	}
}
