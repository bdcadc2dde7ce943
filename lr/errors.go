package lr

import (
	"fmt"
	"strings"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/token"
)

// LexicalError reports input that no lexer rule accepts.
type LexicalError struct {
	Pos   token.Position
	Char  rune
	AtEOF bool // input ended inside a partial lexeme
}

func (e *LexicalError) Error() string {
	if e.AtEOF {
		return fmt.Sprintf("unexpected end of input after %q at line %d, column %d", e.Char, e.Pos.Line, e.Pos.Column)
	}
	return fmt.Sprintf("unexpected character %q at line %d, column %d", e.Char, e.Pos.Line, e.Pos.Column)
}

// SyntaxError reports input the grammar rejects and recovery could not
// absorb. Token is nil when the failure came from the lexer, in which case
// Err holds the *LexicalError. When the lexer failed while recovery was
// discarding input, Token is the original lookahead and Err the lexical
// error that ended recovery.
type SyntaxError struct {
	Token    *ast.Token
	Pos      token.Position
	Expected []token.Kind
	Err      error
}

func (e *SyntaxError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "syntax error at line %d, column %d: ", e.Pos.Line, e.Pos.Column)
	switch {
	case e.Token == nil && e.Err != nil:
		sb.WriteString(e.Err.Error())
	case e.Token == nil || e.Token.Kind == token.EOF:
		sb.WriteString("unexpected end of input")
	default:
		fmt.Fprintf(&sb, "unexpected %q", e.Token.Text)
	}
	if e.Token != nil && e.Err != nil {
		fmt.Fprintf(&sb, " (recovery stopped: %v)", e.Err)
	}
	if len(e.Expected) > 0 {
		sb.WriteString(" (expected one of: ")
		for i, k := range e.Expected {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k.String())
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Expects reports whether k is among the expected terminals.
func (e *SyntaxError) Expects(k token.Kind) bool {
	for _, x := range e.Expected {
		if x == k {
			return true
		}
	}
	return false
}
