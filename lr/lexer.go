package lr

import (
	"bufio"
	"errors"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/token"
)

// TokenSource supplies tokens to the parser. After EOF it keeps returning
// EOF tokens.
type TokenSource interface {
	Next() (*ast.Token, error)
}

type scannedRune struct {
	r       rune
	size    int
	invalid bool // r is utf8.RuneError standing for the byte raw
	raw     byte
}

// Lexer tokenizes a character stream using a table-driven DFA. It reads
// through a buffer and never closes the underlying reader.
type Lexer struct {
	states  []LexState
	src     *bufio.Reader
	pending []scannedRune // pushed back, last read first
	pos     token.Position
	prev    *ast.Token
	done    bool
}

// NewLexer creates a Lexer reading r with the given DFA state table.
func NewLexer(states []LexState, r io.Reader) *Lexer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Lexer{
		states: states,
		src:    br,
		pos:    token.Position{Line: 1, Column: 1},
	}
}

// Pos returns the position of the next unread rune.
func (l *Lexer) Pos() token.Position { return l.pos }

// Next returns the next significant token. Whitespace and comments are
// attached to the following token's WhiteBefore; at end of input they go
// to the previous token's WhiteAfter, or to the EOF token if the input had
// no tokens at all.
func (l *Lexer) Next() (*ast.Token, error) {
	if l.done {
		return &ast.Token{Kind: token.EOF, Pos: l.pos}, nil
	}
	var white strings.Builder
	for {
		start := l.pos
		kind, text, skip, err := l.scan()
		if errors.Is(err, io.EOF) {
			l.done = true
			eof := &ast.Token{Kind: token.EOF, Pos: l.pos}
			if l.prev != nil {
				l.prev.WhiteAfter += white.String()
			} else {
				eof.WhiteBefore = white.String()
			}
			return eof, nil
		}
		if err != nil {
			return nil, err
		}
		if skip {
			white.WriteString(text)
			continue
		}
		tok := &ast.Token{Kind: kind, Text: text, Pos: start, WhiteBefore: white.String()}
		l.prev = tok
		return tok, nil
	}
}

// scan runs the DFA from the start state and returns the longest lexeme,
// pushing back anything read past the last accepting state. It returns
// io.EOF when no input remains.
func (l *Lexer) scan() (token.Kind, string, bool, error) {
	var (
		buf       []scannedRune
		acceptLen = -1
		accept    *LexState
		cur       = 0
		atEOF     bool
	)
	for {
		sr, err := l.read()
		if errors.Is(err, io.EOF) {
			atEOF = true
			break
		}
		if err != nil {
			return 0, "", false, err
		}
		next := l.step(cur, sr.r)
		if next < 0 {
			l.unread(sr)
			break
		}
		buf = append(buf, sr)
		cur = next
		if st := &l.states[cur]; st.Accepts {
			acceptLen = len(buf)
			accept = st
		}
	}

	if len(buf) == 0 && atEOF {
		return 0, "", false, io.EOF
	}
	if acceptLen < 0 {
		lexErr := &LexicalError{Pos: l.pos, AtEOF: atEOF && len(buf) > 0}
		if len(buf) > 0 {
			lexErr.Char = buf[0].r
		} else if sr, err := l.read(); err == nil {
			lexErr.Char = sr.r
			l.unread(sr)
		}
		return 0, "", false, lexErr
	}

	for i := len(buf) - 1; i >= acceptLen; i-- {
		l.unread(buf[i])
	}
	var sb strings.Builder
	for _, sr := range buf[:acceptLen] {
		if sr.invalid {
			sb.WriteByte(sr.raw)
		} else {
			sb.WriteRune(sr.r)
		}
		l.pos = l.pos.Advance(sr.r, sr.size)
	}
	return accept.AcceptToken, sb.String(), accept.Skip, nil
}

func (l *Lexer) step(state int, r rune) int {
	trs := l.states[state].Transitions
	i := sort.Search(len(trs), func(i int) bool { return trs[i].Hi >= r })
	if i < len(trs) && trs[i].Lo <= r {
		return trs[i].NextState
	}
	return -1
}

func (l *Lexer) read() (scannedRune, error) {
	if n := len(l.pending); n > 0 {
		sr := l.pending[n-1]
		l.pending = l.pending[:n-1]
		return sr, nil
	}
	r, size, err := l.src.ReadRune()
	if err != nil {
		return scannedRune{}, err
	}
	sr := scannedRune{r: r, size: size}
	if r == utf8.RuneError && size == 1 {
		// Keep the undecodable byte so the token text stays verbatim.
		_ = l.src.UnreadRune()
		sr.raw, _ = l.src.ReadByte()
		sr.invalid = true
	}
	return sr, nil
}

func (l *Lexer) unread(sr scannedRune) { l.pending = append(l.pending, sr) }

// Tokenize reads every token from src up to and including EOF.
func Tokenize(src TokenSource) ([]*ast.Token, error) {
	var out []*ast.Token
	for {
		tok, err := src.Next()
		if err != nil {
			return out, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}
