package ast

import (
	"bufio"
	"io"
	"strings"
)

// Fprint writes the source text of the tree rooted at n to w. Every token
// prints its leading whitespace, its text and its trailing whitespace, so
// an unmodified tree reproduces its input byte for byte.
func Fprint(w io.Writer, n Node) error {
	bw := bufio.NewWriter(w)
	for c := range Preorder(n) {
		t, ok := c.(*Token)
		if !ok {
			continue
		}
		bw.WriteString(t.WhiteBefore)
		bw.WriteString(t.Text)
		bw.WriteString(t.WhiteAfter)
	}
	return bw.Flush()
}

// String returns the source text of the tree rooted at n.
func String(n Node) string {
	var sb strings.Builder
	_ = Fprint(&sb, n)
	return sb.String()
}

// Text returns the source text of n without the whitespace before its
// first token and after its last token.
func Text(n Node) string {
	s := String(n)
	if first := FindFirstToken(n); first != nil {
		s = strings.TrimPrefix(s, first.WhiteBefore)
	}
	if last := FindLastToken(n); last != nil {
		s = strings.TrimSuffix(s, last.WhiteAfter)
	}
	return s
}
