package token

import "fmt"

// Position is a location in the source. Offset is a byte offset; Line and
// Column are 1-based, with Column counted in runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// IsValid reports whether the position has been set.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Advance returns the position after the rune r of the given byte size.
// A newline starts a new line; a carriage return only resets the column.
func (p Position) Advance(r rune, size int) Position {
	p.Offset += size
	switch r {
	case '\n':
		p.Line++
		p.Column = 1
	case '\r':
		p.Column = 1
	default:
		p.Column++
	}
	return p
}
