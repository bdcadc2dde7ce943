package ast

import (
	"math/bits"
	"strings"
)

// Tag is a set of capability markers. A clause kind carries one tag per
// construct it may appear on; expression kinds carry the expression tags.
type Tag uint32

const (
	TagConstruct Tag = 1 << iota
	TagExpression
	TagConstantExpression
	TagAssignmentExpression

	TagParallelClause
	TagParallelLoopClause
	TagKernelsClause
	TagKernelsLoopClause
	TagLoopClause
	TagDataClause
	TagEnterDataClause
	TagExitDataClause
	TagHostDataClause
	TagDeclareClause
	TagUpdateClause
	TagRoutineClause
	TagWaitConstructClause
	TagAtomicClause

	TagError

	tagEnd
)

var tagNames = [...]string{
	"Construct",
	"Expression",
	"ConstantExpression",
	"AssignmentExpression",
	"ParallelClause",
	"ParallelLoopClause",
	"KernelsClause",
	"KernelsLoopClause",
	"LoopClause",
	"DataClause",
	"EnterDataClause",
	"ExitDataClause",
	"HostDataClause",
	"DeclareClause",
	"UpdateClause",
	"RoutineClause",
	"WaitConstructClause",
	"AtomicClause",
	"Error",
}

// Has reports whether every tag in u is set in t.
func (t Tag) Has(u Tag) bool { return u != 0 && t&u == u }

// Each returns the single tags set in t, lowest first.
func (t Tag) Each() []Tag {
	out := make([]Tag, 0, bits.OnesCount32(uint32(t)))
	for t != 0 {
		low := t & -t
		out = append(out, low)
		t &^= low
	}
	return out
}

func (t Tag) String() string {
	if t == 0 {
		return "0"
	}
	var names []string
	for _, one := range t.Each() {
		i := bits.TrailingZeros32(uint32(one))
		if i < len(tagNames) {
			names = append(names, tagNames[i])
		} else {
			names = append(names, "?")
		}
	}
	return strings.Join(names, "|")
}

// clause tag shorthands used by the schema table.
const (
	onCompute  = TagParallelClause | TagParallelLoopClause | TagKernelsClause | TagKernelsLoopClause
	onLoops    = TagLoopClause | TagParallelLoopClause | TagKernelsLoopClause
	onData     = onCompute | TagDataClause | TagDeclareClause
	onParallel = TagParallelClause | TagParallelLoopClause
	constExpr  = TagExpression | TagConstantExpression
)
