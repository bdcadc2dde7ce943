// Package token defines the terminal vocabulary of OpenACC pragma text:
// C expression tokens, OpenACC keywords, the pragma sentinel and EOF.
package token

import "fmt"

// Kind identifies a terminal. Kinds double as terminal symbols in the
// parse tables, so EOF must stay zero.
type Kind uint16

// The list of tokens.
const (
	EOF Kind = iota
	PRAGMA_ACC

	// Identifiers and basic literals.
	IDENTIFIER         // main
	INTEGER_CONSTANT   // 12345
	FLOATING_CONSTANT  // 123.45
	CHARACTER_CONSTANT // 'a'
	STRING_LITERAL     // "abc"

	operator_beg
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	PERIOD   // .
	ARROW    // ->
	INC      // ++
	DEC      // --
	AND      // &
	MUL      // *
	ADD      // +
	SUB      // -
	TILDE    // ~
	NOT      // !
	QUO      // /
	REM      // %
	SHL      // <<
	SHR      // >>
	LSS      // <
	GTR      // >
	LEQ      // <=
	GEQ      // >=
	EQL      // ==
	NEQ      // !=
	XOR      // ^
	OR       // |
	LAND     // &&
	LOR      // ||
	QUESTION // ?
	COLON    // :
	COMMA    // ,

	ASSIGN     // =
	MUL_ASSIGN // *=
	QUO_ASSIGN // /=
	REM_ASSIGN // %=
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	SHL_ASSIGN // <<=
	SHR_ASSIGN // >>=
	AND_ASSIGN // &=
	XOR_ASSIGN // ^=
	OR_ASSIGN  // |=
	operator_end

	keyword_beg
	// Constructs.
	PARALLEL
	KERNELS
	LOOP
	DATA
	DECLARE
	UPDATE
	WAIT
	CACHE
	HOST_DATA
	ENTER
	EXIT
	ATOMIC
	ROUTINE

	// Clauses.
	ASYNC
	AUTO
	BIND
	CAPTURE
	COLLAPSE
	COPY
	COPYIN
	COPYOUT
	CREATE
	DEFAULT
	DELETE
	DEVICE
	DEVICE_RESIDENT
	DEVICEPTR
	FIRSTPRIVATE
	GANG
	HOST
	IF
	INDEPENDENT
	LINK
	NOHOST
	NONE
	NUM_GANGS
	NUM_WORKERS
	PCOPY
	PCOPYIN
	PCOPYOUT
	PCREATE
	PRESENT
	PRESENT_OR_COPY
	PRESENT_OR_COPYIN
	PRESENT_OR_COPYOUT
	PRESENT_OR_CREATE
	PRIVATE
	READ
	REDUCTION
	SELF
	SEQ
	TILE
	USE_DEVICE
	VECTOR
	VECTOR_LENGTH
	WORKER
	WRITE

	// Reduction operators and C.
	MAX
	MIN
	SIZEOF
	keyword_end

	// NumKinds is the number of terminal kinds.
	NumKinds = int(keyword_end)
)

var tokens = [...]string{
	EOF:        "EOF",
	PRAGMA_ACC: "#pragma acc",

	IDENTIFIER:         "IDENTIFIER",
	INTEGER_CONSTANT:   "INTEGER_CONSTANT",
	FLOATING_CONSTANT:  "FLOATING_CONSTANT",
	CHARACTER_CONSTANT: "CHARACTER_CONSTANT",
	STRING_LITERAL:     "STRING_LITERAL",

	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	PERIOD:   ".",
	ARROW:    "->",
	INC:      "++",
	DEC:      "--",
	AND:      "&",
	MUL:      "*",
	ADD:      "+",
	SUB:      "-",
	TILDE:    "~",
	NOT:      "!",
	QUO:      "/",
	REM:      "%",
	SHL:      "<<",
	SHR:      ">>",
	LSS:      "<",
	GTR:      ">",
	LEQ:      "<=",
	GEQ:      ">=",
	EQL:      "==",
	NEQ:      "!=",
	XOR:      "^",
	OR:       "|",
	LAND:     "&&",
	LOR:      "||",
	QUESTION: "?",
	COLON:    ":",
	COMMA:    ",",

	ASSIGN:     "=",
	MUL_ASSIGN: "*=",
	QUO_ASSIGN: "/=",
	REM_ASSIGN: "%=",
	ADD_ASSIGN: "+=",
	SUB_ASSIGN: "-=",
	SHL_ASSIGN: "<<=",
	SHR_ASSIGN: ">>=",
	AND_ASSIGN: "&=",
	XOR_ASSIGN: "^=",
	OR_ASSIGN:  "|=",

	PARALLEL:  "parallel",
	KERNELS:   "kernels",
	LOOP:      "loop",
	DATA:      "data",
	DECLARE:   "declare",
	UPDATE:    "update",
	WAIT:      "wait",
	CACHE:     "cache",
	HOST_DATA: "host_data",
	ENTER:     "enter",
	EXIT:      "exit",
	ATOMIC:    "atomic",
	ROUTINE:   "routine",

	ASYNC:              "async",
	AUTO:               "auto",
	BIND:               "bind",
	CAPTURE:            "capture",
	COLLAPSE:           "collapse",
	COPY:               "copy",
	COPYIN:             "copyin",
	COPYOUT:            "copyout",
	CREATE:             "create",
	DEFAULT:            "default",
	DELETE:             "delete",
	DEVICE:             "device",
	DEVICE_RESIDENT:    "device_resident",
	DEVICEPTR:          "deviceptr",
	FIRSTPRIVATE:       "firstprivate",
	GANG:               "gang",
	HOST:               "host",
	IF:                 "if",
	INDEPENDENT:        "independent",
	LINK:               "link",
	NOHOST:             "nohost",
	NONE:               "none",
	NUM_GANGS:          "num_gangs",
	NUM_WORKERS:        "num_workers",
	PCOPY:              "pcopy",
	PCOPYIN:            "pcopyin",
	PCOPYOUT:           "pcopyout",
	PCREATE:            "pcreate",
	PRESENT:            "present",
	PRESENT_OR_COPY:    "present_or_copy",
	PRESENT_OR_COPYIN:  "present_or_copyin",
	PRESENT_OR_COPYOUT: "present_or_copyout",
	PRESENT_OR_CREATE:  "present_or_create",
	PRIVATE:            "private",
	READ:               "read",
	REDUCTION:          "reduction",
	SELF:               "self",
	SEQ:                "seq",
	TILE:               "tile",
	USE_DEVICE:         "use_device",
	VECTOR:             "vector",
	VECTOR_LENGTH:      "vector_length",
	WORKER:             "worker",
	WRITE:              "write",

	MAX:    "max",
	MIN:    "min",
	SIZEOF: "sizeof",
}

// String returns the source spelling of operators and keywords and the
// upper-case class name of the other kinds.
func (k Kind) String() string {
	if int(k) < len(tokens) && tokens[k] != "" {
		return tokens[k]
	}
	return fmt.Sprintf("token(%d)", k)
}

// IsLiteral reports whether k is an identifier or a basic literal.
func (k Kind) IsLiteral() bool { return IDENTIFIER <= k && k <= STRING_LITERAL }

// IsOperator reports whether k is an operator or delimiter.
func (k Kind) IsOperator() bool { return operator_beg < k && k < operator_end }

// IsKeyword reports whether k is a keyword.
func (k Kind) IsKeyword() bool { return keyword_beg < k && k < keyword_end }

var keywords map[string]Kind

func init() {
	keywords = make(map[string]Kind, keyword_end-(keyword_beg+1))
	for k := keyword_beg + 1; k < keyword_end; k++ {
		keywords[tokens[k]] = k
	}
}

// Lookup maps an identifier to its keyword kind, or IDENTIFIER.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENTIFIER
}

// Keywords returns every keyword kind in declaration order.
func Keywords() []Kind {
	out := make([]Kind, 0, keyword_end-(keyword_beg+1))
	for k := keyword_beg + 1; k < keyword_end; k++ {
		out = append(out, k)
	}
	return out
}

// Operators returns every operator kind in declaration order.
func Operators() []Kind {
	out := make([]Kind, 0, operator_end-(operator_beg+1))
	for k := operator_beg + 1; k < operator_end; k++ {
		out = append(out, k)
	}
	return out
}
