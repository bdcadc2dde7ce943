// Package lr implements a table-driven LALR(1) parser with grammar-level
// error recovery, together with the pieces that produce its tables: a
// regular-expression lexer compiler and an LALR(1) grammar compiler.
//
// This file defines the compiled tables. Terminal symbols are token kinds,
// so symbol 0 is EOF; the error symbol follows the last token kind and the
// nonterminals follow the error symbol.
package lr

import (
	"sort"

	"github.com/odvcencio/accparse/token"
)

// Symbol is a grammar symbol ID (terminal or nonterminal).
type Symbol uint16

// StateID is a parser state index.
type StateID uint16

// ErrorSymbol is the terminal that error productions use to mark the
// point where discarded input is absorbed.
const ErrorSymbol = Symbol(token.NumKinds)

// IsTerminal reports whether s is a token kind or the error symbol.
func (s Symbol) IsTerminal() bool { return s <= ErrorSymbol }

// ParseActionType identifies the kind of parse action.
type ParseActionType uint8

const (
	ParseActionShift ParseActionType = iota + 1
	ParseActionReduce
	ParseActionAccept
)

func (t ParseActionType) String() string {
	switch t {
	case ParseActionShift:
		return "shift"
	case ParseActionReduce:
		return "reduce"
	case ParseActionAccept:
		return "accept"
	}
	return "error"
}

// ParseAction is a single parser action from the parse table.
type ParseAction struct {
	Type         ParseActionType
	State        StateID // target state (shift)
	Symbol       Symbol  // reduced symbol (reduce)
	ChildCount   uint8   // children consumed (reduce)
	ProductionID uint16  // which production (reduce)
}

// ErrorItem records an item A → α • error SYNC of a state. When the
// parser is in that state and the lookahead is SYNC, it can absorb the
// discarded input into A.
type ErrorItem struct {
	ProductionID uint16
	LHS          Symbol
	Prefix       uint8      // len(α)
	Sync         token.Kind // terminal following error
}

// RecoveryAction is the step taken by error recovery in a state.
type RecoveryAction uint8

const (
	// DiscardState pops the state; it has no error items.
	DiscardState RecoveryAction = iota
	// DiscardTerminal drops the lookahead; the state has error items but
	// none synchronizes on it.
	DiscardTerminal
	// Recover reduces an error production.
	Recover
)

func (a RecoveryAction) String() string {
	switch a {
	case DiscardTerminal:
		return "discard-terminal"
	case Recover:
		return "recover"
	}
	return "discard-state"
}

// LexState is one state in the table-driven lexer DFA.
type LexState struct {
	Accepts     bool
	AcceptToken token.Kind
	Skip        bool // accepted text is whitespace or a comment
	Transitions []LexTransition
}

// LexTransition maps a character range to a next state.
type LexTransition struct {
	Lo, Hi    rune // inclusive character range
	NextState int
}

// Production describes one grammar rule for diagnostics.
type Production struct {
	LHS  Symbol
	RHS  []Symbol
	Name string
}

// Language holds all data needed to lex and parse one grammar.
type Language struct {
	Name string

	SymbolCount uint32
	StateCount  uint32
	SymbolNames []string

	// ParseTable is dense: [state][symbol]. For terminals the entry is an
	// index into ParseActions, 0 meaning error. For nonterminals it is the
	// goto state, 0 meaning none; state 0 is never a goto target.
	ParseTable   [][]uint16
	ParseActions []ParseAction
	ErrorItems   [][]ErrorItem

	Productions []Production

	LexStates []LexState

	// Pairs maps opening brackets to their closing partners. Recovery
	// only synchronizes where these are balanced.
	Pairs map[token.Kind]token.Kind
}

// SymbolName returns the display name of s.
func (l *Language) SymbolName(s Symbol) string {
	if int(s) < len(l.SymbolNames) {
		return l.SymbolNames[s]
	}
	return ""
}

// Action returns the action for a terminal in a state.
func (l *Language) Action(state StateID, sym token.Kind) (ParseAction, bool) {
	if int(state) >= len(l.ParseTable) || int(sym) >= token.NumKinds {
		return ParseAction{}, false
	}
	idx := l.ParseTable[state][sym]
	if idx == 0 {
		return ParseAction{}, false
	}
	return l.ParseActions[idx], true
}

// Goto returns the state reached from state on nonterminal sym.
func (l *Language) Goto(state StateID, sym Symbol) (StateID, bool) {
	if int(state) >= len(l.ParseTable) || sym <= ErrorSymbol || int(sym) >= len(l.ParseTable[state]) {
		return 0, false
	}
	next := l.ParseTable[state][sym]
	return StateID(next), next != 0
}

// Expected returns the terminals with an action in state, in kind order.
func (l *Language) Expected(state StateID) []token.Kind {
	if int(state) >= len(l.ParseTable) {
		return nil
	}
	var out []token.Kind
	row := l.ParseTable[state]
	for k := 0; k < token.NumKinds; k++ {
		if row[k] != 0 {
			out = append(out, token.Kind(k))
		}
	}
	return out
}

// Recovery returns the recovery step for a state and lookahead. For
// Recover it also returns the error item to reduce.
func (l *Language) Recovery(state StateID, sym token.Kind) (RecoveryAction, ErrorItem) {
	if int(state) >= len(l.ErrorItems) || len(l.ErrorItems[state]) == 0 {
		return DiscardState, ErrorItem{}
	}
	items := l.ErrorItems[state]
	i := sort.Search(len(items), func(i int) bool { return items[i].Sync >= sym })
	if i < len(items) && items[i].Sync == sym {
		return Recover, items[i]
	}
	return DiscardTerminal, ErrorItem{}
}
