package lr

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/accparse/token"
)

// Pattern is a regular expression over runes, built from the combinators
// below and compiled into lexer tables by BuildLexStates.
type Pattern interface {
	// compile adds the pattern's NFA fragment and returns its entry and
	// exit states.
	compile(n *nfa) (start, end int)
}

// LexRule maps a pattern to a token kind. Skip rules produce whitespace
// and comments that are folded into neighbouring tokens.
type LexRule struct {
	Kind    token.Kind
	Pattern Pattern
	Skip    bool
}

// Keyword returns a rule matching the literal spelling of a keyword or
// operator kind.
func Keyword(k token.Kind) LexRule {
	return LexRule{Kind: k, Pattern: Lit(k.String())}
}

type runeRange struct{ lo, hi rune }

type (
	litPattern   string
	classPattern []runeRange
	catPattern   []Pattern
	altPattern   []Pattern
	starPattern  struct{ p Pattern }
)

// Lit matches s literally.
func Lit(s string) Pattern { return litPattern(s) }

// Class matches one rune from a set written like the body of a regexp
// character class: "a-zA-Z_" or, negated, "^\n".
func Class(set string) Pattern {
	neg := strings.HasPrefix(set, "^") && len(set) > 1
	if neg {
		set = set[1:]
	}
	var rs []runeRange
	runes := []rune(set)
	for i := 0; i < len(runes); i++ {
		lo := runes[i]
		if i+2 < len(runes) && runes[i+1] == '-' {
			rs = append(rs, runeRange{lo, runes[i+2]})
			i += 2
			continue
		}
		rs = append(rs, runeRange{lo, lo})
	}
	rs = normalize(rs)
	if neg {
		rs = complement(rs)
	}
	return classPattern(rs)
}

// Any matches any single rune.
func Any() Pattern { return classPattern{{0, utf8.MaxRune}} }

// Cat matches ps in sequence.
func Cat(ps ...Pattern) Pattern { return catPattern(ps) }

// Alt matches any one of ps.
func Alt(ps ...Pattern) Pattern { return altPattern(ps) }

// Star matches zero or more repetitions of p.
func Star(p Pattern) Pattern { return starPattern{p} }

// Plus matches one or more repetitions of p.
func Plus(p Pattern) Pattern { return Cat(p, Star(p)) }

// Opt matches p or the empty string.
func Opt(p Pattern) Pattern { return Alt(p, Lit("")) }

func normalize(rs []runeRange) []runeRange {
	if len(rs) == 0 {
		return nil
	}
	rs = slices.Clone(rs)
	slices.SortFunc(rs, func(a, b runeRange) int { return int(a.lo - b.lo) })
	out := []runeRange{rs[0]}
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.lo <= last.hi+1 {
			last.hi = max(last.hi, r.hi)
			continue
		}
		out = append(out, r)
	}
	return out
}

func complement(rs []runeRange) []runeRange {
	var out []runeRange
	next := rune(0)
	for _, r := range rs {
		if r.lo > next {
			out = append(out, runeRange{next, r.lo - 1})
		}
		next = r.hi + 1
	}
	if next <= utf8.MaxRune {
		out = append(out, runeRange{next, utf8.MaxRune})
	}
	return out
}

// nfa is a Thompson automaton under construction.
type nfa struct {
	eps   [][]int
	edges [][]nfaEdge
}

type nfaEdge struct {
	lo, hi rune
	to     int
}

func (n *nfa) state() int {
	n.eps = append(n.eps, nil)
	n.edges = append(n.edges, nil)
	return len(n.eps) - 1
}

func (n *nfa) epsilon(from, to int) { n.eps[from] = append(n.eps[from], to) }

func (p litPattern) compile(n *nfa) (int, int) {
	start := n.state()
	cur := start
	for _, r := range string(p) {
		next := n.state()
		n.edges[cur] = append(n.edges[cur], nfaEdge{r, r, next})
		cur = next
	}
	return start, cur
}

func (p classPattern) compile(n *nfa) (int, int) {
	start, end := n.state(), n.state()
	for _, r := range p {
		n.edges[start] = append(n.edges[start], nfaEdge{r.lo, r.hi, end})
	}
	return start, end
}

func (p catPattern) compile(n *nfa) (int, int) {
	start := n.state()
	cur := start
	for _, sub := range p {
		s, e := sub.compile(n)
		n.epsilon(cur, s)
		cur = e
	}
	return start, cur
}

func (p altPattern) compile(n *nfa) (int, int) {
	start, end := n.state(), n.state()
	for _, sub := range p {
		s, e := sub.compile(n)
		n.epsilon(start, s)
		n.epsilon(e, end)
	}
	return start, end
}

func (p starPattern) compile(n *nfa) (int, int) {
	start, end := n.state(), n.state()
	s, e := p.p.compile(n)
	n.epsilon(start, s)
	n.epsilon(start, end)
	n.epsilon(e, s)
	n.epsilon(e, end)
	return start, end
}

// BuildLexStates compiles rules into a deterministic lexer table. State 0
// is the start state. When several rules accept the same lexeme the
// earliest rule wins, so keyword rules must precede the identifier rule.
func BuildLexStates(rules []LexRule) ([]LexState, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("lexer: no rules")
	}
	n := &nfa{}
	root := n.state()
	accept := map[int]int{} // nfa state -> rule index
	for i, r := range rules {
		if r.Pattern == nil {
			return nil, fmt.Errorf("lexer: rule %d (%s) has no pattern", i, r.Kind)
		}
		s, e := r.Pattern.compile(n)
		n.epsilon(root, s)
		if _, dup := accept[e]; !dup {
			accept[e] = i
		}
	}

	closure := func(set []int) []int {
		seen := make(map[int]bool, len(set))
		stack := slices.Clone(set)
		for _, s := range set {
			seen[s] = true
		}
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, t := range n.eps[s] {
				if !seen[t] {
					seen[t] = true
					stack = append(stack, t)
				}
			}
		}
		out := make([]int, 0, len(seen))
		for s := range seen {
			out = append(out, s)
		}
		slices.Sort(out)
		return out
	}
	key := func(set []int) string {
		var sb strings.Builder
		for _, s := range set {
			sb.WriteString(strconv.Itoa(s))
			sb.WriteByte(',')
		}
		return sb.String()
	}

	var sets [][]int
	index := map[string]int{}
	add := func(set []int) int {
		k := key(set)
		if i, ok := index[k]; ok {
			return i
		}
		index[k] = len(sets)
		sets = append(sets, set)
		return len(sets) - 1
	}
	add(closure([]int{root}))

	var states []LexState
	for i := 0; i < len(sets); i++ {
		set := sets[i]
		st := LexState{}
		best := -1
		for _, s := range set {
			if r, ok := accept[s]; ok && (best < 0 || r < best) {
				best = r
			}
		}
		if best >= 0 {
			st.Accepts = true
			st.AcceptToken = rules[best].Kind
			st.Skip = rules[best].Skip
		}

		// Split the outgoing edges into disjoint ranges.
		var bounds []rune
		for _, s := range set {
			for _, e := range n.edges[s] {
				bounds = append(bounds, e.lo, e.hi+1)
			}
		}
		slices.Sort(bounds)
		bounds = slices.Compact(bounds)
		for b := 0; b+1 < len(bounds); b++ {
			lo, hi := bounds[b], bounds[b+1]-1
			var target []int
			for _, s := range set {
				for _, e := range n.edges[s] {
					if e.lo <= lo && hi <= e.hi {
						target = append(target, e.to)
					}
				}
			}
			if len(target) == 0 {
				continue
			}
			next := add(closure(target))
			if k := len(st.Transitions); k > 0 && st.Transitions[k-1].NextState == next && st.Transitions[k-1].Hi+1 == lo {
				st.Transitions[k-1].Hi = hi
				continue
			}
			st.Transitions = append(st.Transitions, LexTransition{Lo: lo, Hi: hi, NextState: next})
		}
		states = append(states, st)
	}
	if states[0].Accepts {
		return nil, fmt.Errorf("lexer: rule %s matches the empty string", states[0].AcceptToken)
	}
	return states, nil
}
