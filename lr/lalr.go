package lr

import (
	"fmt"
	"math/bits"
	"slices"
	"strconv"
	"strings"

	"github.com/odvcencio/accparse/token"
)

// bitset is a set of terminal indexes.
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) set(i int)      { b[i/64] |= 1 << (uint(i) % 64) }
func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }

// or adds every member of o to b and reports whether b changed.
func (b bitset) or(o bitset) bool {
	changed := false
	for i := range b {
		if n := b[i] | o[i]; n != b[i] {
			b[i] = n
			changed = true
		}
	}
	return changed
}

func (b bitset) each(f func(int)) {
	for w, word := range b {
		for word != 0 {
			i := bits.TrailingZeros64(word)
			f(w*64 + i)
			word &^= 1 << uint(i)
		}
	}
}

type item struct {
	prod int
	dot  int
}

type lrState struct {
	kernel []item
	la     []bitset // lookaheads of kernel items
	gotos  map[Symbol]int
}

type propagation struct {
	fromState, fromItem int
	toState, toItem     int
}

// lalrBuilder computes LALR(1) tables by building the LR(0) collection
// and then determining kernel lookaheads by spontaneous generation and
// propagation.
type lalrBuilder struct {
	g        *Grammar
	prods    []Production // the grammar's productions plus S' → start
	accept   int          // index of S' → start
	nsyms    int
	nterms   int // token kinds plus the error symbol
	dummy    int // the propagation marker '#'
	byLHS    map[Symbol][]int
	nullable []bool
	first    []bitset // indexed by symbol

	// firstAfter[p][d] is FIRST(rhs[d+1:]) of production p.
	firstAfter    [][]bitset
	nullableAfter [][]bool

	states []*lrState
	index  map[string]int
}

func newLALRBuilder(g *Grammar, start Symbol) *lalrBuilder {
	b := &lalrBuilder{
		g:      g,
		nterms: int(ErrorSymbol) + 1,
		byLHS:  map[Symbol][]int{},
		index:  map[string]int{},
	}
	b.dummy = b.nterms
	b.prods = slices.Clone(g.prods)
	augmented := ErrorSymbol + 1 + Symbol(len(g.ntNames))
	b.accept = len(b.prods)
	b.prods = append(b.prods, Production{
		LHS:  augmented,
		RHS:  []Symbol{start},
		Name: g.ntNames[start-ErrorSymbol-1] + "' → " + g.ntNames[start-ErrorSymbol-1],
	})
	b.nsyms = int(augmented) + 1
	for i, p := range b.prods {
		b.byLHS[p.LHS] = append(b.byLHS[p.LHS], i)
	}
	return b
}

func (b *lalrBuilder) symbolName(s Symbol) string {
	switch {
	case s < ErrorSymbol:
		return token.Kind(s).String()
	case s == ErrorSymbol:
		return "error"
	case int(s) == b.nsyms-1:
		return b.prods[b.accept].Name[:strings.Index(b.prods[b.accept].Name, " ")]
	}
	return b.g.ntNames[s-ErrorSymbol-1]
}

func (b *lalrBuilder) computeFirst() {
	b.nullable = make([]bool, b.nsyms)
	b.first = make([]bitset, b.nsyms)
	for s := 0; s < b.nsyms; s++ {
		b.first[s] = newBitset(b.nterms + 1)
		if s < b.nterms {
			b.first[s].set(s)
		}
	}
	for changed := true; changed; {
		changed = false
		for _, p := range b.prods {
			allNullable := true
			for _, s := range p.RHS {
				if b.first[p.LHS].or(b.first[s]) {
					changed = true
				}
				if !b.nullable[s] {
					allNullable = false
					break
				}
			}
			if allNullable && !b.nullable[p.LHS] {
				b.nullable[p.LHS] = true
				changed = true
			}
		}
	}

	b.firstAfter = make([][]bitset, len(b.prods))
	b.nullableAfter = make([][]bool, len(b.prods))
	for i, p := range b.prods {
		n := len(p.RHS)
		b.firstAfter[i] = make([]bitset, n)
		b.nullableAfter[i] = make([]bool, n)
		acc := newBitset(b.nterms + 1)
		null := true
		for d := n - 1; d >= 0; d-- {
			// acc and null describe rhs[d+1:].
			b.firstAfter[i][d] = slices.Clone(acc)
			b.nullableAfter[i][d] = null
			s := p.RHS[d]
			if b.nullable[s] {
				acc.or(b.first[s])
			} else {
				acc = slices.Clone(b.first[s])
				null = false
			}
		}
	}
}

func (b *lalrBuilder) next(it item) (Symbol, bool) {
	rhs := b.prods[it.prod].RHS
	if it.dot >= len(rhs) {
		return 0, false
	}
	return rhs[it.dot], true
}

func (b *lalrBuilder) closure0(kernel []item) []item {
	items := slices.Clone(kernel)
	added := map[Symbol]bool{}
	for i := 0; i < len(items); i++ {
		s, ok := b.next(items[i])
		if !ok || s.IsTerminal() || added[s] {
			continue
		}
		added[s] = true
		for _, p := range b.byLHS[s] {
			items = append(items, item{p, 0})
		}
	}
	return items
}

func kernelKey(kernel []item) string {
	var sb strings.Builder
	for _, it := range kernel {
		sb.WriteString(strconv.Itoa(it.prod))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(it.dot))
		sb.WriteByte(' ')
	}
	return sb.String()
}

func (b *lalrBuilder) addState(kernel []item) int {
	slices.SortFunc(kernel, func(x, y item) int {
		if x.prod != y.prod {
			return x.prod - y.prod
		}
		return x.dot - y.dot
	})
	k := kernelKey(kernel)
	if i, ok := b.index[k]; ok {
		return i
	}
	st := &lrState{kernel: kernel, gotos: map[Symbol]int{}}
	for range kernel {
		st.la = append(st.la, newBitset(b.nterms+1))
	}
	b.index[k] = len(b.states)
	b.states = append(b.states, st)
	return len(b.states) - 1
}

func (b *lalrBuilder) buildLR0() error {
	b.addState([]item{{b.accept, 0}})
	for i := 0; i < len(b.states); i++ {
		st := b.states[i]
		groups := map[Symbol][]item{}
		var order []Symbol
		for _, it := range b.closure0(st.kernel) {
			s, ok := b.next(it)
			if !ok {
				continue
			}
			if _, seen := groups[s]; !seen {
				order = append(order, s)
			}
			groups[s] = append(groups[s], item{it.prod, it.dot + 1})
		}
		for _, s := range order {
			st.gotos[s] = b.addState(groups[s])
		}
		if len(b.states) > 65535 {
			return fmt.Errorf("too many parser states")
		}
	}
	return nil
}

// closure1 returns the LR(1) closure of kernel items with lookahead sets.
func (b *lalrBuilder) closure1(kernel []item, las []bitset) ([]item, []bitset) {
	items := slices.Clone(kernel)
	itemLA := make([]bitset, len(las))
	for i, la := range las {
		itemLA[i] = slices.Clone(la)
	}
	pos := map[item]int{}
	for i, it := range items {
		pos[it] = i
	}
	work := make([]int, len(items))
	for i := range work {
		work[i] = i
	}
	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]
		it := items[i]
		s, ok := b.next(it)
		if !ok || s.IsTerminal() {
			continue
		}
		la := slices.Clone(b.firstAfter[it.prod][it.dot])
		if b.nullableAfter[it.prod][it.dot] {
			la.or(itemLA[i])
		}
		for _, p := range b.byLHS[s] {
			target := item{p, 0}
			j, ok := pos[target]
			if !ok {
				j = len(items)
				pos[target] = j
				items = append(items, target)
				itemLA = append(itemLA, newBitset(b.nterms+1))
				itemLA[j].or(la)
				work = append(work, j)
				continue
			}
			if itemLA[j].or(la) {
				work = append(work, j)
			}
		}
	}
	return items, itemLA
}

func (b *lalrBuilder) kernelIndex(state int, it item) int {
	for i, k := range b.states[state].kernel {
		if k == it {
			return i
		}
	}
	return -1
}

func (b *lalrBuilder) computeLookaheads() {
	var props []propagation
	for si, st := range b.states {
		for ki, k := range st.kernel {
			marker := newBitset(b.nterms + 1)
			marker.set(b.dummy)
			items, las := b.closure1([]item{k}, []bitset{marker})
			for j, it := range items {
				s, ok := b.next(it)
				if !ok {
					continue
				}
				to := st.gotos[s]
				tk := b.kernelIndex(to, item{it.prod, it.dot + 1})
				las[j].each(func(a int) {
					if a == b.dummy {
						props = append(props, propagation{si, ki, to, tk})
						return
					}
					b.states[to].la[tk].set(a)
				})
			}
		}
	}
	b.states[0].la[0].set(int(token.EOF))
	for changed := true; changed; {
		changed = false
		for _, p := range props {
			if b.states[p.toState].la[p.toItem].or(b.states[p.fromState].la[p.fromItem]) {
				changed = true
			}
		}
	}
}

func (b *lalrBuilder) build() (*Language, error) {
	b.computeFirst()
	if err := b.buildLR0(); err != nil {
		return nil, err
	}
	b.computeLookaheads()

	lang := &Language{
		SymbolCount:  uint32(b.nsyms),
		StateCount:   uint32(len(b.states)),
		ParseTable:   make([][]uint16, len(b.states)),
		ParseActions: []ParseAction{{}},
		ErrorItems:   make([][]ErrorItem, len(b.states)),
	}
	for s := 0; s < b.nsyms; s++ {
		lang.SymbolNames = append(lang.SymbolNames, b.symbolName(Symbol(s)))
	}
	for _, p := range b.prods {
		lang.Productions = append(lang.Productions, Production{LHS: p.LHS, RHS: slices.Clone(p.RHS), Name: p.Name})
	}

	actionIndex := map[ParseAction]uint16{}
	intern := func(a ParseAction) uint16 {
		if i, ok := actionIndex[a]; ok {
			return i
		}
		i := uint16(len(lang.ParseActions))
		lang.ParseActions = append(lang.ParseActions, a)
		actionIndex[a] = i
		return i
	}

	var conflicts []string
	for si, st := range b.states {
		row := make([]uint16, b.nsyms)
		owner := make([]int, token.NumKinds) // production behind each action, -1 for shift
		set := func(term int, a ParseAction, prod int) {
			idx := intern(a)
			if row[term] != 0 && row[term] != idx {
				conflicts = append(conflicts, b.describeConflict(si, term, owner[term], prod))
				return
			}
			row[term] = idx
			owner[term] = prod
		}

		items, las := b.closure1(st.kernel, st.la)
		for j, it := range items {
			p := b.prods[it.prod]
			s, ok := b.next(it)
			switch {
			case ok && s == ErrorSymbol:
				sync := token.Kind(p.RHS[it.dot+1])
				lang.ErrorItems[si] = append(lang.ErrorItems[si], ErrorItem{
					ProductionID: uint16(it.prod),
					LHS:          p.LHS,
					Prefix:       uint8(it.dot),
					Sync:         sync,
				})
			case ok && s.IsTerminal():
				set(int(s), ParseAction{Type: ParseActionShift, State: StateID(st.gotos[s])}, -1)
			case ok:
				row[s] = uint16(st.gotos[s])
			case it.prod == b.accept:
				set(int(token.EOF), ParseAction{Type: ParseActionAccept}, it.prod)
			default:
				red := ParseAction{
					Type:         ParseActionReduce,
					Symbol:       p.LHS,
					ChildCount:   uint8(len(p.RHS)),
					ProductionID: uint16(it.prod),
				}
				las[j].each(func(a int) {
					if a < token.NumKinds {
						set(a, red, it.prod)
					}
				})
			}
		}

		slices.SortFunc(lang.ErrorItems[si], func(x, y ErrorItem) int { return int(x.Sync) - int(y.Sync) })
		for k := 1; k < len(lang.ErrorItems[si]); k++ {
			if x, y := lang.ErrorItems[si][k-1], lang.ErrorItems[si][k]; x.Sync == y.Sync && x.ProductionID != y.ProductionID {
				conflicts = append(conflicts, fmt.Sprintf("state %d: recovery conflict on %s between %q and %q",
					si, x.Sync, b.prods[x.ProductionID].Name, b.prods[y.ProductionID].Name))
			}
		}
		lang.ErrorItems[si] = slices.CompactFunc(lang.ErrorItems[si], func(x, y ErrorItem) bool { return x == y })
		lang.ParseTable[si] = row
	}
	if len(conflicts) > 0 {
		const show = 5
		msg := strings.Join(conflicts[:min(show, len(conflicts))], "; ")
		return nil, fmt.Errorf("%d conflicts: %s", len(conflicts), msg)
	}
	return lang, nil
}

func (b *lalrBuilder) describeConflict(state, term, prev, prod int) string {
	what := func(p int) string {
		if p < 0 {
			return "shift"
		}
		return fmt.Sprintf("reduce %q", b.prods[p].Name)
	}
	kind := "reduce/reduce"
	if prev < 0 || prod < 0 {
		kind = "shift/reduce"
	}
	return fmt.Sprintf("state %d: %s conflict on %s: %s vs %s", state, kind, token.Kind(term), what(prev), what(prod))
}
