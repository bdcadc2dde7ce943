package grammars

import (
	"errors"
	"fmt"
	"slices"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/lr"
	"github.com/odvcencio/accparse/token"
)

// dialect selects the keywords and productions of one OpenACC version.
type dialect struct {
	name    string
	version int // 10 for 1.0, 20 for 2.0
}

// since20 lists the keywords that OpenACC 1.0 does not reserve. They lex
// as identifiers in the 1.0 dialect.
var since20 = []token.Kind{
	token.ENTER, token.EXIT, token.ROUTINE, token.ATOMIC,
	token.DEFAULT, token.NONE, token.DELETE, token.LINK, token.TILE,
	token.AUTO, token.SELF, token.BIND, token.NOHOST,
	token.READ, token.WRITE, token.CAPTURE,
}

func (d dialect) reserves(k token.Kind) bool {
	return d.version >= 20 || !slices.Contains(since20, k)
}

// keywords returns the keywords reserved by d in kind order.
func (d dialect) keywords() []token.Kind {
	var out []token.Kind
	for _, k := range token.Keywords() {
		if d.reserves(k) {
			out = append(out, k)
		}
	}
	return out
}

type clauseForm uint8

const (
	formDataList  clauseForm = iota // kw ( data-list )
	formIdentList                   // kw ( identifier-list )
	formCount                       // kw ( expression )
	formOptCount                    // kw [( expression )]
	formArgs                        // kw ( argument-list )
	formOptArgs                     // kw [( argument-list )]
	formBare                        // kw
	formReduction                   // kw ( operator : identifier-list )
	formDefault                     // kw ( none )
	formBind                        // kw ( identifier | string )
)

type clauseDef struct {
	kw    token.Kind
	kind  ast.Kind
	form  clauseForm
	since int
}

func (c clauseDef) nonterminal() string { return c.kw.String() + "-clause" }

var clauseDefs = []clauseDef{
	{token.COPY, ast.CopyClause, formDataList, 10},
	{token.COPYIN, ast.CopyinClause, formDataList, 10},
	{token.COPYOUT, ast.CopyoutClause, formDataList, 10},
	{token.CREATE, ast.CreateClause, formDataList, 10},
	{token.PRESENT, ast.PresentClause, formDataList, 10},
	{token.PCOPY, ast.PresentOrCopyClause, formDataList, 10},
	{token.PRESENT_OR_COPY, ast.PresentOrCopyClause, formDataList, 10},
	{token.PCOPYIN, ast.PresentOrCopyinClause, formDataList, 10},
	{token.PRESENT_OR_COPYIN, ast.PresentOrCopyinClause, formDataList, 10},
	{token.PCOPYOUT, ast.PresentOrCopyoutClause, formDataList, 10},
	{token.PRESENT_OR_COPYOUT, ast.PresentOrCopyoutClause, formDataList, 10},
	{token.PCREATE, ast.PresentOrCreateClause, formDataList, 10},
	{token.PRESENT_OR_CREATE, ast.PresentOrCreateClause, formDataList, 10},
	{token.DEVICEPTR, ast.DeviceptrClause, formIdentList, 10},
	{token.DEVICE_RESIDENT, ast.DeviceResidentClause, formDataList, 10},
	{token.PRIVATE, ast.PrivateClause, formDataList, 10},
	{token.FIRSTPRIVATE, ast.FirstprivateClause, formDataList, 10},
	{token.HOST, ast.HostClause, formDataList, 10},
	{token.DEVICE, ast.DeviceClause, formDataList, 10},
	{token.SELF, ast.SelfClause, formDataList, 20},
	{token.USE_DEVICE, ast.UseDeviceClause, formIdentList, 10},
	{token.DELETE, ast.DeleteClause, formDataList, 20},
	{token.LINK, ast.LinkClause, formDataList, 20},
	{token.IF, ast.IfClause, formCount, 10},
	{token.ASYNC, ast.AsyncClause, formOptCount, 10},
	{token.WAIT, ast.WaitClause, formOptArgs, 20},
	{token.NUM_GANGS, ast.NumGangsClause, formCount, 10},
	{token.NUM_WORKERS, ast.NumWorkersClause, formCount, 10},
	{token.VECTOR_LENGTH, ast.VectorLengthClause, formCount, 10},
	{token.COLLAPSE, ast.CollapseClause, formCount, 10},
	{token.REDUCTION, ast.ReductionClause, formReduction, 10},
	{token.GANG, ast.GangClause, formOptCount, 10},
	{token.WORKER, ast.WorkerClause, formOptCount, 10},
	{token.VECTOR, ast.VectorClause, formOptCount, 10},
	{token.SEQ, ast.SeqClause, formBare, 10},
	{token.INDEPENDENT, ast.IndependentClause, formBare, 10},
	{token.AUTO, ast.AutoClause, formBare, 20},
	{token.NOHOST, ast.NohostClause, formBare, 20},
	{token.TILE, ast.TileClause, formArgs, 20},
	{token.DEFAULT, ast.DefaultClause, formDefault, 20},
	{token.BIND, ast.BindClause, formBind, 20},
}

// constructDef describes a directive of the form
// "#pragma acc kw... [clause-list]".
type constructDef struct {
	kind     ast.Kind
	kws      []token.Kind
	tag      ast.Tag // clauses allowed on the construct
	list     string  // prefix of the clause nonterminals
	required bool    // at least one clause
	since    int
}

var constructDefs = []constructDef{
	{ast.ParallelConstruct, []token.Kind{token.PARALLEL}, ast.TagParallelClause, "parallel", false, 10},
	{ast.ParallelLoopConstruct, []token.Kind{token.PARALLEL, token.LOOP}, ast.TagParallelLoopClause, "parallel-loop", false, 10},
	{ast.KernelsConstruct, []token.Kind{token.KERNELS}, ast.TagKernelsClause, "kernels", false, 10},
	{ast.KernelsLoopConstruct, []token.Kind{token.KERNELS, token.LOOP}, ast.TagKernelsLoopClause, "kernels-loop", false, 10},
	{ast.LoopConstruct, []token.Kind{token.LOOP}, ast.TagLoopClause, "loop", false, 10},
	{ast.DataConstruct, []token.Kind{token.DATA}, ast.TagDataClause, "data", false, 10},
	{ast.HostDataConstruct, []token.Kind{token.HOST_DATA}, ast.TagHostDataClause, "host_data", true, 10},
	{ast.DeclareConstruct, []token.Kind{token.DECLARE}, ast.TagDeclareClause, "declare", true, 10},
	{ast.UpdateConstruct, []token.Kind{token.UPDATE}, ast.TagUpdateClause, "update", true, 10},
	{ast.EnterDataConstruct, []token.Kind{token.ENTER, token.DATA}, ast.TagEnterDataClause, "enter-data", true, 20},
	{ast.ExitDataConstruct, []token.Kind{token.EXIT, token.DATA}, ast.TagExitDataClause, "exit-data", true, 20},
}

// Binary operator precedence levels, loosest first.
var binaryLevels = []struct {
	name string
	ops  []token.Kind
}{
	{"logical-or-expression", []token.Kind{token.LOR}},
	{"logical-and-expression", []token.Kind{token.LAND}},
	{"inclusive-or-expression", []token.Kind{token.OR}},
	{"exclusive-or-expression", []token.Kind{token.XOR}},
	{"and-expression", []token.Kind{token.AND}},
	{"equality-expression", []token.Kind{token.EQL, token.NEQ}},
	{"relational-expression", []token.Kind{token.LSS, token.GTR, token.LEQ, token.GEQ}},
	{"shift-expression", []token.Kind{token.SHL, token.SHR}},
	{"additive-expression", []token.Kind{token.ADD, token.SUB}},
	{"multiplicative-expression", []token.Kind{token.MUL, token.QUO, token.REM}},
}

var (
	prefixOperators    = []token.Kind{token.AND, token.MUL, token.ADD, token.SUB, token.TILDE, token.NOT}
	assignOperators    = []token.Kind{token.ASSIGN, token.MUL_ASSIGN, token.QUO_ASSIGN, token.REM_ASSIGN, token.ADD_ASSIGN, token.SUB_ASSIGN, token.SHL_ASSIGN, token.SHR_ASSIGN, token.AND_ASSIGN, token.XOR_ASSIGN, token.OR_ASSIGN}
	reductionOperators = []token.Kind{token.ADD, token.MUL, token.MAX, token.MIN, token.AND, token.OR, token.XOR, token.LAND, token.LOR}
	atomicClauses      = []token.Kind{token.READ, token.WRITE, token.UPDATE, token.CAPTURE}
)

// builder records the semantic action of every production as it is added,
// so production IDs and actions stay aligned.
type builder struct {
	g    *lr.Grammar
	d    dialect
	acts []action
	errs []error
}

func (b *builder) add(a action, lhs string, rhs ...any) {
	if id := b.g.Add(lhs, rhs...); id != len(b.acts) {
		b.errs = append(b.errs, fmt.Errorf("production %s: id %d out of step with actions", lhs, id))
	}
	b.acts = append(b.acts, a)
}

// node adds a production whose values fill the slots of k in order.
func (b *builder) node(k ast.Kind, lhs string, rhs ...any) {
	b.add(action{shape: shapeNode, kind: k}, lhs, rhs...)
}

// nodeAt adds a production whose values go to the named slots of k.
func (b *builder) nodeAt(k ast.Kind, slots []string, lhs string, rhs ...any) {
	if len(slots) != len(rhs) {
		b.errs = append(b.errs, fmt.Errorf("production %s: %d slots for %d symbols", lhs, len(slots), len(rhs)))
	}
	idx := make([]int, len(slots))
	for i, s := range slots {
		if idx[i] = k.Slot(s); idx[i] < 0 {
			b.errs = append(b.errs, fmt.Errorf("production %s: %s has no slot %q", lhs, k, s))
		}
	}
	b.add(action{shape: shapeNode, kind: k, slots: idx}, lhs, rhs...)
}

// separated adds "list ::= elem | list elem | list , elem". With
// commaOnly the middle form is left out.
func (b *builder) separated(list, elem string, commaOnly bool) {
	b.add(action{shape: shapeSepList}, list, elem)
	if !commaOnly {
		b.add(action{shape: shapeSepListAppend}, list, list, elem)
	}
	b.add(action{shape: shapeSepListAppend}, list, list, token.COMMA, elem)
}

// lexicon returns the lexer rules of d. Skip rules come first, then the
// pragma sentinel and the reserved keywords, which must precede the
// identifier rule.
func lexicon(d dialect) []lr.LexRule {
	var (
		digit    = lr.Class("0-9")
		hex      = lr.Class("0-9a-fA-F")
		exponent = lr.Cat(lr.Class("eE"), lr.Opt(lr.Class("+-")), lr.Plus(digit))
		escape   = lr.Cat(lr.Lit(`\`), lr.Class("^\n"))
		blank    = lr.Class(" \t")
	)
	rules := []lr.LexRule{
		{Kind: token.EOF, Pattern: lr.Plus(lr.Class(" \t\r\n\f\v")), Skip: true},
		{Kind: token.EOF, Pattern: lr.Cat(lr.Lit("/*"), lr.Star(lr.Alt(lr.Class("^*"), lr.Cat(lr.Plus(lr.Lit("*")), lr.Class("^*/")))), lr.Plus(lr.Lit("*")), lr.Lit("/")), Skip: true},
		{Kind: token.EOF, Pattern: lr.Cat(lr.Lit("//"), lr.Star(lr.Class("^\n"))), Skip: true},
		{Kind: token.EOF, Pattern: lr.Cat(lr.Lit(`\`), lr.Opt(lr.Lit("\r")), lr.Lit("\n")), Skip: true},
		{Kind: token.PRAGMA_ACC, Pattern: lr.Cat(lr.Lit("#"), lr.Star(blank), lr.Lit("pragma"), lr.Plus(blank), lr.Lit("acc"))},
	}
	for _, k := range d.keywords() {
		rules = append(rules, lr.Keyword(k))
	}
	rules = append(rules,
		lr.LexRule{Kind: token.IDENTIFIER, Pattern: lr.Cat(lr.Class("a-zA-Z_"), lr.Star(lr.Class("a-zA-Z0-9_")))},
		lr.LexRule{Kind: token.FLOATING_CONSTANT, Pattern: lr.Cat(
			lr.Alt(
				lr.Cat(lr.Plus(digit), lr.Lit("."), lr.Star(digit), lr.Opt(exponent)),
				lr.Cat(lr.Lit("."), lr.Plus(digit), lr.Opt(exponent)),
				lr.Cat(lr.Plus(digit), exponent),
			),
			lr.Opt(lr.Class("fFlL")),
		)},
		lr.LexRule{Kind: token.INTEGER_CONSTANT, Pattern: lr.Cat(
			lr.Alt(
				lr.Cat(lr.Class("1-9"), lr.Star(digit)),
				lr.Cat(lr.Lit("0"), lr.Star(lr.Class("0-7"))),
				lr.Cat(lr.Lit("0"), lr.Class("xX"), lr.Plus(hex)),
			),
			lr.Star(lr.Class("uUlL")),
		)},
		lr.LexRule{Kind: token.CHARACTER_CONSTANT, Pattern: lr.Cat(
			lr.Opt(lr.Lit("L")), lr.Lit("'"), lr.Plus(lr.Alt(lr.Class("^'\\\n"), escape)), lr.Lit("'"),
		)},
		lr.LexRule{Kind: token.STRING_LITERAL, Pattern: lr.Cat(
			lr.Opt(lr.Lit("L")), lr.Lit(`"`), lr.Star(lr.Alt(lr.Class("^\"\\\n"), escape)), lr.Lit(`"`),
		)},
	)
	for _, k := range token.Operators() {
		rules = append(rules, lr.Keyword(k))
	}
	return rules
}

// compile builds the grammar of d and the matching semantic actions.
func compile(d dialect) (*lr.Language, *Actions, error) {
	b := &builder{g: lr.NewGrammar(d.name), d: d}
	b.g.Lex(lexicon(d)...)
	b.g.Pair(token.LPAREN, token.RPAREN)
	b.g.Pair(token.LBRACKET, token.RBRACKET)

	b.add(pass(0), "start", "construct")
	b.node(ast.NoConstruct, "start")

	b.constructs()
	b.clauses()
	b.expressions()

	if len(b.errs) > 0 {
		return nil, nil, fmt.Errorf("grammar %s: %w", d.name, errors.Join(b.errs...))
	}
	lang, err := b.g.Compile("start")
	if err != nil {
		return nil, nil, err
	}
	acts := &Actions{acts: b.acts}
	for _, p := range lang.Productions {
		acts.names = append(acts.names, p.Name)
	}
	return lang, acts, nil
}

func (b *builder) constructs() {
	for _, c := range constructDefs {
		if c.since > b.d.version {
			continue
		}
		list := b.clauseList(c.list, c.tag)
		rhs := []any{token.PRAGMA_ACC}
		for _, kw := range c.kws {
			rhs = append(rhs, kw)
		}
		if !c.required {
			b.node(c.kind, "construct", rhs...)
		}
		b.node(c.kind, "construct", append(rhs, list)...)
	}

	b.node(ast.CacheConstruct, "construct", token.PRAGMA_ACC, token.CACHE, token.LPAREN, "data-list", token.RPAREN)
	b.add(recoverAs(ast.CacheConstruct), "construct", token.PRAGMA_ACC, token.CACHE, token.LPAREN, lr.ErrorSymbol, token.RPAREN)

	waitClauses := b.clauseList("wait-construct", ast.TagWaitConstructClause)
	b.node(ast.WaitConstruct, "construct", token.PRAGMA_ACC, token.WAIT)
	b.node(ast.WaitConstruct, "construct", token.PRAGMA_ACC, token.WAIT, token.LPAREN, "argument-list", token.RPAREN)
	b.nodeAt(ast.WaitConstruct, []string{"pragma", "keyword", "clauses"}, "construct", token.PRAGMA_ACC, token.WAIT, waitClauses)
	b.node(ast.WaitConstruct, "construct", token.PRAGMA_ACC, token.WAIT, token.LPAREN, "argument-list", token.RPAREN, waitClauses)
	b.add(recoverAs(ast.WaitConstruct), "construct", token.PRAGMA_ACC, token.WAIT, token.LPAREN, lr.ErrorSymbol, token.RPAREN)

	if b.d.version < 20 {
		return
	}

	routineClauses := b.clauseList("routine", ast.TagRoutineClause)
	b.node(ast.RoutineConstruct, "construct", token.PRAGMA_ACC, token.ROUTINE)
	b.node(ast.RoutineConstruct, "construct", token.PRAGMA_ACC, token.ROUTINE, token.LPAREN, "identifier", token.RPAREN)
	b.nodeAt(ast.RoutineConstruct, []string{"pragma", "keyword", "clauses"}, "construct", token.PRAGMA_ACC, token.ROUTINE, routineClauses)
	b.node(ast.RoutineConstruct, "construct", token.PRAGMA_ACC, token.ROUTINE, token.LPAREN, "identifier", token.RPAREN, routineClauses)
	b.add(recoverAs(ast.RoutineConstruct), "construct", token.PRAGMA_ACC, token.ROUTINE, token.LPAREN, lr.ErrorSymbol, token.RPAREN)

	b.node(ast.AtomicConstruct, "construct", token.PRAGMA_ACC, token.ATOMIC)
	b.node(ast.AtomicConstruct, "construct", token.PRAGMA_ACC, token.ATOMIC, "atomic-clause")
	for _, kw := range atomicClauses {
		b.node(ast.AtomicClause, "atomic-clause", kw)
	}
}

// clauseList defines the clause alternatives of one construct from the
// clause tags and returns the name of its list nonterminal.
func (b *builder) clauseList(prefix string, tag ast.Tag) string {
	item := prefix + "-clause"
	list := item + "-list"
	for _, c := range clauseDefs {
		if c.since <= b.d.version && c.kind.Tags().Has(tag) {
			b.add(pass(0), item, c.nonterminal())
		}
	}
	b.separated(list, item, false)
	return list
}

func (b *builder) clauses() {
	for _, c := range clauseDefs {
		if c.since > b.d.version {
			continue
		}
		nt := c.nonterminal()
		switch c.form {
		case formDataList:
			b.node(c.kind, nt, c.kw, token.LPAREN, "data-list", token.RPAREN)
		case formIdentList:
			b.node(c.kind, nt, c.kw, token.LPAREN, "identifier-list", token.RPAREN)
		case formCount:
			b.node(c.kind, nt, c.kw, "count")
		case formOptCount:
			b.node(c.kind, nt, c.kw)
			b.node(c.kind, nt, c.kw, "count")
		case formArgs:
			b.node(c.kind, nt, c.kw, token.LPAREN, "argument-list", token.RPAREN)
		case formOptArgs:
			b.node(c.kind, nt, c.kw)
			b.node(c.kind, nt, c.kw, token.LPAREN, "argument-list", token.RPAREN)
		case formBare:
			b.node(c.kind, nt, c.kw)
			continue
		case formReduction:
			b.node(c.kind, nt, c.kw, token.LPAREN, "reduction-operator", token.COLON, "identifier-list", token.RPAREN)
		case formDefault:
			b.node(c.kind, nt, c.kw, token.LPAREN, token.NONE, token.RPAREN)
		case formBind:
			b.node(c.kind, nt, c.kw, token.LPAREN, "identifier", token.RPAREN)
			b.node(c.kind, nt, c.kw, token.LPAREN, token.STRING_LITERAL, token.RPAREN)
		}
		b.add(recoverAs(c.kind), nt, c.kw, token.LPAREN, lr.ErrorSymbol, token.RPAREN)
	}

	for _, op := range reductionOperators {
		b.add(pass(0), "reduction-operator", op)
	}

	b.add(action{shape: shapeGroup}, "count", token.LPAREN, "expression", token.RPAREN)

	b.separated("data-list", "data-item", true)
	b.node(ast.DataItem, "data-item", "identifier")
	b.node(ast.DataItem, "data-item", "identifier", token.LBRACKET, "expression", token.COLON, "expression", token.RBRACKET)

	b.separated("identifier-list", "identifier", true)
	b.node(ast.Identifier, "identifier", "name")

	// Keywords are reserved only where the grammar expects them, so any of
	// them may also name a variable.
	b.add(pass(0), "name", token.IDENTIFIER)
	for _, k := range b.d.keywords() {
		if k != token.SIZEOF {
			b.add(pass(0), "name", k)
		}
	}
}

func (b *builder) expressions() {
	b.node(ast.IdentifierExpr, "primary-expression", "name")
	for _, k := range []token.Kind{token.INTEGER_CONSTANT, token.FLOATING_CONSTANT, token.CHARACTER_CONSTANT} {
		b.node(ast.ConstantExpr, "primary-expression", k)
	}
	b.node(ast.StringLiteralExpr, "primary-expression", "string-literals")
	b.node(ast.ParenExpr, "primary-expression", token.LPAREN, "expression", token.RPAREN)
	b.add(action{shape: shapeList}, "string-literals", token.STRING_LITERAL)
	b.add(action{shape: shapeListAppend}, "string-literals", "string-literals", token.STRING_LITERAL)

	const postfix = "postfix-expression"
	b.add(pass(0), postfix, "primary-expression")
	b.node(ast.ArrayAccessExpr, postfix, postfix, token.LBRACKET, "expression", token.RBRACKET)
	b.nodeAt(ast.FunctionCallExpr, []string{"function", "lparen", "rparen"}, postfix, postfix, token.LPAREN, token.RPAREN)
	b.node(ast.FunctionCallExpr, postfix, postfix, token.LPAREN, "argument-list", token.RPAREN)
	b.node(ast.ElementAccessExpr, postfix, postfix, token.PERIOD, "name")
	b.node(ast.ElementAccessExpr, postfix, postfix, token.ARROW, "name")
	b.node(ast.PostfixUnaryExpr, postfix, postfix, token.INC)
	b.node(ast.PostfixUnaryExpr, postfix, postfix, token.DEC)
	b.separated("argument-list", "expression", true)

	const unary = "unary-expression"
	b.add(pass(0), unary, postfix)
	for _, op := range append([]token.Kind{token.INC, token.DEC}, prefixOperators...) {
		b.node(ast.PrefixUnaryExpr, unary, op, unary)
	}
	b.node(ast.SizeofExpr, unary, token.SIZEOF, unary)

	operand := unary
	for i := len(binaryLevels) - 1; i >= 0; i-- {
		level := binaryLevels[i]
		b.add(pass(0), level.name, operand)
		for _, op := range level.ops {
			b.node(ast.BinaryExpr, level.name, level.name, op, operand)
		}
		operand = level.name
	}

	const cond = "conditional-expression"
	b.add(pass(0), cond, operand)
	b.node(ast.TernaryExpr, cond, operand, token.QUESTION, "expression", token.COLON, cond)

	const assign = "assignment-expression"
	b.add(pass(0), assign, cond)
	for _, op := range assignOperators {
		b.node(ast.AssignmentExpr, assign, unary, op, assign)
	}
	b.add(pass(0), "expression", assign)
}
