package parser

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/grammars"
	"github.com/odvcencio/accparse/token"
)

// corpus holds directives taken from EPCC, NPB and SPEC ACCEL style
// sources, including their odd spacing and trailing comments.
var corpus = []string{
	"#pragma acc parallel loop gang num_gangs(nz2-4) num_workers(8) vector_length(32)",
	"#pragma acc kernels loop independent, present(inGrid[0:nx*ny],outGrid[0:nx*ny])",
	"#pragma acc data copyin(ce) present(flux_G,frct,rsd)",
	"#pragma acc data create(forcing,frct) //fjacX,fjacY,fjacZ)",
	"#pragma acc parallel num_gangs((NQ+127)/128) vector_length(128) present(q[0:NQ])",
	"#pragma acc loop reduction(+:t1,t2)",
	"#pragma acc parallel loop create(a[0:ppn]), private(z[0:ppn]), num_gangs(256)",
	"#pragma acc parallel loop private(i,j,k,s0,ss), reduction(+:gosa)",
	"#pragma acc enter data copyin(CG[0:n*n]), present_or_copyin(A[0:n*n], B[0:n*n])",
	"#pragma acc exit data copyout(CG[0:n*n]), delete(A[0:n*n], B[0:n*n])",
	"#pragma acc kernels loop tile(3, 5)",
	"#pragma acc parallel wait(var1, 2)",
	"#pragma acc wait async(var)",
	"#pragma acc wait      ",
	"#pragma acc wait(1, q) async(2)",
	"#pragma acc update self(a)",
	"#pragma acc update host(a[0:n]) if(n > 0) async",
	"#pragma acc declare link(a)",
	"#pragma acc declare device_resident(buf) create(tmp[0:64])",
	"#pragma acc kernels default(none)",
	"#pragma acc atomic capture",
	"#pragma acc atomic",
	"        #pragma acc host_data use_device(data)",
	"#pragma acc routine(saxpy) seq nohost",
	`#pragma acc routine gang bind("saxpy_dev")`,
	"#pragma acc cache(a[i-1:3], b)",
	"#pragma acc loop collapse(2) gang worker vector(32) auto",
	"#pragma acc loop seq",
	"#pragma acc loop reduction(max:err) private(tmp)",
	"#pragma acc parallel deviceptr(p, q) firstprivate(n) async(queue+1) wait",
	"#pragma acc kernels pcopy(a) pcopyin(b) pcopyout(c) pcreate(d)",
	"#pragma acc data present_or_copy(a) present_or_copyout(b) present_or_create(c)",
	"#pragma\tacc   parallel   loop /* comment */ gang\t\\\n  vector",
	"#pragma acc parallel if(a + b * c == d && !e || f ? g : h)",
	"#pragma acc parallel num_gangs(sizeof(a) / sizeof a[0]) num_workers(s.n->m[i](1, 2)++)",
	"#pragma acc parallel async(x = y += 1)",
	`#pragma acc parallel if("a" "b") vector_length(-1u << 2 | 0x10 ^ ~'c')`,
	"#pragma acc parallel copy(data[0:n], copy) copyin(device)",
	"\n#pragma acc loop independent   \n",
	"//#pragma acc kernels loop private(cgit,j,k)",
	"",
	"   /* nothing */  ",
}

func mustParse(t *testing.T, src string, opts ...Option) ast.Node {
	t.Helper()
	root, err := ParseString(src, opts...)
	if err != nil {
		t.Fatalf("ParseString(%q): %v", src, err)
	}
	return root
}

func TestRoundTrip(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatal(err)
	}
	for _, src := range corpus {
		root, err := p.ParseString(src)
		if err != nil {
			t.Errorf("ParseString(%q): %v", src, err)
			continue
		}
		if got := ast.String(root); got != src {
			t.Errorf("round trip:\n got %q\nwant %q", got, src)
		}
		if ast.FindFirst(root, ast.IsError) != nil {
			t.Errorf("%q: unexpected error node", src)
		}
	}
}

func TestParentInvariant(t *testing.T) {
	for _, src := range corpus {
		root := mustParse(t, src)
		if root.Parent() != nil {
			t.Fatalf("%q: root has a parent", src)
		}
		for n := range ast.Preorder(root) {
			for _, c := range ast.Children(n) {
				if c.Parent() != n {
					t.Fatalf("%q: child %T of %T has parent %T", src, c, n, c.Parent())
				}
			}
		}
	}
}

func TestConstructKinds(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Kind
	}{
		{"#pragma acc parallel", ast.ParallelConstruct},
		{"#pragma acc parallel loop", ast.ParallelLoopConstruct},
		{"#pragma acc kernels", ast.KernelsConstruct},
		{"#pragma acc kernels loop", ast.KernelsLoopConstruct},
		{"#pragma acc loop", ast.LoopConstruct},
		{"#pragma acc data", ast.DataConstruct},
		{"#pragma acc host_data use_device(a)", ast.HostDataConstruct},
		{"#pragma acc declare copy(a)", ast.DeclareConstruct},
		{"#pragma acc update device(a)", ast.UpdateConstruct},
		{"#pragma acc cache(a)", ast.CacheConstruct},
		{"#pragma acc wait", ast.WaitConstruct},
		{"#pragma acc enter data create(a)", ast.EnterDataConstruct},
		{"#pragma acc exit data delete(a)", ast.ExitDataConstruct},
		{"#pragma acc routine", ast.RoutineConstruct},
		{"#pragma acc atomic update", ast.AtomicConstruct},
		{"int x;", ast.Invalid},
	}
	for _, tt := range tests {
		if tt.want == ast.Invalid {
			if _, err := ParseString(tt.src); err == nil {
				t.Errorf("%q: expected an error", tt.src)
			}
			continue
		}
		root := mustParse(t, tt.src)
		if got := ast.KindOf(root); got != tt.want {
			t.Errorf("%q: kind %s, want %s", tt.src, got, tt.want)
		}
		if !ast.TagsOf(root).Has(ast.TagConstruct) {
			t.Errorf("%q: root is not tagged Construct", tt.src)
		}
	}
}

func clausesOf(t *testing.T, root ast.Node) []ast.Node {
	t.Helper()
	b, ok := root.(*ast.Branch)
	if !ok {
		t.Fatalf("root is %T", root)
	}
	list, ok := b.Get("clauses").(*ast.SeparatedList)
	if !ok {
		t.Fatalf("%s has no clause list", b.Kind())
	}
	return list.Elems()
}

func TestClauseShapes(t *testing.T) {
	root := mustParse(t, "#pragma acc kernels loop independent, present(inGrid[0:nx*ny],outGrid[0:nx*ny])")
	clauses := clausesOf(t, root)
	if len(clauses) != 2 {
		t.Fatalf("got %d clauses", len(clauses))
	}
	if ast.KindOf(clauses[0]) != ast.IndependentClause || ast.KindOf(clauses[1]) != ast.PresentClause {
		t.Fatalf("clause kinds %s, %s", ast.KindOf(clauses[0]), ast.KindOf(clauses[1]))
	}
	sep := clauses[0].Parent().(*ast.SeparatedList).Separator(1)
	if sep == nil || sep.Text != "," {
		t.Fatalf("separator = %v", sep)
	}
	present := clauses[1].(*ast.Branch)
	items := present.Get("list").(*ast.SeparatedList).Elems()
	if len(items) != 2 {
		t.Fatalf("got %d data items", len(items))
	}
	item := items[1].(*ast.Branch)
	if ast.Text(item.Get("identifier")) != "outGrid" {
		t.Fatalf("identifier = %q", ast.Text(item.Get("identifier")))
	}
	if ast.KindOf(item.Get("lower")) != ast.ConstantExpr || ast.KindOf(item.Get("length")) != ast.BinaryExpr {
		t.Fatalf("bounds %s, %s", ast.KindOf(item.Get("lower")), ast.KindOf(item.Get("length")))
	}

	root = mustParse(t, "#pragma acc loop reduction(+:t1,t2)")
	red := clausesOf(t, root)[0].(*ast.Branch)
	if op := red.Token("operator"); op == nil || op.Kind != token.ADD {
		t.Fatalf("operator = %v", red.Get("operator"))
	}
	if n := len(red.Get("list").(*ast.SeparatedList).Elems()); n != 2 {
		t.Fatalf("reduction list has %d names", n)
	}

	root = mustParse(t, "#pragma acc parallel copyin(a) copyout(b)")
	clauses = clausesOf(t, root)
	if clauses[1].Parent().(*ast.SeparatedList).Separator(1) != nil {
		t.Fatal("clauses without a comma have a separator")
	}
}

func TestOptionalParts(t *testing.T) {
	root := mustParse(t, "#pragma acc parallel loop gang async vector(32)")
	clauses := clausesOf(t, root)
	gang := clauses[0].(*ast.Branch)
	if gang.Get("lparen") != nil || gang.Get("count") != nil {
		t.Fatal("bare gang has a count")
	}
	vector := clauses[2].(*ast.Branch)
	if ast.Text(vector.Get("count")) != "32" || vector.Token("rparen") == nil {
		t.Fatalf("vector = %q", ast.String(vector))
	}

	wait := mustParse(t, "#pragma acc wait async(1)").(*ast.Branch)
	if wait.Get("args") != nil || wait.Get("clauses") == nil {
		t.Fatal("wait construct slots misassigned")
	}
	routine := mustParse(t, "#pragma acc routine(f) worker").(*ast.Branch)
	if ast.KindOf(routine.Get("name")) != ast.Identifier || routine.Get("clauses") == nil {
		t.Fatal("routine construct slots misassigned")
	}
}

func TestExpressionShapes(t *testing.T) {
	countOf := func(src string) ast.Node {
		t.Helper()
		clause := clausesOf(t, mustParse(t, src))[0].(*ast.Branch)
		return clause.Get("count")
	}
	tests := []struct {
		src   string
		want  ast.Kind
		check func(*ast.Branch) bool
	}{
		{"#pragma acc parallel if(a + b * c)", ast.BinaryExpr, func(b *ast.Branch) bool {
			return b.Token("operator").Kind == token.ADD && ast.KindOf(b.Get("rhs")) == ast.BinaryExpr
		}},
		{"#pragma acc parallel if(a - b - c)", ast.BinaryExpr, func(b *ast.Branch) bool {
			return ast.Text(b.Get("rhs")) == "c" && ast.KindOf(b.Get("lhs")) == ast.BinaryExpr
		}},
		{"#pragma acc parallel if(a ? b : c ? d : e)", ast.TernaryExpr, func(b *ast.Branch) bool {
			return ast.KindOf(b.Get("else")) == ast.TernaryExpr
		}},
		{"#pragma acc parallel async(x = y += 1)", ast.AssignmentExpr, func(b *ast.Branch) bool {
			return ast.KindOf(b.Get("rhs")) == ast.AssignmentExpr
		}},
		{"#pragma acc parallel async(-x++)", ast.PrefixUnaryExpr, func(b *ast.Branch) bool {
			return ast.KindOf(b.Get("operand")) == ast.PostfixUnaryExpr
		}},
		{"#pragma acc parallel async(f())", ast.FunctionCallExpr, func(b *ast.Branch) bool {
			return b.Get("args") == nil && b.Token("rparen") != nil
		}},
		{"#pragma acc parallel async(p->q.r)", ast.ElementAccessExpr, func(b *ast.Branch) bool {
			return b.Token("operator").Kind == token.PERIOD && ast.KindOf(b.Get("structure")) == ast.ElementAccessExpr
		}},
		{"#pragma acc parallel async(sizeof(int))", ast.SizeofExpr, func(b *ast.Branch) bool {
			return ast.KindOf(b.Get("operand")) == ast.ParenExpr
		}},
		{`#pragma acc parallel if("a" "b")`, ast.StringLiteralExpr, func(b *ast.Branch) bool {
			return b.Get("literals").Len() == 2
		}},
		{"#pragma acc parallel async(a[i][j])", ast.ArrayAccessExpr, func(b *ast.Branch) bool {
			return ast.KindOf(b.Get("array")) == ast.ArrayAccessExpr
		}},
	}
	for _, tt := range tests {
		n := countOf(tt.src)
		b, ok := n.(*ast.Branch)
		if !ok || b.Kind() != tt.want {
			t.Errorf("%q: count is %s, want %s", tt.src, ast.KindOf(n), tt.want)
			continue
		}
		if !tt.check(b) {
			t.Errorf("%q: unexpected shape %s", tt.src, ast.String(b))
		}
	}

	asg := countOf("#pragma acc parallel async(x = 1)")
	if ast.TagsOf(asg).Has(ast.TagConstantExpression) || !ast.TagsOf(asg).Has(ast.TagAssignmentExpression) {
		t.Fatalf("assignment tags = %s", ast.TagsOf(asg))
	}
}

func TestSoftKeywords(t *testing.T) {
	root := mustParse(t, "#pragma acc host_data use_device(data)")
	use := clausesOf(t, root)[0].(*ast.Branch)
	id := use.Get("list").(*ast.SeparatedList).Elems()[0].(*ast.Branch)
	name := id.Token("name")
	if name.Kind != token.DATA || name.Text != "data" {
		t.Fatalf("name = %v", name)
	}

	root = mustParse(t, "#pragma acc parallel async(max(a, min))")
	if call := ast.FindFirst(root, ast.OfKind(ast.FunctionCallExpr)); call == nil {
		t.Fatal("max(a, min) is not a call")
	}
}

func TestMaximalMunch(t *testing.T) {
	toks, err := Tokenize(strings.NewReader("#pragma acc loop independentx"))
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 4 || toks[2].Kind != token.IDENTIFIER || toks[2].Text != "independentx" {
		t.Fatalf("tokens = %v", toks)
	}
	if _, err := ParseString("#pragma acc loop independentx"); err == nil {
		t.Fatal("independentx accepted as a clause")
	}
	root := mustParse(t, "#pragma acc loop independent")
	if ast.KindOf(clausesOf(t, root)[0]) != ast.IndependentClause {
		t.Fatal("independent not recognised")
	}
}

func TestWhitespaceFolding(t *testing.T) {
	variants := []string{
		"#pragma acc parallel loop gang copy(a[0:n],b) async(1)",
		"#pragma acc   parallel\tloop  gang copy( a [ 0 : n ] , b )async (1)  ",
		"#pragma acc parallel /* x */ loop gang \\\ncopy(a[0:n],b)// tail\n async(1)",
	}
	want := ast.NewOutline(mustParse(t, variants[0])).Shape()
	for _, src := range variants[1:] {
		root := mustParse(t, src)
		if got := ast.String(root); got != src {
			t.Errorf("round trip %q -> %q", src, got)
		}
		if got := ast.NewOutline(root).Shape(); !reflect.DeepEqual(got, want) {
			t.Errorf("%q: shape differs from %q", src, variants[0])
		}
	}
}

func TestRecoveryInsideAsync(t *testing.T) {
	src := "#pragma acc parallel async(f(x y) z) copy(a)"
	root := mustParse(t, src)
	if got := ast.String(root); got != src {
		t.Fatalf("round trip %q", got)
	}
	clauses := clausesOf(t, root)
	if len(clauses) != 2 {
		t.Fatalf("got %d clauses", len(clauses))
	}
	e, ok := clauses[0].(*ast.ErrorNode)
	if !ok {
		t.Fatalf("first clause is %T", clauses[0])
	}
	if e.Intended != ast.AsyncClause {
		t.Fatalf("intended = %s", e.Intended)
	}
	if e.Lookahead == nil || e.Lookahead.Text != "y" {
		t.Fatalf("lookahead = %v", e.Lookahead)
	}
	if len(e.Expected) == 0 {
		t.Fatal("no expected terminals recorded")
	}
	if got := ast.Text(e); got != "async(f(x y) z)" {
		t.Fatalf("error node text = %q", got)
	}
	if !ast.TagsOf(e).Has(ast.TagParallelClause) || !ast.IsError(e) {
		t.Fatalf("tags = %s", ast.TagsOf(e))
	}
	if ast.KindOf(clauses[1]) != ast.CopyClause {
		t.Fatalf("parsing did not resume: %s", ast.KindOf(clauses[1]))
	}
	if found := ast.FindFirst(root, ast.OfKind(ast.AsyncClause)); found != e {
		t.Fatal("OfKind does not match the error node's intended kind")
	}
}

func TestRecoveryInsideDataList(t *testing.T) {
	root := mustParse(t, "#pragma acc data copyin(a b) copyout(c)")
	errs := ast.FindAll(root, ast.IsError)
	if len(errs) != 1 || errs[0].(*ast.ErrorNode).Intended != ast.CopyinClause {
		t.Fatalf("errors = %v", errs)
	}
}

func TestSyntaxErrorAtIllegalCharacter(t *testing.T) {
	_, err := ParseString("#pragma acc parallel @")
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if synErr.Token != nil {
		t.Fatalf("token = %v, want nil", synErr.Token)
	}
	if synErr.Pos.Line != 1 || synErr.Pos.Column != 22 {
		t.Fatalf("pos = %v, want 1:22", synErr.Pos)
	}
	for _, k := range []token.Kind{token.COPY, token.COPYIN, token.IF, token.ASYNC, token.LOOP, token.EOF} {
		if !synErr.Expects(k) {
			t.Errorf("expected set lacks %s", k)
		}
	}
	if synErr.Expects(token.STRING_LITERAL) {
		t.Error("expected set contains STRING_LITERAL")
	}
	var lexErr *LexicalError
	if !errors.As(err, &lexErr) || lexErr.Char != '@' {
		t.Fatalf("lexical error = %v", lexErr)
	}
	if !strings.Contains(err.Error(), "unexpected character '@' at line 1, column 22") {
		t.Fatalf("message %q", err.Error())
	}
}

func TestSyntaxErrorAtEOF(t *testing.T) {
	_, err := ParseString("#pragma acc parallel copy(a")
	var synErr *SyntaxError
	if !errors.As(err, &synErr) || synErr.Token == nil || synErr.Token.Kind != token.EOF {
		t.Fatalf("err = %v, want syntax error at end of input", err)
	}
}

func TestEmptyConstruct(t *testing.T) {
	for _, src := range []string{"", "  \n\t", "// #pragma acc loop", "/* #pragma acc kernels */\n"} {
		root := mustParse(t, src)
		b, ok := root.(*ast.Branch)
		if !ok || b.Kind() != ast.NoConstruct {
			t.Fatalf("%q: got %s", src, ast.KindOf(root))
		}
		end := b.Token("end")
		if end == nil || end.Kind != token.EOF {
			t.Fatalf("%q: end = %v", src, b.Get("end"))
		}
		if end.WhiteBefore != src || ast.String(root) != src {
			t.Fatalf("%q: reprint %q", src, ast.String(root))
		}
	}
}

func TestDialects(t *testing.T) {
	src := "#pragma acc enter data copyin(a)"
	if _, err := ParseString(src, WithDialect(grammars.OpenACC10)); err == nil {
		t.Fatal("1.0 accepted enter data")
	} else {
		var synErr *SyntaxError
		if !errors.As(err, &synErr) || synErr.Token.Kind != token.IDENTIFIER || synErr.Token.Text != "enter" {
			t.Fatalf("err = %v", err)
		}
	}
	if kind := ast.KindOf(mustParse(t, src)); kind != ast.EnterDataConstruct {
		t.Fatalf("2.0 parsed %s", kind)
	}

	// self is an ordinary name in 1.0.
	root := mustParse(t, "#pragma acc kernels copy(self)", WithDialect(grammars.OpenACC10))
	if ast.String(root) != "#pragma acc kernels copy(self)" {
		t.Fatal("1.0 round trip failed")
	}
	if _, err := New(WithDialect("openacc-3.3")); !errors.Is(err, grammars.ErrUnknownDialect) {
		t.Fatalf("err = %v", err)
	}
	p, _ := New(WithDialect(grammars.OpenACC10))
	if p.Dialect() != grammars.OpenACC10 {
		t.Fatalf("dialect = %s", p.Dialect())
	}
}

func TestCloneIsolation(t *testing.T) {
	root := mustParse(t, "#pragma acc parallel copy(a, b) async(1)")
	before := ast.String(root)
	cp := ast.Clone(root)
	if ast.String(cp) != before {
		t.Fatal("clone reprints differently")
	}
	item := ast.FindFirst(cp, ast.OfKind(ast.DataItem))
	if _, err := ast.ReplaceWithText(item, "z"); err != nil {
		t.Fatal(err)
	}
	if err := ast.Remove(ast.FindFirst(cp, ast.OfKind(ast.AsyncClause))); err != nil {
		t.Fatal(err)
	}
	if got := ast.String(cp); got != "#pragma acc parallel copy(z, b)" {
		t.Fatalf("mutated clone = %q", got)
	}
	if ast.String(root) != before {
		t.Fatalf("original changed to %q", ast.String(root))
	}
}

func TestRemoveClause(t *testing.T) {
	root := mustParse(t, "#pragma acc data copy(a), copyin(b), copyout(c)")
	if err := ast.Remove(ast.FindFirst(root, ast.OfKind(ast.CopyinClause))); err != nil {
		t.Fatal(err)
	}
	if got := ast.String(root); got != "#pragma acc data copy(a), copyout(c)" {
		t.Fatalf("got %q", got)
	}
}

func TestHandlersOnParsedTree(t *testing.T) {
	root := mustParse(t, "#pragma acc parallel loop gang copy(a) reduction(+:s) async(2)")
	var parallelOnly, loopOnly int
	h := &ast.Handlers{
		Tags: map[ast.Tag]func(ast.Node) bool{
			ast.TagParallelClause: func(ast.Node) bool { parallelOnly++; return true },
			ast.TagLoopClause:     func(ast.Node) bool { loopOnly++; return true },
		},
	}
	h.Accept(root)
	// copy, reduction and async are parallel clauses; gang and reduction
	// are loop clauses.
	if parallelOnly != 3 || loopOnly != 2 {
		t.Fatalf("parallel=%d loop=%d", parallelOnly, loopOnly)
	}
}

func TestUnifyParsedTrees(t *testing.T) {
	pattern := mustParse(t, "#pragma acc data copy(x[0:n]) copyout(x)")
	tree := mustParse(t, "#pragma acc data copy(arr[0:len]) copyout(arr)")
	names, ok := ast.Unify(pattern, tree)
	if !ok || names["x"] != "arr" || names["n"] != "len" {
		t.Fatalf("Unify = %v, %v", names, ok)
	}
	other := mustParse(t, "#pragma acc data copy(arr[0:len]) copyout(brr)")
	if _, ok := ast.Unify(pattern, other); ok {
		t.Fatal("inconsistent binding unified")
	}
}

func TestUnifyBindsKeywordNames(t *testing.T) {
	pattern := mustParse(t, "#pragma acc data copy(x[0:n]) copyout(x)")
	tree := mustParse(t, "#pragma acc data copy(data[0:device]) copyout(data)")
	names, ok := ast.Unify(pattern, tree)
	if !ok || names["x"] != "data" || names["n"] != "device" {
		t.Fatalf("Unify = %v, %v", names, ok)
	}
	if _, ok := ast.Unify(mustParse(t, "#pragma acc data copy(x)"), mustParse(t, "#pragma acc data copyin(x)")); ok {
		t.Fatal("clause keywords unified as names")
	}
}

func TestConcurrentParsing(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(corpus)*4)
	for w := 0; w < 4; w++ {
		for _, src := range corpus {
			wg.Add(1)
			go func() {
				defer wg.Done()
				root, err := p.ParseString(src)
				if err != nil {
					errs <- err
					return
				}
				if ast.String(root) != src {
					errs <- errors.New("round trip mismatch for " + src)
				}
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
