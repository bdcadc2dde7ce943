package ast

import "fmt"

// Kind identifies the shape of a Branch.
type Kind uint16

const (
	Invalid Kind = iota

	// Constructs.
	NoConstruct
	ParallelConstruct
	ParallelLoopConstruct
	KernelsConstruct
	KernelsLoopConstruct
	LoopConstruct
	DataConstruct
	HostDataConstruct
	DeclareConstruct
	UpdateConstruct
	CacheConstruct
	WaitConstruct
	EnterDataConstruct
	ExitDataConstruct
	RoutineConstruct
	AtomicConstruct

	// Clauses.
	CopyClause
	CopyinClause
	CopyoutClause
	CreateClause
	PresentClause
	PresentOrCopyClause
	PresentOrCopyinClause
	PresentOrCopyoutClause
	PresentOrCreateClause
	DeviceptrClause
	DeviceResidentClause
	PrivateClause
	FirstprivateClause
	HostClause
	DeviceClause
	SelfClause
	UseDeviceClause
	DeleteClause
	LinkClause
	IfClause
	AsyncClause
	WaitClause
	NumGangsClause
	NumWorkersClause
	VectorLengthClause
	CollapseClause
	ReductionClause
	GangClause
	WorkerClause
	VectorClause
	SeqClause
	IndependentClause
	AutoClause
	NohostClause
	TileClause
	DefaultClause
	BindClause
	AtomicClause

	// Support nodes.
	DataItem
	Identifier

	// Expressions.
	IdentifierExpr
	ConstantExpr
	StringLiteralExpr
	ParenExpr
	ArrayAccessExpr
	FunctionCallExpr
	ElementAccessExpr
	PostfixUnaryExpr
	PrefixUnaryExpr
	SizeofExpr
	BinaryExpr
	TernaryExpr
	AssignmentExpr

	// Error is the kind of *ErrorNode placeholders.
	Error

	numKinds
)

// Schema describes the slots and capability tags of a kind.
type Schema struct {
	Name  string
	Slots []string
	Tags  Tag
}

var (
	dataSlots   = []string{"keyword", "lparen", "list", "rparen"}
	countSlots  = []string{"keyword", "lparen", "count", "rparen"}
	bareSlots   = []string{"keyword"}
	clauseSlots = []string{"pragma", "keyword", "clauses"}
)

var schemas = [numKinds]Schema{
	Invalid: {Name: "Invalid"},

	NoConstruct:           {"NoConstruct", []string{"end"}, TagConstruct},
	ParallelConstruct:     {"ParallelConstruct", clauseSlots, TagConstruct},
	ParallelLoopConstruct: {"ParallelLoopConstruct", []string{"pragma", "keyword", "loop", "clauses"}, TagConstruct},
	KernelsConstruct:      {"KernelsConstruct", clauseSlots, TagConstruct},
	KernelsLoopConstruct:  {"KernelsLoopConstruct", []string{"pragma", "keyword", "loop", "clauses"}, TagConstruct},
	LoopConstruct:         {"LoopConstruct", clauseSlots, TagConstruct},
	DataConstruct:         {"DataConstruct", clauseSlots, TagConstruct},
	HostDataConstruct:     {"HostDataConstruct", clauseSlots, TagConstruct},
	DeclareConstruct:      {"DeclareConstruct", clauseSlots, TagConstruct},
	UpdateConstruct:       {"UpdateConstruct", clauseSlots, TagConstruct},
	CacheConstruct:        {"CacheConstruct", []string{"pragma", "keyword", "lparen", "list", "rparen"}, TagConstruct},
	WaitConstruct:         {"WaitConstruct", []string{"pragma", "keyword", "lparen", "args", "rparen", "clauses"}, TagConstruct},
	EnterDataConstruct:    {"EnterDataConstruct", []string{"pragma", "keyword", "data", "clauses"}, TagConstruct},
	ExitDataConstruct:     {"ExitDataConstruct", []string{"pragma", "keyword", "data", "clauses"}, TagConstruct},
	RoutineConstruct:      {"RoutineConstruct", []string{"pragma", "keyword", "lparen", "name", "rparen", "clauses"}, TagConstruct},
	AtomicConstruct:       {"AtomicConstruct", []string{"pragma", "keyword", "clause"}, TagConstruct},

	CopyClause:             {"CopyClause", dataSlots, onData},
	CopyinClause:           {"CopyinClause", dataSlots, onData | TagEnterDataClause},
	CopyoutClause:          {"CopyoutClause", dataSlots, onData | TagExitDataClause},
	CreateClause:           {"CreateClause", dataSlots, onData | TagEnterDataClause},
	PresentClause:          {"PresentClause", dataSlots, onData},
	PresentOrCopyClause:    {"PresentOrCopyClause", dataSlots, onData},
	PresentOrCopyinClause:  {"PresentOrCopyinClause", dataSlots, onData | TagEnterDataClause},
	PresentOrCopyoutClause: {"PresentOrCopyoutClause", dataSlots, onData | TagExitDataClause},
	PresentOrCreateClause:  {"PresentOrCreateClause", dataSlots, onData | TagEnterDataClause},
	DeviceptrClause:        {"DeviceptrClause", dataSlots, onData},
	DeviceResidentClause:   {"DeviceResidentClause", dataSlots, TagDeclareClause},
	PrivateClause:          {"PrivateClause", dataSlots, onParallel | onLoops},
	FirstprivateClause:     {"FirstprivateClause", dataSlots, onParallel},
	HostClause:             {"HostClause", dataSlots, TagUpdateClause},
	DeviceClause:           {"DeviceClause", dataSlots, TagUpdateClause},
	SelfClause:             {"SelfClause", dataSlots, TagUpdateClause},
	UseDeviceClause:        {"UseDeviceClause", dataSlots, TagHostDataClause},
	DeleteClause:           {"DeleteClause", dataSlots, TagExitDataClause},
	LinkClause:             {"LinkClause", dataSlots, TagDeclareClause},
	IfClause:               {"IfClause", countSlots, onCompute | TagDataClause | TagEnterDataClause | TagExitDataClause | TagUpdateClause},
	AsyncClause:            {"AsyncClause", countSlots, onCompute | TagEnterDataClause | TagExitDataClause | TagUpdateClause | TagWaitConstructClause},
	WaitClause:             {"WaitClause", []string{"keyword", "lparen", "args", "rparen"}, onCompute | TagEnterDataClause | TagExitDataClause | TagUpdateClause},
	NumGangsClause:         {"NumGangsClause", countSlots, onParallel},
	NumWorkersClause:       {"NumWorkersClause", countSlots, onParallel},
	VectorLengthClause:     {"VectorLengthClause", countSlots, onParallel},
	CollapseClause:         {"CollapseClause", countSlots, onLoops},
	ReductionClause:        {"ReductionClause", []string{"keyword", "lparen", "operator", "colon", "list", "rparen"}, onParallel | onLoops},
	GangClause:             {"GangClause", countSlots, onLoops | TagRoutineClause},
	WorkerClause:           {"WorkerClause", countSlots, onLoops | TagRoutineClause},
	VectorClause:           {"VectorClause", countSlots, onLoops | TagRoutineClause},
	SeqClause:              {"SeqClause", bareSlots, onLoops | TagRoutineClause},
	IndependentClause:      {"IndependentClause", bareSlots, onLoops},
	AutoClause:             {"AutoClause", bareSlots, onLoops},
	NohostClause:           {"NohostClause", bareSlots, TagRoutineClause},
	TileClause:             {"TileClause", dataSlots, onLoops},
	DefaultClause:          {"DefaultClause", []string{"keyword", "lparen", "none", "rparen"}, onCompute},
	BindClause:             {"BindClause", []string{"keyword", "lparen", "name", "rparen"}, TagRoutineClause},
	AtomicClause:           {"AtomicClause", bareSlots, TagAtomicClause},

	DataItem:   {"DataItem", []string{"identifier", "lbracket", "lower", "colon", "length", "rbracket"}, 0},
	Identifier: {"Identifier", []string{"name"}, 0},

	IdentifierExpr:    {"IdentifierExpr", []string{"identifier"}, constExpr},
	ConstantExpr:      {"ConstantExpr", []string{"constant"}, constExpr},
	StringLiteralExpr: {"StringLiteralExpr", []string{"literals"}, constExpr},
	ParenExpr:         {"ParenExpr", []string{"lparen", "expression", "rparen"}, constExpr},
	ArrayAccessExpr:   {"ArrayAccessExpr", []string{"array", "lbracket", "index", "rbracket"}, constExpr},
	FunctionCallExpr:  {"FunctionCallExpr", []string{"function", "lparen", "args", "rparen"}, constExpr},
	ElementAccessExpr: {"ElementAccessExpr", []string{"structure", "operator", "field"}, constExpr},
	PostfixUnaryExpr:  {"PostfixUnaryExpr", []string{"operand", "operator"}, constExpr},
	PrefixUnaryExpr:   {"PrefixUnaryExpr", []string{"operator", "operand"}, constExpr},
	SizeofExpr:        {"SizeofExpr", []string{"keyword", "operand"}, constExpr},
	BinaryExpr:        {"BinaryExpr", []string{"lhs", "operator", "rhs"}, constExpr},
	TernaryExpr:       {"TernaryExpr", []string{"condition", "question", "then", "colon", "else"}, constExpr},
	AssignmentExpr:    {"AssignmentExpr", []string{"lhs", "operator", "rhs"}, TagExpression | TagAssignmentExpression},

	Error: {"Error", nil, TagError},
}

// Schema returns the schema of k.
func (k Kind) Schema() Schema {
	if k >= numKinds {
		return Schema{}
	}
	return schemas[k]
}

// Slots returns the slot names of k. The slice must not be modified.
func (k Kind) Slots() []string { return k.Schema().Slots }

// Tags returns the capability tags of k.
func (k Kind) Tags() Tag { return k.Schema().Tags }

// Slot returns the index of the named slot, or -1.
func (k Kind) Slot(name string) int {
	for i, s := range k.Slots() {
		if s == name {
			return i
		}
	}
	return -1
}

func (k Kind) String() string {
	if k < numKinds && schemas[k].Name != "" {
		return schemas[k].Name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Kinds returns every kind except Invalid, in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, numKinds-1)
	for k := Invalid + 1; k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

// KindByName maps a kind name back to its Kind, or Invalid.
func KindByName(name string) Kind {
	for k := Invalid + 1; k < numKinds; k++ {
		if schemas[k].Name == name {
			return k
		}
	}
	return Invalid
}
