package main

import (
	"fmt"
	"go/format"
	"sort"
	"strings"
	"unicode"

	"github.com/odvcencio/accparse/lr"
	"github.com/odvcencio/accparse/token"
)

// FuncName turns a dialect name such as "openacc-2.0" into an exported
// function name such as "OpenACC20Language".
func FuncName(dialect string) string {
	var sb strings.Builder
	upper := true
	for _, r := range strings.TrimPrefix(dialect, "openacc") {
		switch {
		case unicode.IsLetter(r):
			if upper {
				r = unicode.ToUpper(r)
			}
			sb.WriteRune(r)
			upper = false
		case unicode.IsDigit(r):
			sb.WriteRune(r)
			upper = true
		default:
			upper = true
		}
	}
	return "OpenACC" + sb.String() + "Language"
}

// GenerateGo returns gofmt'ed Go source declaring funcName, which returns
// lang's tables.
func GenerateGo(lang *lr.Language, pkg, funcName string) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by accgen for %s. DO NOT EDIT.\n\n", lang.Name)
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString("import (\n\t\"github.com/odvcencio/accparse/lr\"\n\t\"github.com/odvcencio/accparse/token\"\n)\n\n")
	fmt.Fprintf(&b, "// %s returns the compiled %s tables.\n", funcName, lang.Name)
	fmt.Fprintf(&b, "func %s() *lr.Language {\n\treturn &lr.Language{\n", funcName)
	fmt.Fprintf(&b, "Name: %q,\n", lang.Name)
	fmt.Fprintf(&b, "SymbolCount: %d,\n", lang.SymbolCount)
	fmt.Fprintf(&b, "StateCount: %d,\n", lang.StateCount)

	b.WriteString("SymbolNames: []string{\n")
	for _, n := range lang.SymbolNames {
		fmt.Fprintf(&b, "%q,\n", n)
	}
	b.WriteString("},\n")

	b.WriteString("ParseTable: [][]uint16{\n")
	for _, row := range lang.ParseTable {
		b.WriteString("{")
		writeUints(&b, row)
		b.WriteString("},\n")
	}
	b.WriteString("},\n")

	b.WriteString("ParseActions: []lr.ParseAction{\n")
	for _, a := range lang.ParseActions {
		switch a.Type {
		case lr.ParseActionShift:
			fmt.Fprintf(&b, "{Type: lr.ParseActionShift, State: %d},\n", a.State)
		case lr.ParseActionReduce:
			fmt.Fprintf(&b, "{Type: lr.ParseActionReduce, Symbol: %d, ChildCount: %d, ProductionID: %d},\n", a.Symbol, a.ChildCount, a.ProductionID)
		case lr.ParseActionAccept:
			b.WriteString("{Type: lr.ParseActionAccept},\n")
		default:
			b.WriteString("{},\n")
		}
	}
	b.WriteString("},\n")

	b.WriteString("ErrorItems: [][]lr.ErrorItem{\n")
	for _, items := range lang.ErrorItems {
		if len(items) == 0 {
			b.WriteString("nil,\n")
			continue
		}
		b.WriteString("{")
		for _, it := range items {
			fmt.Fprintf(&b, "{ProductionID: %d, LHS: %d, Prefix: %d, Sync: %s},", it.ProductionID, it.LHS, it.Prefix, kindExpr(it.Sync))
		}
		b.WriteString("},\n")
	}
	b.WriteString("},\n")

	b.WriteString("Productions: []lr.Production{\n")
	for _, p := range lang.Productions {
		fmt.Fprintf(&b, "{LHS: %d, RHS: []lr.Symbol{", p.LHS)
		for i, s := range p.RHS {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d", s)
		}
		fmt.Fprintf(&b, "}, Name: %q},\n", p.Name)
	}
	b.WriteString("},\n")

	b.WriteString("LexStates: []lr.LexState{\n")
	for _, s := range lang.LexStates {
		fmt.Fprintf(&b, "{Accepts: %t, AcceptToken: %s, Skip: %t, Transitions: []lr.LexTransition{", s.Accepts, kindExpr(s.AcceptToken), s.Skip)
		for _, t := range s.Transitions {
			fmt.Fprintf(&b, "{Lo: %d, Hi: %d, NextState: %d},", t.Lo, t.Hi, t.NextState)
		}
		b.WriteString("}},\n")
	}
	b.WriteString("},\n")

	b.WriteString("Pairs: map[token.Kind]token.Kind{\n")
	opens := make([]token.Kind, 0, len(lang.Pairs))
	for k := range lang.Pairs {
		opens = append(opens, k)
	}
	sort.Slice(opens, func(i, j int) bool { return opens[i] < opens[j] })
	for _, k := range opens {
		fmt.Fprintf(&b, "%s: %s,\n", kindExpr(k), kindExpr(lang.Pairs[k]))
	}
	b.WriteString("},\n")

	b.WriteString("}\n}\n")
	return format.Source([]byte(b.String()))
}

func writeUints(b *strings.Builder, row []uint16) {
	for i, v := range row {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%d", v)
	}
}

// kindExpr spells a token kind as a Go expression with its source text in
// a comment.
func kindExpr(k token.Kind) string {
	return fmt.Sprintf("token.Kind(%d) /* %s */", k, strings.ReplaceAll(k.String(), "*/", "* /"))
}

// Report describes lang for humans: sizes, every production and the
// states that can recover from errors.
func Report(lang *lr.Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", lang.Name)
	fmt.Fprintf(&b, "  states:       %d\n", lang.StateCount)
	fmt.Fprintf(&b, "  symbols:      %d\n", lang.SymbolCount)
	fmt.Fprintf(&b, "  actions:      %d\n", len(lang.ParseActions)-1)
	fmt.Fprintf(&b, "  productions:  %d\n", len(lang.Productions))
	fmt.Fprintf(&b, "  lex states:   %d\n", len(lang.LexStates))

	b.WriteString("\nproductions\n")
	for i, p := range lang.Productions {
		fmt.Fprintf(&b, "%5d  %s\n", i, p.Name)
	}

	b.WriteString("\nrecovery states\n")
	for state, items := range lang.ErrorItems {
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%5d ", state)
		for _, it := range items {
			fmt.Fprintf(&b, " %s (prefix %d, sync %q)", lang.SymbolName(it.LHS), it.Prefix, it.Sync.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
