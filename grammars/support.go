package grammars

import (
	"sort"

	"github.com/odvcencio/accparse/token"
)

// TableReport summarizes the compiled tables of one dialect.
type TableReport struct {
	Name             string `json:"name" yaml:"name"`
	Default          bool   `json:"default" yaml:"default"`
	Keywords         int    `json:"keywords" yaml:"keywords"`
	States           int    `json:"states" yaml:"states"`
	Terminals        int    `json:"terminals" yaml:"terminals"`
	Nonterminals     int    `json:"nonterminals" yaml:"nonterminals"`
	Productions      int    `json:"productions" yaml:"productions"`
	ErrorProductions int    `json:"error_productions" yaml:"error_productions"`
	RecoveryStates   int    `json:"recovery_states" yaml:"recovery_states"`
	Actions          int    `json:"actions" yaml:"actions"`
	LexStates        int    `json:"lex_states" yaml:"lex_states"`
	Err              string `json:"error,omitempty" yaml:"error,omitempty"`
}

// EvaluateTables builds the report for one dialect, compiling it if needed.
func EvaluateTables(entry *LangEntry) TableReport {
	report := TableReport{
		Name:     entry.Name,
		Default:  entry.IsDefault(),
		Keywords: len(entry.Keywords()),
	}
	lang, acts, err := entry.Load()
	if err != nil {
		report.Err = err.Error()
		return report
	}
	report.States = int(lang.StateCount)
	report.Terminals = token.NumKinds + 1
	report.Nonterminals = int(lang.SymbolCount) - report.Terminals
	report.Productions = len(lang.Productions)
	report.Actions = len(lang.ParseActions) - 1
	report.LexStates = len(lang.LexStates)
	for _, a := range acts.acts {
		if a.shape == shapeRecover {
			report.ErrorProductions++
		}
	}
	for _, items := range lang.ErrorItems {
		if len(items) > 0 {
			report.RecoveryStates++
		}
	}
	return report
}

// AuditTables evaluates every registered dialect, sorted by name.
func AuditTables() []TableReport {
	entries := All()
	reports := make([]TableReport, 0, len(entries))
	for _, entry := range entries {
		reports = append(reports, EvaluateTables(entry))
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Name < reports[j].Name
	})
	return reports
}
