// Package grammars defines the OpenACC dialects: their lexer rules,
// grammar productions and the semantic actions that turn reductions into
// AST nodes.
package grammars

import (
	"errors"
	"fmt"
	"sync"

	"github.com/odvcencio/accparse/lr"
	"github.com/odvcencio/accparse/token"
)

// Dialect names.
const (
	OpenACC10 = "openacc-1.0"
	OpenACC20 = "openacc-2.0"

	// Default is the dialect used when none is named.
	Default = OpenACC20
)

// ErrUnknownDialect is returned by Lookup for an unregistered name.
var ErrUnknownDialect = errors.New("unknown dialect")

// LangEntry is a registered dialect. Its tables are compiled on first use
// and shared afterwards.
type LangEntry struct {
	Name        string
	Description string

	d       dialect
	once    sync.Once
	lang    *lr.Language
	actions *Actions
	err     error
}

// Load returns the compiled tables and semantic actions of the dialect.
func (e *LangEntry) Load() (*lr.Language, *Actions, error) {
	e.once.Do(func() {
		e.lang, e.actions, e.err = compile(e.d)
	})
	return e.lang, e.actions, e.err
}

// Keywords returns the keywords the dialect reserves.
func (e *LangEntry) Keywords() []token.Kind { return e.d.keywords() }

// IsDefault reports whether the entry is the default dialect.
func (e *LangEntry) IsDefault() bool { return e.Name == Default }

var registry = []*LangEntry{
	{
		Name:        OpenACC10,
		Description: "OpenACC 1.0 directives",
		d:           dialect{name: OpenACC10, version: 10},
	},
	{
		Name:        OpenACC20,
		Description: "OpenACC 2.0: adds enter/exit data, routine, atomic, default(none), tile and related clauses",
		d:           dialect{name: OpenACC20, version: 20},
	},
}

// Lookup returns the dialect registered under name. The empty name selects
// Default.
func Lookup(name string) (*LangEntry, error) {
	if name == "" {
		name = Default
	}
	for _, e := range registry {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownDialect, name)
}

// All returns every registered dialect, oldest first.
func All() []*LangEntry {
	return registry
}

// Names returns the registered dialect names.
func Names() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.Name
	}
	return names
}
