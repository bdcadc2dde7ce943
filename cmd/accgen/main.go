// Command accgen compiles an OpenACC dialect and writes its tables either
// as a Go source file containing a function that returns the populated
// *lr.Language, or as a text report of productions and recovery states.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/odvcencio/accparse/grammars"
)

func main() {
	dialect := flag.String("dialect", grammars.Default, "dialect name")
	output := flag.String("output", "", "output file path (default stdout)")
	pkg := flag.String("package", "grammars", "Go package name")
	name := flag.String("func", "", "generated function name (derived from the dialect if empty)")
	report := flag.Bool("report", false, "write a text report instead of Go source")
	flag.Parse()

	entry, err := grammars.Lookup(*dialect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "accgen: %v\n", err)
		os.Exit(1)
	}
	lang, _, err := entry.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile %s: %v\n", entry.Name, err)
		os.Exit(1)
	}

	var out []byte
	if *report {
		out = []byte(Report(lang))
	} else {
		fn := *name
		if fn == "" {
			fn = FuncName(entry.Name)
		}
		out, err = GenerateGo(lang, *pkg, fn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate: %v\n", err)
			os.Exit(1)
		}
	}

	if *output == "" {
		os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(*output, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s (%s, %d states, %d symbols, %d productions)\n",
		*output, entry.Name, lang.StateCount, lang.SymbolCount, len(lang.Productions))
}
