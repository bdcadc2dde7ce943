package commands

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/accparse/ast"
)

// ErrRoundTrip is returned by print --check when the reprint differs.
var ErrRoundTrip = errors.New("reprint differs from input")

var printCheck bool

var printCmd = &cobra.Command{
	Use:   "print [file|-]",
	Short: "Parse the input and print the tree back as source",
	Long: `Parse the input and print the syntax tree back as source. An unmodified
tree reproduces the input exactly; --check fails when it does not.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrint,
}

func init() {
	rootCmd.AddCommand(printCmd)
	printCmd.Flags().BoolVar(&printCheck, "check", false, "fail if the reprint differs from the input")
}

func runPrint(cmd *cobra.Command, args []string) error {
	name, src, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	p, err := newParser()
	if err != nil {
		return err
	}
	root, err := p.Parse(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	var out bytes.Buffer
	if err := ast.Fprint(&out, root); err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(out.Bytes()); err != nil {
		return err
	}
	if printCheck && !bytes.Equal(out.Bytes(), src) {
		return fmt.Errorf("%s: %w", name, ErrRoundTrip)
	}
	logger.Debug("reprinted", "file", name, "bytes", out.Len())
	return nil
}
