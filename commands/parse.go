package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/accparse/ast"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse a directive and print its syntax tree",
	Long: `Parse one OpenACC directive and print its syntax tree as a styled
tree, YAML or JSON.

Errors the parser recovers from appear as Error nodes in the tree and are
counted on standard error. Errors it cannot recover from fail the command.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "tree", "output format: tree, yaml or json")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
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
	st := newStyles(cmd.OutOrStdout(), appConfig.Output.Colored())
	if err := writeOutline(cmd.OutOrStdout(), ast.NewOutline(root), format, st); err != nil {
		return err
	}
	if errs := ast.FindAll(root, ast.IsError); len(errs) > 0 {
		for _, e := range errs {
			tok := ast.FindFirstToken(e)
			logger.Warn("recovered syntax error", "file", name, "line", tok.Pos.Line, "column", tok.Pos.Column, "clause", ast.Text(e))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d syntax error(s) recovered\n", name, len(errs))
	}
	return nil
}
