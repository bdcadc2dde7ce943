package commands

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/accparse/config"
)

var tokensFormat string

var tokensCmd = &cobra.Command{
	Use:   "tokens [file|-]",
	Short: "Print the token stream of the input",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().StringVarP(&tokensFormat, "format", "f", "tree", "output format: tree (a table), yaml or json")
}

type tokenRow struct {
	Kind   string `json:"kind" yaml:"kind"`
	Text   string `json:"text" yaml:"text"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

func runTokens(cmd *cobra.Command, args []string) error {
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
	toks, err := p.Tokenize(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	rows := make([]tokenRow, 0, len(toks))
	for _, t := range toks {
		rows = append(rows, tokenRow{Kind: t.Kind.String(), Text: t.Text, Line: t.Pos.Line, Column: t.Pos.Column})
	}

	w := cmd.OutOrStdout()
	switch format {
	case config.FormatJSON:
		return writeJSON(w, rows)
	case config.FormatYAML:
		return writeYAML(w, rows)
	}
	st := newStyles(w, appConfig.Output.Colored())
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(column(st.pos, fmt.Sprintf("%d:%d", r.Line, r.Column), 8))
		sb.WriteString(column(st.token, r.Kind, 20))
		sb.WriteString(st.text.Render(fmt.Sprintf("%q", r.Text)))
		sb.WriteByte('\n')
	}
	_, err = fmt.Fprint(w, sb.String())
	return err
}
