package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/accparse/config"
	"github.com/odvcencio/accparse/grammars"
)

var tablesFormat string

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Compile every dialect and report its table sizes",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List the OpenACC dialects",
	Args:  cobra.NoArgs,
	RunE:  runDialects,
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(dialectsCmd)
	tablesCmd.Flags().StringVarP(&tablesFormat, "format", "f", "tree", "output format: tree (a table), yaml or json")
}

func runTables(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	reports := grammars.AuditTables()
	w := cmd.OutOrStdout()
	switch format {
	case config.FormatJSON:
		err = writeJSON(w, reports)
	case config.FormatYAML:
		err = writeYAML(w, reports)
	default:
		err = renderReports(cmd, reports)
	}
	if err != nil {
		return err
	}
	for _, r := range reports {
		if r.Err != "" {
			return fmt.Errorf("dialect %s: %s", r.Name, r.Err)
		}
	}
	return nil
}

func renderReports(cmd *cobra.Command, reports []grammars.TableReport) error {
	st := newStyles(cmd.OutOrStdout(), appConfig.Output.Colored())
	headers := []string{"dialect", "states", "terms", "nonterms", "prods", "errprods", "recovery", "actions", "lexstates"}
	widths := []int{14, 8, 7, 10, 7, 10, 10, 9, 10}
	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(column(st.header, h, widths[i]))
	}
	sb.WriteByte('\n')
	for _, r := range reports {
		name := r.Name
		if r.Default {
			name += "*"
		}
		if r.Err != "" {
			sb.WriteString(column(st.kind, name, widths[0]))
			sb.WriteString(st.err.Render(r.Err))
			sb.WriteByte('\n')
			continue
		}
		cells := []int{r.States, r.Terminals, r.Nonterminals, r.Productions, r.ErrorProductions, r.RecoveryStates, r.Actions, r.LexStates}
		sb.WriteString(column(st.kind, name, widths[0]))
		for i, n := range cells {
			sb.WriteString(column(st.text, fmt.Sprint(n), widths[i+1]))
		}
		sb.WriteByte('\n')
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), sb.String())
	return err
}

func runDialects(cmd *cobra.Command, args []string) error {
	st := newStyles(cmd.OutOrStdout(), appConfig.Output.Colored())
	var sb strings.Builder
	for _, e := range grammars.All() {
		marker := " "
		if e.Name == appConfig.Parser.Dialect {
			marker = "*"
		}
		sb.WriteString(marker + " ")
		sb.WriteString(column(st.kind, e.Name, 14))
		sb.WriteString(column(st.pos, fmt.Sprintf("%d keywords", len(e.Keywords())), 14))
		sb.WriteString(e.Description)
		sb.WriteByte('\n')
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), sb.String())
	return err
}
