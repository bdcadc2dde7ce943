// Package commands implements the accparse command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/accparse/config"
	"github.com/odvcencio/accparse/parser"
)

var (
	cfgFile string
	verbose bool
	dialect string

	// Set by the root command before any subcommand runs.
	appConfig *config.Config
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "accparse",
	Short: "Parse OpenACC directives",
	Long: `accparse lexes and parses OpenACC #pragma acc directives into syntax
trees that reprint the input byte for byte.

Input is read from a file argument, or from standard input when the
argument is "-" or missing.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $ACCPARSE_CONFIG, ./accparse.toml, ~/.config/accparse/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().StringVarP(&dialect, "dialect", "d", "", "OpenACC dialect (overrides [parser] dialect)")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		appConfig, err = config.Load(cfgFile)
	} else {
		appConfig, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}
	if dialect != "" {
		appConfig.Parser.Dialect = dialect
		if err := appConfig.Validate(); err != nil {
			return err
		}
	}
	logger = newLogger(cmd.ErrOrStderr(), appConfig.Log, verbose)
	logger.Debug("config loaded", "dialect", appConfig.Parser.Dialect, "format", appConfig.Output.Format)
	return nil
}

func newLogger(w io.Writer, c config.LogConfig, verbose bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newParser() (*parser.Parser, error) {
	return parser.New(parser.WithDialect(appConfig.Parser.Dialect), parser.WithLogger(logger))
}

// readInput returns the named file, or standard input for "-" or no name.
func readInput(cmd *cobra.Command, args []string) (name string, src []byte, err error) {
	if len(args) == 0 || args[0] == "-" {
		src, err = io.ReadAll(cmd.InOrStdin())
		return "<stdin>", src, err
	}
	src, err = os.ReadFile(args[0])
	if err != nil {
		return args[0], nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return args[0], src, nil
}

// outputFormat returns the --format flag if set, else the configured one.
func outputFormat(cmd *cobra.Command) (string, error) {
	f := cmd.Flags().Lookup("format")
	if f == nil || !f.Changed {
		return appConfig.Output.Format, nil
	}
	switch f.Value.String() {
	case config.FormatTree, config.FormatYAML, config.FormatJSON:
		return f.Value.String(), nil
	}
	return "", fmt.Errorf("unknown format %q (want tree, yaml or json)", f.Value.String())
}
