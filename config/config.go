// Package config loads the accparse TOML configuration shared by the CLI
// and the web server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/odvcencio/accparse/grammars"
)

// EnvVar names the environment variable that points at a config file.
const EnvVar = "ACCPARSE_CONFIG"

// Output formats.
const (
	FormatTree = "tree"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("invalid config")

// Config holds the complete configuration.
type Config struct {
	Parser ParserConfig `toml:"parser"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
	Serve  ServeConfig  `toml:"serve"`
}

// ParserConfig selects the grammar.
type ParserConfig struct {
	Dialect string `toml:"dialect"`
}

// OutputConfig controls how trees are printed.
type OutputConfig struct {
	Format string `toml:"format"`
	Color  *bool  `toml:"color"`
}

// Colored reports whether terminal styling is enabled. It defaults to true.
func (o OutputConfig) Colored() bool { return o.Color == nil || *o.Color }

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServeConfig configures the websocket server.
type ServeConfig struct {
	Addr         string   `toml:"addr"`
	ReadLimit    int64    `toml:"read_limit"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load loads configuration from a TOML file and fills in defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by $ACCPARSE_CONFIG, else the first of
// ./accparse.toml and ~/.config/accparse/config.toml that exists, else the
// defaults.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	candidates := []string{"./accparse.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "accparse", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func (c *Config) applyDefaults() {
	if c.Parser.Dialect == "" {
		c.Parser.Dialect = grammars.Default
	}
	if c.Output.Format == "" {
		c.Output.Format = FormatTree
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = "localhost:7411"
	}
	if c.Serve.ReadLimit == 0 {
		c.Serve.ReadLimit = 1 << 20
	}
	if c.Serve.WriteTimeout.Duration == 0 {
		c.Serve.WriteTimeout.Duration = 10 * time.Second
	}
}

// Validate checks the values a file may get wrong.
func (c *Config) Validate() error {
	if _, err := grammars.Lookup(c.Parser.Dialect); err != nil {
		return fmt.Errorf("%w: parser.dialect: %w", ErrInvalid, err)
	}
	if !slices.Contains([]string{FormatTree, FormatYAML, FormatJSON}, c.Output.Format) {
		return fmt.Errorf("%w: output.format %q", ErrInvalid, c.Output.Format)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	if c.Serve.ReadLimit < 0 {
		return fmt.Errorf("%w: serve.read_limit %d", ErrInvalid, c.Serve.ReadLimit)
	}
	return nil
}
