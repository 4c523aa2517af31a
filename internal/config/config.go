// Package config reads faultline.toml. The file is found by walking up from the
// analyzed path; every value can be overridden by a command-line flag.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"faultline/internal/diagfmt"
	"faultline/internal/oracle"
)

// FileName is the name looked up by Find.
const FileName = "faultline.toml"

// Formats accepted in [output].format.
var Formats = []string{"pretty", "json", "yaml", "short", "sarif"}

// Config mirrors faultline.toml.
type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path   string       `toml:"-"`
	Search SearchConfig `toml:"search"`
	Oracle OracleConfig `toml:"oracle"`
	Output OutputConfig `toml:"output"`
	Files  FilesConfig  `toml:"files"`
}

type SearchConfig struct {
	TimeoutRaw     string        `toml:"timeout"`
	Timeout        time.Duration `toml:"-"`
	MaxTicks       int           `toml:"max_ticks"`
	MaxCoverChecks int           `toml:"max_cover_checks"`
	BalanceLimit   int           `toml:"balance_limit"`
	RecordDir      string        `toml:"record_dir"`
}

type OracleConfig struct {
	Kind       string        `toml:"kind"`
	Command    []string      `toml:"command"`
	TimeoutRaw string        `toml:"timeout"`
	Timeout    time.Duration `toml:"-"`
	Cache      bool          `toml:"cache"`
	CacheDir   string        `toml:"cache_dir"`
}

type OutputConfig struct {
	Format         string `toml:"format"`
	Context        int    `toml:"context"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	PathMode       string `toml:"path_mode"`
}

type FilesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	Jobs    int      `toml:"jobs"`
}

// Default is the configuration used without a faultline.toml.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{Kind: oracle.KindBuiltin},
		Output: OutputConfig{Format: "pretty", Context: 2, PathMode: "auto"},
	}
}

// Find walks up from startDir to the first directory holding FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the config for startDir, or returns Default.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path over the defaults and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path

	if meta.IsDefined("search", "timeout") {
		if cfg.Search.Timeout, err = parseDuration(cfg.Search.TimeoutRaw); err != nil {
			return nil, fmt.Errorf("%s: [search].timeout: %w", path, err)
		}
	}
	if meta.IsDefined("oracle", "timeout") {
		if cfg.Oracle.Timeout, err = parseDuration(cfg.Oracle.TimeoutRaw); err != nil {
			return nil, fmt.Errorf("%s: [oracle].timeout: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// Validate checks the values that Load cannot check through types alone.
func (c *Config) Validate() error {
	c.Oracle.Kind = oracle.NormalizeKind(c.Oracle.Kind)
	switch c.Oracle.Kind {
	case oracle.KindBuiltin, oracle.KindRuby, oracle.KindTreeSitter:
	case oracle.KindCommand:
		if len(c.Oracle.Command) == 0 {
			return errors.New("[oracle].command is required for kind \"command\"")
		}
	default:
		return fmt.Errorf("[oracle].kind: unknown oracle %q", c.Oracle.Kind)
	}
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("[output].format: want one of %s, got %q", strings.Join(Formats, ", "), c.Output.Format)
	}
	if _, ok := diagfmt.ParsePathMode(c.Output.PathMode); !ok {
		return fmt.Errorf("[output].path_mode: unknown mode %q", c.Output.PathMode)
	}
	switch {
	case c.Output.Context < 0:
		return errors.New("[output].context must not be negative")
	case c.Output.MaxDiagnostics < 0:
		return errors.New("[output].max_diagnostics must not be negative")
	case c.Search.MaxTicks < 0, c.Search.MaxCoverChecks < 0, c.Search.BalanceLimit < 0:
		return errors.New("[search] limits must not be negative")
	case c.Files.Jobs < 0:
		return errors.New("[files].jobs must not be negative")
	}
	return nil
}
