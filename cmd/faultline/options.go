package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"faultline/internal/config"
	"faultline/internal/diagfmt"
	"faultline/internal/driver"
	"faultline/internal/metrics"
	"faultline/internal/oracle"
	"faultline/internal/trace"
)

// runSettings is the merged result of faultline.toml and the command-line flags.
type runSettings struct {
	cfg         *config.Config
	analyze     driver.Options
	render      renderOptions
	metricsFile string
	registry    *prometheus.Registry
}

// registerAnalyzeFlags adds the flags shared by check, watch and load.
func registerAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().String("oracle", "", "syntax oracle (builtin|ruby|command|tree-sitter)")
	cmd.Flags().String("oracle-cmd", "", "command for --oracle command, source on stdin (e.g. \"ruby -c\")")
	cmd.Flags().Duration("oracle-timeout", 0, "timeout of one external oracle call")
	cmd.Flags().Bool("cache", false, "keep external oracle verdicts in the disk cache")
	cmd.Flags().String("cache-dir", "", "disk cache directory (default $XDG_CACHE_HOME/faultline)")
	cmd.Flags().Duration("timeout", 0, "search timeout per file (default 1s, negative disables)")
	cmd.Flags().Int("max-ticks", 0, "cap on search iterations (0 = derived from file size)")
	cmd.Flags().String("record-dir", "", "write a step-by-step snapshot of every search into this directory")
	cmd.Flags().StringSlice("include", nil, "doublestar patterns of files to analyze in directories")
	cmd.Flags().StringSlice("exclude", nil, "doublestar patterns of files to skip in directories")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
}

// loadSettings discovers faultline.toml for target, applies the flags that were
// set explicitly, and builds the analysis options.
func loadSettings(cmd *cobra.Command, target string) (*runSettings, error) {
	cfg, err := loadConfig(cmd, target)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	logger := loggerFrom(cmd.Context())
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}

	orc, err := oracle.Open(oracle.Options{
		Kind:     cfg.Oracle.Kind,
		Command:  cfg.Oracle.Command,
		Timeout:  cfg.Oracle.Timeout,
		Cache:    cfg.Oracle.Cache,
		CacheDir: cfg.Oracle.CacheDir,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	s := &runSettings{cfg: cfg}
	s.metricsFile, err = optionalString(cmd, "metrics-file")
	if err != nil {
		return nil, err
	}
	var m *metrics.Metrics
	if s.metricsFile != "" {
		s.registry = prometheus.NewRegistry()
		m = metrics.New(s.registry)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	s.analyze = driver.Options{
		Oracle:         orc,
		Timeout:        cfg.Search.Timeout,
		RecordDir:      cfg.Search.RecordDir,
		MaxDiagnostics: cfg.Output.MaxDiagnostics,
		Logger:         logger,
		Tracer:         trace.FromContext(cmd.Context()),
		Metrics:        m,
		Include:        cfg.Files.Include,
		Exclude:        cfg.Files.Exclude,
		Jobs:           cfg.Files.Jobs,
		EnableTimings:  showTimings,
		Progress:       runTally,
	}
	s.analyze.Search.MaxTicks = cfg.Search.MaxTicks
	s.analyze.Search.MaxCoverChecks = cfg.Search.MaxCoverChecks
	s.analyze.Search.BalanceLimit = cfg.Search.BalanceLimit

	pathMode, _ := diagfmt.ParsePathMode(cfg.Output.PathMode)
	color, err := useColor(cmd)
	if err != nil {
		return nil, err
	}
	s.render = renderOptions{
		format:   cfg.Output.Format,
		color:    color,
		context:  cfg.Output.Context,
		pathMode: pathMode,
		notes:    true,
		timings:  showTimings,
	}
	return s, nil
}

// finish writes the metrics textfile when one was requested.
func (s *runSettings) finish() error {
	if s.metricsFile == "" || s.registry == nil {
		return nil
	}
	return metrics.WriteTextfile(s.metricsFile, s.registry)
}

func loadConfig(cmd *cobra.Command, target string) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	start := target
	if start == "" || start == "-" {
		start = "."
	}
	return config.Discover(filepath.Clean(start))
}

// applyFlags overrides cfg with every flag the user set. Flags left at their
// defaults never override the file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("format") {
		if cfg.Output.Format, err = flags.GetString("format"); err != nil {
			return err
		}
	}
	if changed("context") {
		if cfg.Output.Context, err = flags.GetInt("context"); err != nil {
			return err
		}
	}
	if changed("path-mode") {
		if cfg.Output.PathMode, err = flags.GetString("path-mode"); err != nil {
			return err
		}
	}
	if root := cmd.Root().PersistentFlags(); root.Changed("max-diagnostics") {
		if cfg.Output.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
			return err
		}
	}
	if changed("oracle") {
		if cfg.Oracle.Kind, err = flags.GetString("oracle"); err != nil {
			return err
		}
	}
	if changed("oracle-cmd") {
		raw, err := flags.GetString("oracle-cmd")
		if err != nil {
			return err
		}
		cfg.Oracle.Command = strings.Fields(raw)
		if !changed("oracle") {
			cfg.Oracle.Kind = oracle.KindCommand
		}
	}
	if changed("oracle-timeout") {
		if cfg.Oracle.Timeout, err = flags.GetDuration("oracle-timeout"); err != nil {
			return err
		}
	}
	if changed("cache") {
		if cfg.Oracle.Cache, err = flags.GetBool("cache"); err != nil {
			return err
		}
	}
	if changed("cache-dir") {
		if cfg.Oracle.CacheDir, err = flags.GetString("cache-dir"); err != nil {
			return err
		}
	}
	if changed("timeout") {
		if cfg.Search.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if changed("max-ticks") {
		if cfg.Search.MaxTicks, err = flags.GetInt("max-ticks"); err != nil {
			return err
		}
	}
	if changed("record-dir") {
		if cfg.Search.RecordDir, err = flags.GetString("record-dir"); err != nil {
			return err
		}
	}
	if changed("include") {
		if cfg.Files.Include, err = flags.GetStringSlice("include"); err != nil {
			return err
		}
	}
	if changed("exclude") {
		if cfg.Files.Exclude, err = flags.GetStringSlice("exclude"); err != nil {
			return err
		}
	}
	if changed("jobs") {
		if cfg.Files.Jobs, err = flags.GetInt("jobs"); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// optionalString reads a string flag that not every command defines.
func optionalString(cmd *cobra.Command, name string) (string, error) {
	if cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	return cmd.Flags().GetString(name)
}
