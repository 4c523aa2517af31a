// Package hook diagnoses load failures. A host wraps its own loader with Wrap;
// when loading fails with a syntax error the file is searched for the invalid
// blocks and the original error comes back wrapped in a *SyntaxError that
// carries the diagnosis. Nothing is patched globally.
package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"faultline/internal/diagfmt"
	"faultline/internal/driver"
	"faultline/internal/metrics"
	"faultline/internal/oracle"
)

// Loader loads one file.
type Loader interface {
	Load(ctx context.Context, path string) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string) error

func (f LoaderFunc) Load(ctx context.Context, path string) error { return f(ctx, path) }

// Options configures Wrap.
type Options struct {
	// Match selects the errors worth diagnosing. Nil matches *oracle.ParseError.
	Match func(error) bool
	// Analyze configures the search; its Metrics default to Metrics.
	Analyze driver.Options
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// Render turns a result into the diagnosis text. Nil means Render.
	Render func(*driver.Result) string
}

// SyntaxError is the original load error together with the diagnosis.
type SyntaxError struct {
	Path      string
	Err       error
	Diagnosis string
	Result    *driver.Result
}

func (e *SyntaxError) Error() string {
	if e.Diagnosis == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Diagnosis
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// IsParseError is the default Match.
func IsParseError(err error) bool {
	var pe *oracle.ParseError
	return errors.As(err, &pe)
}

// Wrap returns a Loader that diagnoses the matching failures of next.
// When the diagnosis itself fails the original error is returned untouched.
func Wrap(next Loader, opts Options) Loader {
	if opts.Match == nil {
		opts.Match = IsParseError
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Render == nil {
		opts.Render = Render
	}
	if opts.Analyze.Metrics == nil {
		opts.Analyze.Metrics = opts.Metrics
	}
	if opts.Analyze.Logger == nil {
		opts.Analyze.Logger = opts.Logger
	}

	return LoaderFunc(func(ctx context.Context, path string) error {
		err := next.Load(ctx, path)
		if err == nil || !opts.Match(err) {
			return err
		}
		res, aerr := driver.AnalyzeFile(ctx, path, opts.Analyze)
		if res == nil {
			opts.Logger.Warn("load error left undiagnosed", "path", path, "err", aerr)
			return err
		}
		if aerr != nil {
			opts.Logger.Warn("diagnosis incomplete", "path", path, "err", aerr)
		}
		opts.Metrics.HookIntercepted()
		return &SyntaxError{
			Path:      path,
			Err:       err,
			Diagnosis: opts.Render(res),
			Result:    res,
		}
	})
}

// Render prints the result without colors, with the enclosing lines of every block.
func Render(res *driver.Result) string {
	var sb strings.Builder
	opts := diagfmt.PrettyOpts{Context: 2}
	if res.Document != nil {
		opts.Sources = diagfmt.Sources{res.File.ID: res.Document}
	}
	res.Bag.Sort()
	diagfmt.Pretty(&sb, res.Bag, res.FileSet, opts)
	return strings.TrimRight(sb.String(), "\n")
}

// OracleLoader is a Loader that only checks syntax: it reads the file and runs
// oracle.Require on it.
func OracleLoader(o oracle.Oracle) Loader {
	return LoaderFunc(func(_ context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		return oracle.Require(o, path, string(data))
	})
}
