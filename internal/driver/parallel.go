package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"faultline/internal/diag"
	"faultline/internal/oracle"
	"faultline/internal/progress"
	"faultline/internal/source"
)

// ListFiles returns the files under dir accepted by m, sorted and without duplicates.
func ListFiles(dir string, m *Matcher) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if m.Match(filepath.ToSlash(rel)) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return slices.Compact(files), nil
}

// AnalyzeDir analyzes every matching file under dir on a bounded worker pool.
// Results keep the sorted file order. Per-file failures (unreadable files,
// timeouts, oracle failures) become diagnostics of that file's result; only
// listing errors and cancellation abort the run.
func AnalyzeDir(ctx context.Context, dir string, opts Options) ([]*Result, error) {
	opts = opts.withDefaults()
	if opts.BaseDir == "" {
		opts.BaseDir = dir
	}
	m, err := NewMatcher(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	files, err := ListFiles(dir, m)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	for _, path := range files {
		progress.Emit(opts.Progress, progress.Event{File: path, Stage: progress.StageLoad, Status: progress.StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := AnalyzeFile(gctx, path, opts)
			switch {
			case err == nil, errors.Is(err, ErrSearchTimeout):
				results[i] = res
			case errors.Is(err, context.Canceled):
				return err
			case oracle.IsFailure(err):
				opts.Logger.Error("oracle failed", "path", path, "err", err)
				results[i] = errorResult(path, opts, diag.SrchOracleFailure, err.Error())
			default:
				results[i] = errorResult(path, opts, diag.IOLoadFileError, "failed to load file: "+err.Error())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// errorResult is a result with a single file-level error and no document.
func errorResult(path string, opts Options, code diag.Code, msg string) *Result {
	fs := source.NewFileSet()
	fs.SetBaseDir(opts.BaseDir)
	id := fs.AddVirtual(path, nil)
	bag := diag.NewBag(opts.MaxDiagnostics)
	bag.Add(diag.NewError(code, source.Span{File: id}, msg))
	return &Result{
		Path:    path,
		FileSet: fs,
		File:    fs.Get(id),
		Bag:     bag,
	}
}
