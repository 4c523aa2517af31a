// Package watch re-analyzes files when they change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"faultline/internal/driver"
)

// DefaultDebounce is the quiet period before a changed file is analyzed.
const DefaultDebounce = 200 * time.Millisecond

// Update is the analysis of one changed file.
type Update struct {
	Path   string
	Result *driver.Result
	Err    error
}

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Analyze configures every analysis; Include and Exclude select the files.
	Analyze driver.Options
	Logger  *slog.Logger
}

// Watcher follows a file, or every matching file under a directory.
// Directories created later are followed too.
type Watcher struct {
	root    string
	single  bool // root is a file
	fsw     *fsnotify.Watcher
	matcher *driver.Matcher
	opts    Options
	logger  *slog.Logger
}

// New starts watching path. Close releases the watcher.
func New(path string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	matcher, err := driver.NewMatcher(opts.Analyze.Include, opts.Analyze.Exclude)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:    root,
		single:  !info.IsDir(),
		fsw:     fsw,
		matcher: matcher,
		opts:    opts,
		logger:  opts.Logger.With(slog.String("component", "watch"), slog.String("path", root)),
	}
	if w.single {
		// редакторы сохраняют через rename: следим за каталогом
		err = fsw.Add(filepath.Dir(root))
	} else {
		err = w.addTree(root)
	}
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch path: %w", err)
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error { return w.fsw.Close() }

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.fsw.Add(p)
	})
}

// wanted reports whether a change of p should trigger an analysis.
func (w *Watcher) wanted(p string) bool {
	if w.single {
		return p == w.root
	}
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return false
	}
	return w.matcher.Match(filepath.ToSlash(rel))
}

// Run delivers an Update for every settled change until ctx is done.
// onUpdate is called from one goroutine at a time.
func (w *Watcher) Run(ctx context.Context, onUpdate func(Update)) error {
	changed := make(chan string, 64)
	deb := NewDebouncer(w.opts.Debounce, func(p string) {
		select {
		case changed <- p:
		case <-ctx.Done():
		}
	})
	defer deb.Stop()

	w.logger.Info("watching")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped")
			return nil
		case p := <-changed:
			res, err := driver.AnalyzeFile(ctx, p, w.opts.Analyze)
			onUpdate(Update{Path: p, Result: res, Err: err})
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev, deb)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event, deb *Debouncer) {
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
	default:
		// Remove, Rename (старое имя), Chmod
		w.logger.Debug("ignoring event", "op", ev.Op, "path", ev.Name)
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		w.logger.Debug("failed to stat file", "path", ev.Name, "err", err)
		return
	}
	if info.IsDir() {
		if !w.single && ev.Has(fsnotify.Create) {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", ev.Name, "err", err)
			}
		}
		return
	}
	if w.wanted(ev.Name) {
		deb.Add(ev.Name)
	}
}
