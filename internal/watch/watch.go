// Package watch implements a directory-watching daemon: fsnotify-driven,
// debounced, with per-output-path locking so two rapid events for the
// same source never race two concurrent conversions.
package watch

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/xtconv/xtconv/internal/xlog"
)

// sourceExts are the input extensions worth converting.
var sourceExts = map[string]bool{
	".cbz": true, ".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
}

// ConvertFunc converts one source file to its container output path.
type ConvertFunc func(input, output string) error

// pathLocker provides per-path mutual exclusion so two events for the
// same output never convert concurrently.
type pathLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocker() *pathLocker {
	return &pathLocker{locks: make(map[string]*sync.Mutex)}
}

func (pl *pathLocker) Lock(path string) {
	pl.mu.Lock()
	l, ok := pl.locks[path]
	if !ok {
		l = &sync.Mutex{}
		pl.locks[path] = l
	}
	pl.mu.Unlock()
	l.Lock()
}

func (pl *pathLocker) Unlock(path string) {
	pl.mu.Lock()
	l, ok := pl.locks[path]
	pl.mu.Unlock()
	if ok {
		l.Unlock()
	}
}

// debouncer coalesces rapid event bursts into a single callback per file.
type debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	delay  time.Duration
	onFire func(path string)
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	return &debouncer{timers: make(map[string]*time.Timer), delay: delay, onFire: onFire}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.onFire(path)
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}

// Options controls one watch-mode run.
type Options struct {
	InputDir  string
	OutputDir string
	Convert   ConvertFunc
}

func outputPathFor(inputDir, outputDir, srcPath string) string {
	rel, _ := filepath.Rel(inputDir, srcPath)
	ext := filepath.Ext(rel)
	return filepath.Join(outputDir, strings.TrimSuffix(rel, ext)+".xtc")
}

func isSource(path string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(path))]
}

// Run watches opt.InputDir recursively until ctx is cancelled, converting
// new/changed source files. Deleting a source does not remove its output
// from the output tree.
func Run(ctx context.Context, opt Options) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := watchRecursive(w, opt.InputDir); err != nil {
		return err
	}
	xlog.L().Infow("watching directory", "dir", opt.InputDir)

	outLock := newPathLocker()
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup

	db := newDebouncer(500*time.Millisecond, func(path string) {
		if !isSource(path) {
			return
		}
		out := outputPathFor(opt.InputDir, opt.OutputDir, path)
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			outLock.Lock(out)
			defer outLock.Unlock(out)
			if err := opt.Convert(path, out); err != nil {
				xlog.L().Errorw("conversion failed", "input", path, "error", err)
			}
		}()
	})
	defer db.stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-watchCtx.Done():
		}
	}()

	eventLoop(watchCtx, w, db)

	wg.Wait()
	return nil
}

func watchRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

func eventLoop(ctx context.Context, w *fsnotify.Watcher, db *debouncer) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					watchRecursive(w, ev.Name)
					continue
				}
			}
			if ev.Has(fsnotify.Rename) {
				if _, err := os.Stat(ev.Name); err != nil {
					continue
				}
				w.Add(filepath.Dir(ev.Name))
			}
			db.trigger(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			xlog.L().Errorw("watcher error", "error", err)
		}
	}
}
