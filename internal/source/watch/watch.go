// Copyright (c) 2026 Ripple contributors
// SPDX-License-Identifier: MIT

// Package watch is the file-change-driven source external collaborator
// spec.md §5 describes: each watched path is bound to a source name, and a
// write to that path becomes exactly one engine.PushEvent call carrying the
// file's freshly read value. Grounded on the teacher's
// services/trace/graph.FileWatcher — same fsnotify-plus-debounce shape,
// adapted from "batch of changed paths" to "one value per named source".
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Melchoirr/Ripple/internal/engine"
	"github.com/Melchoirr/Ripple/internal/value"
)

// Reader turns a changed file's contents into the Value pushed to its
// source. ReadString is the default; a CSV-backed source would instead
// supply something built on internal/source/csv.
type Reader func(path string) (value.Value, error)

// ReadString reads path whole and trims all trailing newlines — the
// default Reader for a plain scalar file source.
func ReadString(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return value.String(strings.TrimRight(string(data), "\n")), nil
}

// Options configures a Watcher; the zero value is usable.
type Options struct {
	// DebounceWindow batches rapid-fire writes to the same path (an editor's
	// save-then-flush, a tool writing in two syscalls) into a single push.
	// Default: 50ms.
	DebounceWindow time.Duration

	Logger *slog.Logger
	Read   Reader
}

func (o Options) withDefaults() Options {
	if o.DebounceWindow == 0 {
		o.DebounceWindow = 50 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Read == nil {
		o.Read = ReadString
	}
	return o
}

// Watcher watches a set of files and pushes their content to named engine
// sources whenever they change.
type Watcher struct {
	fsw  *fsnotify.Watcher
	opts Options

	mu      sync.Mutex
	sources map[string]string // path as given to Add -> source name

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Watcher. Call Add for every (path, sourceName) pair before
// Run.
func New(opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsw:     fsw,
		opts:    opts.withDefaults(),
		sources: make(map[string]string),
		done:    make(chan struct{}),
	}, nil
}

// Add binds path to sourceName: write events to path will push the file's
// content to that source. path must name a Source engine.Engine.RegisterSource
// already registered under sourceName.
func (w *Watcher) Add(path, sourceName string) error {
	if err := w.fsw.Add(path); err != nil {
		return fmt.Errorf("watch: watching %q: %w", path, err)
	}
	w.mu.Lock()
	w.sources[path] = sourceName
	w.mu.Unlock()
	return nil
}

// Run drives the watcher until ctx is canceled or Stop is called, pushing
// one engine event per debounced batch of writes to each bound path. It
// blocks the calling goroutine; callers typically launch it with `go`.
func (w *Watcher) Run(ctx context.Context, eng *engine.Engine) error {
	pending := make(chan string, 64)
	go w.processEvents(ctx, pending)
	return w.debounceLoop(ctx, eng, pending)
}

// Stop releases the underlying fsnotify watcher. Safe to call more than
// once; Run's goroutines exit once ctx is also done.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}

func (w *Watcher) processEvents(ctx context.Context, pending chan<- string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			select {
			case pending <- ev.Name:
			default:
				// Buffer full: the debouncer is keeping a timer running for
				// this path already, so a dropped duplicate notification is
				// harmless.
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.opts.Logger.Error("watch: fsnotify error", slog.String("error", err.Error()))
		}
	}
}

// debounceLoop keeps one pending-flush timer per path so a burst of writes
// to the same file collapses into a single PushEvent.
func (w *Watcher) debounceLoop(ctx context.Context, eng *engine.Engine, pending <-chan string) error {
	timers := make(map[string]*time.Timer)
	fired := make(chan string, 64)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case path := <-pending:
			if t, ok := timers[path]; ok {
				t.Reset(w.opts.DebounceWindow)
				continue
			}
			p := path
			timers[path] = time.AfterFunc(w.opts.DebounceWindow, func() {
				select {
				case fired <- p:
				case <-ctx.Done():
				}
			})
		case path := <-fired:
			delete(timers, path)
			w.flush(ctx, eng, path)
		}
	}
}

func (w *Watcher) flush(ctx context.Context, eng *engine.Engine, path string) {
	w.mu.Lock()
	name, ok := w.sources[path]
	w.mu.Unlock()
	if !ok {
		return
	}

	v, err := w.opts.Read(path)
	if err != nil {
		w.opts.Logger.Error("watch: failed to read changed file",
			slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if err := eng.PushEvent(ctx, name, v); err != nil {
		w.opts.Logger.Error("watch: push failed",
			slog.String("source", name), slog.String("path", path), slog.String("error", err.Error()))
	}
}
