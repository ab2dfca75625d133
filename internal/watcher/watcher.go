// Package watcher reports markdown file changes in a vault, debounced, so
// the in-memory index can follow edits made outside the editor.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/aidanlsb/mdvault/internal/paths"
	"github.com/aidanlsb/mdvault/internal/vault"
)

// DefaultDebounce is how long a path must stay quiet before OnChange fires.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors a vault directory for document changes.
type Watcher struct {
	vaultPath string
	ignore    map[string]bool
	debounce  time.Duration
	log       *zap.Logger

	onChange func(rel string)
	onRemove func(rel string)

	fsWatcher *fsnotify.Watcher
	pending   map[string]time.Time
	mu        sync.Mutex
}

// Config holds configuration options for the Watcher.
type Config struct {
	VaultPath string
	// Ignore lists directory names skipped in addition to vault.DefaultIgnoredDirs.
	Ignore        []string
	DebounceDelay time.Duration // Default: 100ms
	Logger        *zap.Logger
	// OnChange receives the vault-relative path of a created or written document.
	OnChange func(rel string)
	// OnRemove receives the vault-relative path of a removed or renamed document.
	OnRemove func(rel string)
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.VaultPath == "" {
		return nil, errors.New("vault path is required")
	}
	if cfg.OnChange == nil || cfg.OnRemove == nil {
		return nil, errors.New("change and remove callbacks are required")
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ignore := make(map[string]bool)
	for _, name := range vault.DefaultIgnoredDirs {
		ignore[name] = true
	}
	for _, name := range cfg.Ignore {
		ignore[strings.Trim(filepath.ToSlash(name), "/")] = true
	}

	return &Watcher{
		vaultPath: cfg.VaultPath,
		ignore:    ignore,
		debounce:  debounce,
		log:       log.Named("watcher"),
		onChange:  cfg.OnChange,
		onRemove:  cfg.OnRemove,
		pending:   make(map[string]time.Time),
	}, nil
}

// Start begins watching the vault for file changes.
// It blocks until the context is cancelled. No callback runs after it returns.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.vaultPath); err != nil {
		return fmt.Errorf("failed to watch vault: %w", err)
	}
	w.log.Debug("watching vault", zap.String("path", w.vaultPath))

	ctx, cancel := context.WithCancel(ctx)
	debounced := make(chan struct{})
	defer func() {
		cancel()
		<-debounced
	}()
	go func() {
		defer close(debounced)
		w.processDebounced(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if !paths.IsDocument(path) {
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() && !w.shouldIgnore(path) {
				w.addWatchRecursive(path)
			}
		}
		return
	}
	if w.shouldIgnore(path) {
		return
	}

	rel, err := paths.RelPath(w.vaultPath, path)
	if err != nil {
		return
	}
	w.log.Debug("event", zap.String("op", event.Op.String()), zap.String("path", rel))

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		w.mu.Lock()
		w.pending[rel] = time.Now()
		w.mu.Unlock()
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.mu.Lock()
		delete(w.pending, rel)
		w.mu.Unlock()
		w.onRemove(rel)
	}
}

// processDebounced flushes pending changes once they are older than the
// debounce delay.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for rel, scheduledAt := range w.pending {
		if now.Sub(scheduledAt) >= w.debounce {
			ready = append(ready, rel)
			delete(w.pending, rel)
		}
	}
	w.mu.Unlock()

	for _, rel := range ready {
		w.onChange(rel)
	}
}

func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.vaultPath && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.log.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

// shouldIgnore reports whether any component of path, or its vault-relative
// prefix, is an ignored directory.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := paths.RelPath(w.vaultPath, path)
	if err != nil {
		return true
	}
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		if w.ignore[part] || w.ignore[strings.Join(parts[:i+1], "/")] {
			return true
		}
	}
	return false
}
