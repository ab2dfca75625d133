package vault

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/aidanlsb/mdvault/internal/parser"
	"github.com/aidanlsb/mdvault/internal/paths"
)

// Cache stores parsed documents between runs, keyed by path and file stamp.
type Cache interface {
	Lookup(path string, mtime, size int64) (*parser.Document, bool)
	Store(doc *parser.Document, mtime, size int64) error
}

// Options configures Load.
type Options struct {
	// Ignore lists extra directory names or vault-relative directories to skip.
	Ignore []string
	// Cache, when set, is consulted before parsing and updated afterwards.
	Cache Cache
	// Workers bounds parallel parsing; defaults to GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// LoadStats summarizes a Load.
type LoadStats struct {
	Files  int
	Cached int
	Parsed int
	Errors int
}

// Store owns the current Snapshot of a vault and swaps in a new one on every
// change. Readers never block writers: a request holds the snapshot it
// started with for its whole lifetime.
type Store struct {
	root    string
	opts    Options
	log     *zap.Logger
	stats   LoadStats
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Snapshot]
}

// NewStore wraps already-parsed documents, for callers that do not read from disk.
func NewStore(root string, docs []*parser.Document) *Store {
	s := &Store{root: root, log: zap.NewNop()}
	s.current.Store(NewSnapshot(root, docs))
	return s
}

type loaded struct {
	walk   WalkResult
	doc    *parser.Document
	cached bool
	err    error
}

// Load walks the vault at root and parses every markdown document.
func Load(ctx context.Context, root string, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var found []WalkResult
	err := WalkMarkdownFiles(root, opts.Ignore, func(r WalkResult) error {
		if r.Error != nil {
			log.Warn("skipping unreadable path", zap.String("path", r.Path), zap.Error(r.Error))
			return nil
		}
		found = append(found, r)
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}

	results := make([]loaded, len(found))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = loadOne(found[i], opts.Cache)
			}
		}()
	}
	for i := range found {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := LoadStats{Files: len(found)}
	docs := make(map[string]*parser.Document, len(found))
	for _, r := range results {
		switch {
		case r.err != nil:
			stats.Errors++
			log.Warn("failed to load document", zap.String("path", r.walk.RelativePath), zap.Error(r.err))
			continue
		case r.cached:
			stats.Cached++
		default:
			stats.Parsed++
			if opts.Cache != nil {
				if err := opts.Cache.Store(r.doc, r.walk.FileMtime, r.walk.Size); err != nil {
					log.Warn("failed to cache document", zap.String("path", r.doc.Path), zap.Error(err))
				}
			}
		}
		docs[r.doc.Path] = r.doc
	}

	log.Debug("vault loaded",
		zap.String("root", root),
		zap.Int("files", stats.Files),
		zap.Int("cached", stats.Cached),
		zap.Int("parsed", stats.Parsed),
		zap.Int("errors", stats.Errors))

	s := &Store{root: root, opts: opts, log: log, stats: stats}
	s.current.Store(newSnapshot(root, docs))
	return s, nil
}

func loadOne(w WalkResult, cache Cache) loaded {
	if cache != nil {
		if doc, ok := cache.Lookup(w.RelativePath, w.FileMtime, w.Size); ok {
			return loaded{walk: w, doc: doc, cached: true}
		}
	}
	content, err := os.ReadFile(w.Path)
	if err != nil {
		return loaded{walk: w, err: err}
	}
	return loaded{walk: w, doc: parser.Parse(w.RelativePath, string(content))}
}

// Root returns the absolute vault directory.
func (s *Store) Root() string {
	return s.root
}

// Stats returns what the initial Load did.
func (s *Store) Stats() LoadStats {
	return s.stats
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Update reparses one document from in-memory content, typically an unsaved
// editor buffer, and publishes a new snapshot.
func (s *Store) Update(rel, content string) {
	rel = paths.NormalizeRelPath(rel)
	doc := parser.Parse(rel, content)
	s.swap(func(docs map[string]*parser.Document) {
		docs[rel] = doc
	})
}

// Reload rereads one document from disk. A document that no longer exists is removed.
func (s *Store) Reload(rel string) error {
	rel = paths.NormalizeRelPath(rel)
	abs := paths.AbsPath(s.root, rel)

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		s.Remove(rel)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}

	doc := parser.Parse(rel, string(content))
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Store(doc, info.ModTime().UnixNano(), info.Size()); err != nil {
			s.log.Warn("failed to cache document", zap.String("path", rel), zap.Error(err))
		}
	}
	s.swap(func(docs map[string]*parser.Document) {
		docs[rel] = doc
	})
	return nil
}

// Remove drops a document from the vault.
func (s *Store) Remove(rel string) {
	rel = paths.NormalizeRelPath(rel)
	s.swap(func(docs map[string]*parser.Document) {
		delete(docs, rel)
	})
}

func (s *Store) swap(mutate func(map[string]*parser.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.current.Load()
	docs := make(map[string]*parser.Document, len(old.docs)+1)
	for k, v := range old.docs {
		docs[k] = v
	}
	mutate(docs)
	s.current.Store(newSnapshot(s.root, docs))
}
