// Package lsp implements a Language Server Protocol server offering link
// completion and link previews for a markdown vault.
package lsp

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/aidanlsb/mdvault/internal/config"
	"github.com/aidanlsb/mdvault/internal/paths"
	"github.com/aidanlsb/mdvault/internal/vault"
	"github.com/aidanlsb/mdvault/internal/watcher"
	"github.com/aidanlsb/mdvault/internal/workspace"
)

// Name is reported to clients in the initialize result.
const Name = "mdvault"

// Options configures a Server.
type Options struct {
	// VaultPath overrides the workspace root sent by the client.
	VaultPath string
	Logger    *zap.Logger
	// Now defaults to time.Now; daily note keywords are computed from it.
	Now func() time.Time
	// Version is reported in the initialize result.
	Version string
}

// Server is the vault LSP server.
type Server struct {
	opts Options
	log  *zap.Logger

	mu        sync.RWMutex // guards the fields set while loading the vault
	vaultPath string
	settings  config.Settings
	store     *vault.Store
	ws        *workspace.Workspace
	stopWatch context.CancelFunc
	watchDone chan struct{}

	documents *DocumentManager
	conn      jsonrpc2.Conn

	shutdown atomic.Bool
	exited   atomic.Bool
}

// NewServer creates a new LSP server.
func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		opts:      opts,
		log:       log.Named("lsp"),
		settings:  config.DefaultSettings(),
		documents: NewDocumentManager(),
	}
}

// Run serves one client over rwc until it exits, the stream fails or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context, rwc io.ReadWriteCloser) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.closeVault()

	s.conn = jsonrpc2.NewConn(NewStream(rwc))
	s.conn.Go(ctx, s.handle)

	select {
	case <-ctx.Done():
		s.conn.Close()
		<-s.conn.Done()
		return ctx.Err()
	case <-s.conn.Done():
		if s.exited.Load() {
			return nil
		}
		if err := s.conn.Err(); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
}

// handle routes a message to the appropriate handler. Handler errors are
// sent to the client; returning one here would tear the connection down.
func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.log.Debug("received", zap.String("method", req.Method()))

	if s.shutdown.Load() {
		switch req.Method() {
		case protocol.MethodExit:
			return s.handleExit(ctx, reply, req)
		default:
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidRequest, "server is shutting down"))
		}
	}

	switch req.Method() {
	case protocol.MethodInitialize:
		return s.handleInitialize(ctx, reply, req)
	case protocol.MethodInitialized:
		return reply(ctx, nil, nil)
	case protocol.MethodShutdown:
		s.shutdown.Store(true)
		s.closeVault()
		return reply(ctx, nil, nil)
	case protocol.MethodExit:
		return s.handleExit(ctx, reply, req)
	case protocol.MethodTextDocumentDidOpen:
		return s.handleDidOpen(ctx, reply, req)
	case protocol.MethodTextDocumentDidChange:
		return s.handleDidChange(ctx, reply, req)
	case protocol.MethodTextDocumentDidSave:
		return s.handleDidSave(ctx, reply, req)
	case protocol.MethodTextDocumentDidClose:
		return s.handleDidClose(ctx, reply, req)
	case protocol.MethodTextDocumentCompletion:
		return s.handleCompletion(ctx, reply, req)
	case protocol.MethodTextDocumentHover:
		return s.handleHover(ctx, reply, req)
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.exited.Store(true)
	s.conn.Close()
	return nil
}

// load indexes the vault at root. Failures to open the index cache or start
// the watcher degrade the server instead of failing it.
func (s *Server) load(ctx context.Context, root string) error {
	ws, err := workspace.Open(ctx, root, workspace.Options{Logger: s.log})
	if err != nil {
		return err
	}
	if len(ws.Pruned) > 0 {
		s.log.Debug("pruned index cache", zap.Int("removed", len(ws.Pruned)))
	}

	s.mu.Lock()
	s.vaultPath = root
	s.settings = ws.Settings
	s.store = ws.Store
	s.ws = ws
	s.mu.Unlock()

	stats := ws.Store.Stats()
	s.log.Info("vault loaded",
		zap.String("root", root),
		zap.Int("files", stats.Files),
		zap.Int("cached", stats.Cached),
		zap.Int("parsed", stats.Parsed))

	if ws.Settings.Watch {
		s.startWatcher(ctx, root, ws.Settings.Ignore, ws.Store)
	}
	return nil
}

func (s *Server) startWatcher(ctx context.Context, root string, ignore []string, store *vault.Store) {
	w, err := watcher.New(watcher.Config{
		VaultPath: root,
		Ignore:    ignore,
		Logger:    s.log,
		OnChange: func(rel string) {
			if s.documents.IsOpen(rel) {
				return
			}
			if err := store.Reload(rel); err != nil {
				s.log.Warn("failed to reindex", zap.String("path", rel), zap.Error(err))
			}
		},
		OnRemove: func(rel string) {
			if !s.documents.IsOpen(rel) {
				store.Remove(rel)
			}
		},
	})
	if err != nil {
		s.log.Warn("file watching disabled", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.stopWatch, s.watchDone = cancel, done
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("file watcher stopped", zap.Error(err))
		}
	}()
}

// closeVault stops the watcher, then closes the index cache it writes to.
func (s *Server) closeVault() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopWatch != nil {
		s.stopWatch()
		<-s.watchDone
		s.stopWatch, s.watchDone = nil, nil
	}
	if s.ws != nil {
		if err := s.ws.Close(); err != nil {
			s.log.Warn("failed to close index", zap.Error(err))
		}
		s.ws = nil
	}
}

// state returns the loaded vault, or a nil store before initialize.
func (s *Server) state() (*vault.Store, config.Settings) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store, s.settings
}

// relPath maps a document URI to a vault-relative path.
func (s *Server) relPath(u protocol.DocumentURI) (string, bool) {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return "", false
	}
	s.mu.RLock()
	root := s.vaultPath
	s.mu.RUnlock()
	if root == "" {
		return "", false
	}
	rel, err := paths.RelPath(root, uri.URI(u).Filename())
	if err != nil || !paths.IsDocument(rel) {
		return "", false
	}
	return rel, true
}

func toPosition(p protocol.Position) vault.Position {
	return vault.Position{Line: int(p.Line), Character: int(p.Character)}
}

func toProtocolRange(r vault.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}
