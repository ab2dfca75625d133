package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/aidanlsb/mdvault/internal/completion"
	"github.com/aidanlsb/mdvault/internal/hover"
	"github.com/aidanlsb/mdvault/internal/preview"
)

// TriggerCharacters start a completion request without an explicit invoke.
var TriggerCharacters = []string{"[", "(", "#", "^", "|"}

func decodeParams(req jsonrpc2.Request, v interface{}) error {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return fmt.Errorf("%w: %v", jsonrpc2.ErrInvalidParams, err)
	}
	return nil
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := decodeParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	root := s.opts.VaultPath
	switch {
	case root != "":
	case params.RootURI != "":
		root = uri.URI(params.RootURI).Filename()
	case len(params.WorkspaceFolders) > 0:
		root = uri.URI(params.WorkspaceFolders[0].URI).Filename()
	case params.RootPath != "":
		root = params.RootPath
	}

	if root == "" {
		s.log.Warn("no vault root; completion and hover are disabled")
	} else if err := s.load(ctx, root); err != nil {
		s.log.Error("failed to load vault", zap.String("root", root), zap.Error(err))
	}

	return reply(ctx, protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: TriggerCharacters,
			},
			HoverProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{Name: Name, Version: s.opts.Version},
	}, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	rel, ok := s.relPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	s.documents.Open(rel, params.TextDocument.Version)
	if store, _ := s.state(); store != nil {
		store.Update(rel, params.TextDocument.Text)
	}
	s.log.Debug("opened", zap.String("path", rel))
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	rel, ok := s.relPath(params.TextDocument.URI)
	if !ok || len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}
	// Full sync: the last change carries the whole document.
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	if !s.documents.Update(rel, params.TextDocument.Version) {
		s.log.Debug("ignoring change", zap.String("path", rel), zap.Int32("version", params.TextDocument.Version))
		return reply(ctx, nil, nil)
	}
	if store, _ := s.state(); store != nil {
		store.Update(rel, content)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	rel, ok := s.relPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	if store, _ := s.state(); store != nil {
		if err := store.Reload(rel); err != nil {
			s.log.Warn("failed to reindex", zap.String("path", rel), zap.Error(err))
		}
	}
	s.log.Debug("saved", zap.String("path", rel))
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	rel, ok := s.relPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	s.documents.Close(rel)
	// Drop unsaved edits: the file on disk is the truth again.
	if store, _ := s.state(); store != nil {
		if err := store.Reload(rel); err != nil {
			s.log.Warn("failed to reindex", zap.String("path", rel), zap.Error(err))
		}
	}
	s.log.Debug("closed", zap.String("path", rel))
	return reply(ctx, nil, nil)
}

func (s *Server) handleCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := decodeParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	list := protocol.CompletionList{IsIncomplete: true, Items: []protocol.CompletionItem{}}

	store, settings := s.state()
	rel, ok := s.relPath(params.TextDocument.URI)
	if store == nil || !ok {
		return reply(ctx, list, nil)
	}

	snap := store.Snapshot()
	items := completion.Complete(&completion.Context{
		Index:     snap,
		Path:      rel,
		Position:  toPosition(params.Position),
		OpenFiles: s.documents.Paths(),
		Settings:  settings,
		Previewer: preview.New(snap, settings.PreviewLines),
		Now:       s.opts.Now,
	})
	if items != nil {
		list.Items = items
	}

	s.log.Debug("completion",
		zap.String("path", rel),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character),
		zap.Int("items", len(list.Items)))
	return reply(ctx, list, nil)
}

func (s *Server) handleHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := decodeParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	store, settings := s.state()
	rel, ok := s.relPath(params.TextDocument.URI)
	if store == nil || !ok {
		return reply(ctx, nil, nil)
	}

	snap := store.Snapshot()
	res, ok := hover.Resolve(snap, preview.New(snap, settings.PreviewLines), rel, toPosition(params.Position))
	if !ok {
		return reply(ctx, nil, nil)
	}

	rng := toProtocolRange(res.Reference.Range)
	return reply(ctx, protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: res.Markdown},
		Range:    &rng,
	}, nil)
}
