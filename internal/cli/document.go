package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/aidanlsb/mdvault/internal/paths"
	"github.com/aidanlsb/mdvault/internal/vault"
	"github.com/aidanlsb/mdvault/internal/workspace"
)

// documentArgs is a parsed "<file> <line> <char>" triple.
type documentArgs struct {
	Path     string // vault-relative
	Position vault.Position
}

// parseDocumentArgs resolves <file> against the current directory when it
// exists there, else against the vault root. Line and character are
// zero-based, as in the language server protocol.
func parseDocumentArgs(vaultPath string, args []string) (documentArgs, error) {
	if len(args) != 3 {
		return documentArgs{}, fmt.Errorf("expected <file> <line> <char>, got %d arguments", len(args))
	}

	abs := args[0]
	if !filepath.IsAbs(abs) {
		if _, err := os.Stat(abs); err == nil {
			abs, _ = filepath.Abs(abs)
		} else {
			abs = filepath.Join(vaultPath, filepath.FromSlash(abs))
		}
	}

	rel, err := paths.RelPath(vaultPath, abs)
	if err != nil {
		return documentArgs{}, fmt.Errorf("%s: %w", args[0], err)
	}
	if !paths.IsDocument(rel) {
		return documentArgs{}, fmt.Errorf("%s is not a markdown document", args[0])
	}

	line, err := parseIndex("line", args[1])
	if err != nil {
		return documentArgs{}, err
	}
	char, err := parseIndex("char", args[2])
	if err != nil {
		return documentArgs{}, err
	}

	return documentArgs{Path: rel, Position: vault.Position{Line: line, Character: char}}, nil
}

func parseIndex(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, s)
	}
	return n, nil
}

// openDocument loads the vault and checks that doc is part of it.
func openDocument(ctx context.Context, vaultPath string, doc documentArgs) (*workspace.Workspace, error) {
	ws, err := workspace.Open(ctx, vaultPath, workspace.Options{Logger: zap.NewNop()})
	if err != nil {
		return nil, err
	}
	if _, ok := ws.Store.Snapshot().Document(doc.Path); !ok {
		ws.Close()
		return nil, fmt.Errorf("%s: %w", doc.Path, errDocumentNotFound)
	}
	return ws, nil
}

var errDocumentNotFound = errors.New("document not found in vault")

// documentErrorCode maps a document lookup failure to its JSON error code.
func documentErrorCode(err error) string {
	switch {
	case errors.Is(err, paths.ErrOutsideVault):
		return ErrFileOutsideVault
	case errors.Is(err, errDocumentNotFound):
		return ErrFileNotFound
	default:
		return ErrInvalidInput
	}
}
