// Package workspace opens a vault for serving: settings, parse cache and
// the loaded document store.
package workspace

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aidanlsb/mdvault/internal/config"
	"github.com/aidanlsb/mdvault/internal/index"
	"github.com/aidanlsb/mdvault/internal/vault"
)

// Options configures Open.
type Options struct {
	Logger *zap.Logger
	// NoCache skips the parse cache even when the vault enables it.
	NoCache bool
	// Rebuild clears the parse cache before loading.
	Rebuild bool
}

// Workspace is a loaded vault.
type Workspace struct {
	Root     string
	Settings config.Settings
	Store    *vault.Store
	// DB is nil when the cache is disabled or could not be opened.
	DB *index.Database
	// Pruned lists cache entries dropped because their files are gone.
	Pruned []string
	// Rebuilt reports that the cache was recreated for a new schema version.
	Rebuilt bool
}

// Open loads the vault at root. A broken mdvault.yaml or an unusable cache
// is logged and degrades to defaults; only a failed walk is an error.
func Open(ctx context.Context, root string, opts Options) (*Workspace, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	vc, err := config.LoadVaultConfig(root)
	if err != nil {
		log.Warn("using default vault settings", zap.Error(err))
		vc = &config.VaultConfig{}
	}
	ws := &Workspace{Root: root, Settings: vc.Settings()}

	if ws.Settings.IndexCache && !opts.NoCache {
		ws.DB, ws.Rebuilt, err = openCache(root, opts.Rebuild)
		switch {
		case errors.Is(err, index.ErrIndexLocked):
			log.Info("index cache busy, parsing without it")
		case err != nil:
			log.Warn("index cache disabled", zap.Error(err))
		case ws.Rebuilt:
			log.Info("index cache rebuilt for new schema version")
		}
	}

	loadOpts := vault.Options{Ignore: ws.Settings.Ignore, Logger: log}
	if ws.DB != nil {
		loadOpts.Cache = ws.DB
	}
	ws.Store, err = vault.Load(ctx, root, loadOpts)
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("failed to load vault: %w", err)
	}

	if ws.DB != nil {
		ws.Pruned, err = ws.DB.Prune(ws.Store.Snapshot().Paths())
		if err != nil {
			log.Warn("failed to prune index cache", zap.Error(err))
		}
	}
	return ws, nil
}

func openCache(root string, rebuild bool) (*index.Database, bool, error) {
	if !rebuild {
		return index.OpenWithRebuild(root)
	}
	db, err := index.Rebuild(root)
	return db, err == nil, err
}

// Close releases the parse cache.
func (w *Workspace) Close() error {
	if w.DB == nil {
		return nil
	}
	err := w.DB.Close()
	w.DB = nil
	return err
}
