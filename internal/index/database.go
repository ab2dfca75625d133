// Package index persists parsed documents in SQLite so a vault can be
// loaded without reparsing unchanged files.
package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/mdvault/internal/parser"
	"github.com/aidanlsb/mdvault/internal/sqlutil"
)

// Dir is the per-vault directory holding the index.
const Dir = ".mdvault"

// CurrentDBVersion is the current database schema version. Bump it whenever
// the schema or the stored document encoding changes.
const CurrentDBVersion = 1

// ErrIndexLocked indicates another process is rebuilding the index.
var ErrIndexLocked = errors.New("index is locked for rebuild")

// Database is the SQLite database handle.
type Database struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for advanced queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Path returns where the index for a vault lives.
func Path(vaultPath string) string {
	return filepath.Join(vaultPath, Dir, "index.db")
}

// Open opens or creates the index for a vault.
func Open(vaultPath string) (*Database, error) {
	dbDir := filepath.Join(vaultPath, Dir)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", Dir, err)
	}

	db, err := sql.Open("sqlite", Path(vaultPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// OpenWithRebuild opens the index, recreating it when it was written by an
// incompatible version. Returns (database, wasRebuilt, error).
func OpenWithRebuild(vaultPath string) (*Database, bool, error) {
	dbPath := Path(vaultPath)

	lock, err := acquireIndexLock(filepath.Dir(dbPath))
	if err != nil {
		return nil, false, err
	}
	defer lock.Release()

	if _, err := os.Stat(dbPath); err == nil {
		db, err := sql.Open("sqlite", dbPath)
		if err == nil {
			compatible := isSchemaCompatible(db)
			db.Close()
			if !compatible {
				if err := removeDatabaseFiles(dbPath); err != nil {
					return nil, false, err
				}
				fresh, err := Open(vaultPath)
				return fresh, true, err
			}
		}
	}

	db, err := Open(vaultPath)
	return db, false, err
}

// Rebuild deletes the index for a vault and opens an empty one.
func Rebuild(vaultPath string) (*Database, error) {
	dbPath := Path(vaultPath)

	lock, err := acquireIndexLock(filepath.Dir(dbPath))
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	if err := removeDatabaseFiles(dbPath); err != nil {
		return nil, err
	}
	return Open(vaultPath)
}

type indexLock struct {
	file *os.File
}

func acquireIndexLock(dbDir string) (*indexLock, error) {
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", Dir, err)
	}

	lockFile, err := os.OpenFile(filepath.Join(dbDir, "index.lock"), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open index lock: %w", err)
	}

	if err := lockExclusive(lockFile); err != nil {
		lockFile.Close()
		if isWouldBlock(err) {
			return nil, ErrIndexLocked
		}
		return nil, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	return &indexLock{file: lockFile}, nil
}

func (l *indexLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlock(l.file)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

func removeDatabaseFiles(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// isSchemaCompatible checks the stored schema version.
func isSchemaCompatible(db *sql.DB) bool {
	var value string
	if err := db.QueryRow("SELECT value FROM meta WHERE key = 'version'").Scan(&value); err != nil {
		return false
	}
	v, err := strconv.Atoi(value)
	return err == nil && v == CurrentDBVersion
}

// OpenInMemory opens an in-memory database (for testing).
func OpenInMemory() (*Database, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each pooled connection would get its own empty :memory: database.
	db.SetMaxOpenConns(1)

	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- One row per parsed markdown document
		CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			file_mtime INTEGER NOT NULL,  -- UnixNano
			file_size INTEGER NOT NULL,
			parsed TEXT NOT NULL,         -- JSON-encoded parser.Document
			indexed_at INTEGER NOT NULL   -- Unix seconds
		);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := d.db.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)",
		strconv.Itoa(CurrentDBVersion),
	); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// Lookup returns the cached parse of path if it was stored with the same
// file stamp. Any mismatch or decode failure is a miss.
func (d *Database) Lookup(path string, mtime, size int64) (*parser.Document, bool) {
	var parsed string
	err := d.db.QueryRow(
		"SELECT parsed FROM documents WHERE path = ? AND file_mtime = ? AND file_size = ?",
		path, mtime, size,
	).Scan(&parsed)
	if err != nil {
		return nil, false
	}

	var doc parser.Document
	if err := json.Unmarshal([]byte(parsed), &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

// Store records the parse of a document along with its file stamp.
func (d *Database) Store(doc *parser.Document, mtime, size int64) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", doc.Path, err)
	}
	_, err = d.db.Exec(`
		INSERT OR REPLACE INTO documents (path, file_mtime, file_size, parsed, indexed_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.Path, mtime, size, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store %s: %w", doc.Path, err)
	}
	return nil
}

// RemoveFile drops a document from the index.
func (d *Database) RemoveFile(path string) error {
	_, err := d.db.Exec("DELETE FROM documents WHERE path = ?", path)
	return err
}

// AllIndexedFilePaths returns every indexed document path, sorted.
func (d *Database) AllIndexedFilePaths() ([]string, error) {
	rows, err := d.db.Query("SELECT path FROM documents ORDER BY path")
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (string, error) {
		var p string
		err := rows.Scan(&p)
		return p, err
	})
}

// Prune removes documents whose path is not in keep and returns the removed paths.
func (d *Database) Prune(keep []string) ([]string, error) {
	indexed, err := d.AllIndexedFilePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get indexed paths: %w", err)
	}

	live := make(map[string]struct{}, len(keep))
	for _, p := range keep {
		live[p] = struct{}{}
	}

	tx, err := d.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var removed []string
	for _, p := range indexed {
		if _, ok := live[p]; !ok {
			removed = append(removed, p)
		}
	}
	for _, chunk := range sqlutil.Chunks(removed, sqlutil.MaxParams) {
		ph, args := sqlutil.InClauseArgs(chunk)
		if _, err := tx.Exec("DELETE FROM documents WHERE path IN ("+ph+")", args...); err != nil {
			return nil, fmt.Errorf("failed to prune documents: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return removed, nil
}

// ClearAllData removes every cached document.
func (d *Database) ClearAllData() error {
	_, err := d.db.Exec("DELETE FROM documents")
	return err
}

// IndexStats contains index statistics.
type IndexStats struct {
	FileCount   int
	Bytes       int64
	LastIndexed time.Time
}

// Stats reports what the index holds.
func (d *Database) Stats() (*IndexStats, error) {
	var stats IndexStats
	var bytes, last sql.NullInt64
	err := d.db.QueryRow(
		"SELECT COUNT(*), SUM(LENGTH(parsed)), MAX(indexed_at) FROM documents",
	).Scan(&stats.FileCount, &bytes, &last)
	if err != nil {
		return nil, err
	}
	stats.Bytes = bytes.Int64
	if last.Valid {
		stats.LastIndexed = time.Unix(last.Int64, 0)
	}
	return &stats, nil
}
