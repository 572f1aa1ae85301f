// Package database mirrors completed hashing runs into SQLite so they can be
// inspected and grouped without the text store.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"imagededup/logging"
	"imagededup/types"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoScan is returned when the mirror holds no completed run
var ErrNoScan = fmt.Errorf("no scan recorded in database: %w", fs.ErrNotExist)

const timeLayout = time.RFC3339Nano

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		backend TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		discovered INTEGER NOT NULL,
		hashed INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seq INTEGER NOT NULL,
		path TEXT NOT NULL UNIQUE,
		format TEXT,
		width INTEGER,
		height INTEGER,
		modified_at TEXT,
		size INTEGER,
		phash TEXT NOT NULL,
		dhash TEXT NOT NULL,
		whash TEXT NOT NULL,
		ahash TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_seq ON images(seq);
	CREATE INDEX IF NOT EXISTS idx_phash ON images(phash);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, err
	}

	// Mirrors written before runs were tracked lack the scan reference
	if err := ensureColumn(db, "images", "scan_id", "TEXT"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureColumn(db *sql.DB, table, column, columnType string) error {
	var hasColumn bool
	err := db.QueryRow("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&hasColumn)
	if err != nil {
		return fmt.Errorf("error checking for %s column: %w", column, err)
	}
	if hasColumn {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", table, column, columnType)); err != nil {
		return fmt.Errorf("error adding %s column: %w", column, err)
	}
	logging.DebugLog("Added '%s' column to existing database schema", column)
	return nil
}

// OpenDatabase opens an existing database connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// ReplaceScan replaces the mirror contents with one run in a single
// transaction. images are stored with their position as sequence.
func ReplaceScan(db *sql.DB, summary types.ScanSummary, images []types.ImageInfo) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM images"); err != nil {
		return fmt.Errorf("cannot clear images: %w", err)
	}
	if _, err = tx.Exec("DELETE FROM scans"); err != nil {
		return fmt.Errorf("cannot clear scans: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO images (
			seq, path, format, width, height, modified_at, size, phash, dhash, whash, ahash, scan_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare image insert: %w", err)
	}
	defer stmt.Close()

	for i, info := range images {
		if err = info.Hashes.Validate(); err != nil {
			return fmt.Errorf("invalid hashes for %s: %w", info.Path, err)
		}
		phash, _ := info.Hashes.Get(types.PHash)
		dhash, _ := info.Hashes.Get(types.DHash)
		whash, _ := info.Hashes.Get(types.WHash)
		ahash, _ := info.Hashes.Get(types.AHash)

		if _, err = stmt.Exec(i, info.Path, info.Format, info.Width, info.Height,
			info.ModifiedAt, info.Size, phash, dhash, whash, ahash, summary.ID); err != nil {
			return fmt.Errorf("cannot insert data for %s: %w", info.Path, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO scans (id, root, backend, started_at, finished_at, discovered, hashed, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.Root, summary.Backend,
		summary.StartedAt.UTC().Format(timeLayout), summary.FinishedAt.UTC().Format(timeLayout),
		summary.Discovered, summary.Hashed, summary.Skipped, summary.Failed,
	)
	if err != nil {
		return fmt.Errorf("cannot insert scan %s: %w", summary.ID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit scan %s: %w", summary.ID, err)
	}
	logging.DebugLog("Mirrored scan %s with %d images", summary.ID, len(images))
	return nil
}

// LoadHashStore rebuilds the hash store of the mirrored run in sequence order
func LoadHashStore(db *sql.DB) (*types.HashStore, error) {
	var scans int
	if err := db.QueryRow("SELECT COUNT(*) FROM scans").Scan(&scans); err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}
	if scans == 0 {
		return nil, ErrNoScan
	}

	rows, err := db.Query("SELECT path, phash, dhash, whash, ahash FROM images ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	store := types.NewHashStore()
	for rows.Next() {
		var path, phash, dhash, whash, ahash string
		if err := rows.Scan(&path, &phash, &dhash, &whash, &ahash); err != nil {
			return nil, fmt.Errorf("failed to read image row: %w", err)
		}
		set := types.HashSet{
			{Kind: types.PHash, Value: phash},
			{Kind: types.DHash, Value: dhash},
			{Kind: types.WHash, Value: whash},
			{Kind: types.AHash, Value: ahash},
		}
		if err := set.Validate(); err != nil {
			return nil, fmt.Errorf("invalid hashes for %s: %w", path, err)
		}
		if err := store.Add(path, set); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate images: %w", err)
	}
	return store, nil
}

// ScanStats contains statistics of the mirrored run
type ScanStats struct {
	Scan         types.ScanSummary
	TotalImages  int
	UniqueHashes int
}

// GetScanStats retrieves statistics about the mirrored run
func GetScanStats(db *sql.DB) (*ScanStats, error) {
	var (
		stats             ScanStats
		started, finished string
		backend           sql.NullString
	)

	err := db.QueryRow(`
		SELECT id, root, backend, started_at, finished_at, discovered, hashed, skipped, failed
		FROM scans ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&stats.Scan.ID, &stats.Scan.Root, &backend, &started, &finished,
		&stats.Scan.Discovered, &stats.Scan.Hashed, &stats.Scan.Skipped, &stats.Scan.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoScan
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	stats.Scan.Backend = backend.String
	if stats.Scan.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", started, err)
	}
	if stats.Scan.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("invalid finish time %q: %w", finished, err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM images").Scan(&stats.TotalImages); err != nil {
		return nil, fmt.Errorf("failed to get total images: %w", err)
	}
	if err := db.QueryRow("SELECT COUNT(DISTINCT phash) FROM images").Scan(&stats.UniqueHashes); err != nil {
		return nil, fmt.Errorf("failed to get unique hashes: %w", err)
	}
	return &stats, nil
}

// Mirror records runs into and loads hash stores from a database
type Mirror struct {
	db *sql.DB
}

// NewMirror wraps an initialized database
func NewMirror(db *sql.DB) *Mirror {
	return &Mirror{db: db}
}

// RecordScan replaces the mirrored run
func (m *Mirror) RecordScan(summary types.ScanSummary, images []types.ImageInfo) error {
	return ReplaceScan(m.db, summary, images)
}

// LoadHashStore returns the mirrored run's hash store
func (m *Mirror) LoadHashStore() (*types.HashStore, error) {
	return LoadHashStore(m.db)
}
