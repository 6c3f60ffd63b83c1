package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists the ledger in SQLite. The ledger is read and written
// wholesale: Load reconstructs the full state and Save rewrites it in one
// transaction, so a load/save round-trip is exact.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the store at the given path. A corrupt database
// file is moved aside and a fresh one is created in its place; only an
// unusable location (e.g. the directory cannot be created) is a hard error.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	s, err := open(path)
	if err == nil {
		return s, nil
	}

	backup := path + ".corrupt"
	if renameErr := os.Rename(path, backup); renameErr != nil {
		return nil, err
	}
	s, retryErr := open(path)
	if retryErr != nil {
		return nil, err
	}
	return s, nil
}

// OpenMemory opens an in-memory store for testing.
func OpenMemory() (*Store, error) {
	return open(":memory:")
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring ledger database: %w", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS file_records (
			path TEXT PRIMARY KEY,
			size_bytes INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			last_accessed INTEGER,
			access_count INTEGER NOT NULL DEFAULT 0,
			parent_folder TEXT NOT NULL,
			digest TEXT,
			deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS folder_switches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			folder TEXT NOT NULL,
			switched_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_switches_time ON folder_switches(switched_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating ledger schema: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the on-disk location of the store.
func (s *Store) Path() string {
	return s.path
}

// Timestamps are persisted as Unix nanoseconds so the round-trip is exact.

// Load reads the complete ledger state.
func (s *Store) Load(ctx context.Context) (map[string]*FileRecord, []FolderSwitch, time.Time, error) {
	files := make(map[string]*FileRecord)

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, size_bytes, created_at, last_accessed, access_count, parent_folder, digest, deleted
		 FROM file_records`,
	)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("querying file records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec          FileRecord
			createdAt    int64
			lastAccessed sql.NullInt64
			digest       sql.NullString
			deleted      int
		)
		if err := rows.Scan(&rec.Path, &rec.Size, &createdAt, &lastAccessed,
			&rec.AccessCount, &rec.ParentFolder, &digest, &deleted); err != nil {
			return nil, nil, time.Time{}, fmt.Errorf("scanning file record: %w", err)
		}
		rec.CreatedAt = time.Unix(0, createdAt)
		if lastAccessed.Valid {
			rec.LastAccessed = time.Unix(0, lastAccessed.Int64)
		}
		rec.Digest = digest.String
		rec.Deleted = deleted != 0
		files[rec.Path] = &rec
	}
	if err := rows.Err(); err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("iterating file records: %w", err)
	}

	var switches []FolderSwitch
	swRows, err := s.db.QueryContext(ctx,
		`SELECT folder, switched_at FROM folder_switches ORDER BY id ASC`,
	)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("querying folder switches: %w", err)
	}
	defer swRows.Close()

	for swRows.Next() {
		var (
			sw FolderSwitch
			at int64
		)
		if err := swRows.Scan(&sw.Folder, &at); err != nil {
			return nil, nil, time.Time{}, fmt.Errorf("scanning folder switch: %w", err)
		}
		sw.At = time.Unix(0, at)
		switches = append(switches, sw)
	}
	if err := swRows.Err(); err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("iterating folder switches: %w", err)
	}

	var lastAnalysis time.Time
	var nanos int64
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'last_analysis'`,
	).Scan(&nanos)
	switch {
	case err == sql.ErrNoRows:
		// never analyzed
	case err != nil:
		return nil, nil, time.Time{}, fmt.Errorf("querying last analysis time: %w", err)
	default:
		lastAnalysis = time.Unix(0, nanos)
	}

	return files, switches, lastAnalysis, nil
}

// Save rewrites the complete ledger state in a single transaction. At most
// the most recent maxSwitchHistory switches are retained.
func (s *Store) Save(ctx context.Context, files map[string]*FileRecord, switches []FolderSwitch, lastAnalysis time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM file_records`); err != nil {
		return fmt.Errorf("clearing file records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM folder_switches`); err != nil {
		return fmt.Errorf("clearing folder switches: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO file_records
		 (path, size_bytes, created_at, last_accessed, access_count, parent_folder, digest, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing file record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range files {
		var lastAccessed any
		if !rec.LastAccessed.IsZero() {
			lastAccessed = rec.LastAccessed.UnixNano()
		}
		var digest any
		if rec.Digest != "" {
			digest = rec.Digest
		}
		deleted := 0
		if rec.Deleted {
			deleted = 1
		}
		if _, err := stmt.ExecContext(ctx,
			rec.Path, rec.Size, rec.CreatedAt.UnixNano(), lastAccessed,
			rec.AccessCount, rec.ParentFolder, digest, deleted,
		); err != nil {
			return fmt.Errorf("inserting record for %s: %w", rec.Path, err)
		}
	}

	if len(switches) > maxSwitchHistory {
		switches = switches[len(switches)-maxSwitchHistory:]
	}
	swStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO folder_switches (folder, switched_at) VALUES (?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing folder switch insert: %w", err)
	}
	defer swStmt.Close()

	for _, sw := range switches {
		if _, err := swStmt.ExecContext(ctx, sw.Folder, sw.At.UnixNano()); err != nil {
			return fmt.Errorf("inserting folder switch: %w", err)
		}
	}

	if !lastAnalysis.IsZero() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES ('last_analysis', ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			lastAnalysis.UnixNano(),
		); err != nil {
			return fmt.Errorf("storing last analysis time: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ledger save: %w", err)
	}
	return nil
}
