package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FileRecord tracks the observed lifecycle of a single file.
type FileRecord struct {
	Path         string
	Size         int64
	CreatedAt    time.Time
	LastAccessed time.Time // zero means never accessed
	AccessCount  int
	ParentFolder string
	Digest       string // empty for files above the digest size cap
	Deleted      bool
}

// FolderSwitch is one recorded change of the active folder.
type FolderSwitch struct {
	Folder string
	At     time.Time
}

// Snapshot is a read-only copy of the ledger handed to detectors.
type Snapshot struct {
	Files    []FileRecord
	Switches []FolderSwitch
}

// Stats summarizes the ledger for cheap status queries.
type Stats struct {
	TrackedFiles    int       `json:"tracked_files"`
	TotalAccesses   int       `json:"total_accesses"`
	SwitchesLast24h int       `json:"switches_last_24h"`
	LastAnalysis    time.Time `json:"last_analysis"`
}

const (
	// maxSwitchHistory bounds the folder switch log; older entries are
	// trimmed on save.
	maxSwitchHistory = 1000

	// saveEvery is the mutation batch size between automatic persists.
	saveEvery = 10

	// switchDebounce is the minimum gap between recorded folder switches.
	switchDebounce = 10 * time.Second
)

// Ledger holds all tracked file activity. Mutation from the ingestion path
// and the scheduler's analysis path is serialized behind a single mutex.
type Ledger struct {
	store  *Store
	logger *slog.Logger

	mu           sync.Mutex
	files        map[string]*FileRecord
	switches     []FolderSwitch
	lastAnalysis time.Time
	pending      int // mutations since the last save
}

// New creates a Ledger backed by the given store.
func New(store *Store, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
		files:  make(map[string]*FileRecord),
	}
}

// Load restores state from the store. A missing or unreadable store is not
// fatal: the ledger starts empty and the condition is logged.
func (l *Ledger) Load(ctx context.Context) {
	files, switches, lastAnalysis, err := l.store.Load(ctx)
	if err != nil {
		l.logger.Warn("could not load activity ledger, starting empty", "error", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.files = files
	l.switches = switches
	l.lastAnalysis = lastAnalysis
	l.logger.Debug("loaded activity ledger",
		"files", len(files),
		"switches", len(switches),
	)
}

// Save persists the full ledger contents.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveLocked(ctx)
}

// saveLocked persists state; callers must hold the mutex. The switch history
// is trimmed to the most recent entries as part of the write.
func (l *Ledger) saveLocked(ctx context.Context) error {
	if len(l.switches) > maxSwitchHistory {
		l.switches = append([]FolderSwitch(nil), l.switches[len(l.switches)-maxSwitchHistory:]...)
	}
	if err := l.store.Save(ctx, l.files, l.switches, l.lastAnalysis); err != nil {
		return err
	}
	l.pending = 0
	return nil
}

// noteMutation counts a mutation and persists every saveEvery-th one.
// Save failures are logged, never surfaced to the ingestion path.
func (l *Ledger) noteMutation(ctx context.Context) {
	l.pending++
	if l.pending < saveEvery {
		return
	}
	if err := l.saveLocked(ctx); err != nil {
		l.logger.Error("failed to persist activity ledger", "error", err)
		l.pending = 0
	}
}

// Put creates or overwrites the record for rec.Path.
func (l *Ledger) Put(ctx context.Context, rec FileRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := rec
	l.files[rec.Path] = &cp
	l.noteMutation(ctx)
}

// Touch records an access on an existing record. It reports whether the path
// was already tracked.
func (l *Ledger) Touch(ctx context.Context, path string, at time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.files[path]
	if !ok {
		return false
	}
	rec.AccessCount++
	rec.LastAccessed = at
	l.noteMutation(ctx)
	return true
}

// MarkDeleted flips the deleted flag. The record is retained so cold-file
// and duplicate history stays analyzable until retention cleanup.
func (l *Ledger) MarkDeleted(ctx context.Context, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.files[path]
	if !ok {
		return
	}
	rec.Deleted = true
	l.noteMutation(ctx)
}

// Get returns a copy of the record for path.
func (l *Ledger) Get(path string) (FileRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.files[path]
	if !ok {
		return FileRecord{}, false
	}
	return *rec, true
}

// RecordSwitch appends a folder switch unless it repeats the most recent
// folder or lands within the debounce window of the previous entry. It
// reports whether an entry was appended.
func (l *Ledger) RecordSwitch(ctx context.Context, folder string, at time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.switches); n > 0 {
		last := l.switches[n-1]
		if folder == last.Folder || at.Sub(last.At) < switchDebounce {
			return false
		}
	}

	l.switches = append(l.switches, FolderSwitch{Folder: folder, At: at})
	l.noteMutation(ctx)
	return true
}

// Snapshot returns a deep copy of the current state for detector passes.
func (l *Ledger) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := &Snapshot{
		Files:    make([]FileRecord, 0, len(l.files)),
		Switches: make([]FolderSwitch, len(l.switches)),
	}
	for _, rec := range l.files {
		snap.Files = append(snap.Files, *rec)
	}
	copy(snap.Switches, l.switches)
	return snap
}

// LastAnalysis returns the time of the most recent completed analysis pass.
func (l *Ledger) LastAnalysis() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastAnalysis
}

// CompleteAnalysis records the analysis timestamp and forces a save.
func (l *Ledger) CompleteAnalysis(ctx context.Context, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastAnalysis = at
	if err := l.saveLocked(ctx); err != nil {
		l.logger.Error("failed to persist ledger after analysis", "error", err)
	}
}

// Cleanup removes file records created before the retention cutoff and trims
// switch history before it. This is the only path that truly deletes records.
func (l *Ledger) Cleanup(ctx context.Context, retention time.Duration, now time.Time) int {
	cutoff := now.Add(-retention)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for path, rec := range l.files {
		if rec.CreatedAt.Before(cutoff) {
			delete(l.files, path)
			removed++
		}
	}

	kept := l.switches[:0]
	for _, sw := range l.switches {
		if !sw.At.Before(cutoff) {
			kept = append(kept, sw)
		}
	}
	l.switches = kept

	if err := l.saveLocked(ctx); err != nil {
		l.logger.Error("failed to persist ledger after cleanup", "error", err)
	}

	l.logger.Info("ledger cleanup complete", "removed", removed, "retention", retention)
	return removed
}

// Stats computes cheap summary statistics.
func (l *Ledger) Stats(now time.Time) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Stats{LastAnalysis: l.lastAnalysis}
	for _, rec := range l.files {
		if rec.Deleted {
			continue
		}
		s.TrackedFiles++
		s.TotalAccesses += rec.AccessCount
	}

	dayAgo := now.Add(-24 * time.Hour)
	for _, sw := range l.switches {
		if sw.At.After(dayAgo) {
			s.SwitchesLast24h++
		}
	}
	return s
}
